package client

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/schema"
	"github.com/openadmin/adminkit/transport"
)

// AuthClient talks to the identity endpoints. When an OAuth2 client config
// is present, Login uses the resource-owner password grant against the
// identity service; otherwise it posts to the REST login endpoint.
type AuthClient struct {
	*subClient
	oauth      *oauth2.Config
	sessionTTL time.Duration
	now        func() time.Time
}

func newAuthClient(pipeline *transport.Pipeline, s store.Store, oauth *oauth2.Config, sessionTTL time.Duration, now func() time.Time) *AuthClient {
	return &AuthClient{
		subClient:  newSubClient(pipeline, s),
		oauth:      oauth,
		sessionTTL: sessionTTL,
		now:        now,
	}
}

// Login exchanges user credentials for an access token and returns the
// resulting credential. The store is not touched here; the coordinator owns
// the Set so that a failed login leaves local state unchanged.
func (a *AuthClient) Login(ctx context.Context, request *schema.LoginRequest) (*schema.Credential, error) {
	if a.oauth != nil {
		token, err := a.oauth.PasswordCredentialsToken(ctx, request.Username, request.Password)
		if err != nil {
			return nil, &schema.Error{Kind: schema.KindAuth, Err: err}
		}
		return schema.FromToken(token, a.now(), a.sessionTTL), nil
	}
	response := &schema.LoginResponse{}
	if err := a.pipeline.Do(ctx, "POST", "/v1/auth/login", request, response, transport.WithoutAuth()); err != nil {
		return nil, err
	}
	now := a.now()
	ttl := a.sessionTTL
	if response.ExpiresIn > 0 {
		ttl = time.Duration(response.ExpiresIn) * time.Second
	} else if expiry, ok := schema.TokenExpiry(response.AccessToken); ok {
		ttl = expiry.Sub(now)
	}
	return schema.NewCredential(response.AccessToken, now, ttl), nil
}

// Revoke invalidates the current token server-side.
func (a *AuthClient) Revoke(ctx context.Context) error {
	return a.pipeline.Do(ctx, "POST", "/v1/auth/logout", nil, nil)
}

// WhoAmI returns the authenticated principal.
func (a *AuthClient) WhoAmI(ctx context.Context) (*schema.UserInfo, error) {
	ret := &schema.UserInfo{}
	if err := a.pipeline.Do(ctx, "GET", "/v1/auth/me", nil, ret); err != nil {
		return nil, err
	}
	return ret, nil
}
