package schema

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Credential is the current access token plus its session metadata. It is
// immutable: refresh and activity extension replace the value wholesale via
// the store, never mutate it in place.
type Credential struct {
	AccessToken      string    `json:"accessToken"`
	IssuedAt         time.Time `json:"issuedAt"`
	SessionExpiresAt time.Time `json:"sessionExpiresAt"`
}

// NewCredential creates a credential issued now with the supplied session TTL.
func NewCredential(accessToken string, now time.Time, ttl time.Duration) *Credential {
	return &Credential{AccessToken: accessToken, IssuedAt: now, SessionExpiresAt: now.Add(ttl)}
}

// Remaining returns the session time left at the supplied instant.
func (c *Credential) Remaining(now time.Time) time.Duration {
	return c.SessionExpiresAt.Sub(now)
}

// Expired reports whether the session has run out at the supplied instant.
func (c *Credential) Expired(now time.Time) bool {
	return !c.SessionExpiresAt.After(now)
}

// WithSessionExpiry returns a copy with a replaced session expiry.
func (c *Credential) WithSessionExpiry(expiresAt time.Time) *Credential {
	ret := *c
	ret.SessionExpiresAt = expiresAt
	return &ret
}

// Token converts the credential to an oauth2 token for interop with
// oauth2-based tooling.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{AccessToken: c.AccessToken, TokenType: "Bearer", Expiry: c.SessionExpiresAt}
}

// FromToken builds a credential from an oauth2 token; when the token carries
// no expiry the supplied fallback TTL bounds the session.
func FromToken(token *oauth2.Token, now time.Time, fallbackTTL time.Duration) *Credential {
	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = now.Add(fallbackTTL)
	}
	return &Credential{AccessToken: token.AccessToken, IssuedAt: now, SessionExpiresAt: expiresAt}
}

// ActivityState is the derived session-activity snapshot owned by the
// session monitor; it is never persisted.
type ActivityState struct {
	LastActivityAt   time.Time     `json:"lastActivityAt"`
	WarningThreshold time.Duration `json:"warningThreshold"`
	SessionExpired   bool          `json:"sessionExpired"`
}

// TokenExpiry extracts the exp claim from a JWT access token without
// verifying the signature; verification belongs to the identity service.
func TokenExpiry(accessToken string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}

// TokenIssuedAt extracts the iat claim from a JWT access token.
func TokenIssuedAt(accessToken string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	issuedAt, err := claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return time.Time{}, false
	}
	return issuedAt.Time, true
}
