package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/openadmin/adminkit/client/auth/session"
	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/schema"
	"github.com/openadmin/adminkit/transport"
)

const defaultSessionTTL = 30 * time.Minute

// Client is the session coordinator: the single entry point the presentation
// layer calls. It owns the credential store and the session monitor, and
// exposes the resource sub-clients, all of which observe the same store.
type Client struct {
	store            store.Store
	monitor          *session.Monitor
	pipeline         *transport.Pipeline
	oauth            *oauth2.Config
	sessionTTL       time.Duration
	now              func() time.Time
	onWarning        func(remaining time.Duration)
	transportOptions []transport.Option
	monitorOptions   []session.Option

	Auth     *AuthClient
	Entities *EntitiesClient
	APIKeys  *APIKeysClient
	MFA      *MFAClient

	mux          sync.Mutex
	subscription *session.Subscription
}

// New creates a coordinator for the given admin API base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	ret := &Client{
		sessionTTL: defaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.store == nil {
		ret.store = store.NewMemoryStore()
	}

	transportOptions := append([]transport.Option{
		transport.WithStore(ret.store),
		transport.WithAuthErrorHandler(ret.onAuthError),
	}, ret.transportOptions...)
	pipeline, err := transport.New(baseURL, transportOptions...)
	if err != nil {
		return nil, err
	}
	ret.pipeline = pipeline

	monitorOptions := append([]session.Option{
		session.WithSessionTTL(ret.sessionTTL),
		session.WithClock(ret.now),
		session.WithExpiryCallback(ret.forceLogout),
	}, ret.monitorOptions...)
	if ret.onWarning != nil {
		monitorOptions = append(monitorOptions, session.WithWarningCallback(ret.onWarning))
	}
	ret.monitor = session.New(ret.store, monitorOptions...)

	ret.Auth = newAuthClient(pipeline, ret.store, ret.oauth, ret.sessionTTL, ret.now)
	ret.Entities = newEntitiesClient(pipeline, ret.store)
	ret.APIKeys = newAPIKeysClient(pipeline, ret.store)
	ret.MFA = newMFAClient(pipeline, ret.store)

	// a session restored by a persisted store is monitored from the start,
	// so a stale credential is cleared instead of served
	if ret.store.Get() != nil {
		ret.startMonitor()
	}
	return ret, nil
}

// Login authenticates against the identity service. On success the store is
// updated (observers see the new credential before Login returns) and the
// session monitor starts; on failure local state is untouched and the error
// propagates unchanged.
func (c *Client) Login(ctx context.Context, request *schema.LoginRequest) (*schema.Credential, error) {
	cred, err := c.Auth.Login(ctx, request)
	if err != nil {
		return nil, err
	}
	c.store.Set(cred)
	c.startMonitor()
	return cred, nil
}

// Logout revokes the token best-effort and always clears local state: the
// credential clearing runs in a deferred block so it happens even when the
// remote revoke call fails, and revoke errors are swallowed.
func (c *Client) Logout(ctx context.Context) error {
	defer func() {
		c.store.Clear()
		c.stopMonitor()
	}()
	if c.store.Get() == nil {
		return nil
	}
	_ = c.Auth.Revoke(ctx)
	return nil
}

// ExtendSession is the explicit user-initiated refresh of the session
// expiry; no-op when not authenticated.
func (c *Client) ExtendSession() {
	if c.store.Get() == nil {
		return
	}
	c.store.UpdateSessionExpiry(c.sessionTTL)
}

// RecordActivity feeds a tracked activity event to the session monitor.
func (c *Client) RecordActivity() {
	c.monitor.Touch()
}

// AccessToken returns the current access token, or empty when logged out.
func (c *Client) AccessToken() string {
	if cred := c.store.Get(); cred != nil {
		return cred.AccessToken
	}
	return ""
}

// Store exposes the shared credential store.
func (c *Client) Store() store.Store {
	return c.store
}

// Monitor exposes the session monitor for state and countdown queries.
func (c *Client) Monitor() *session.Monitor {
	return c.monitor
}

// Close releases the monitor subscription and the sub-client registrations.
func (c *Client) Close() {
	c.stopMonitor()
	c.Auth.Close()
	c.Entities.Close()
	c.APIKeys.Close()
	c.MFA.Close()
}

// onAuthError handles a 401/403 surfaced by the pipeline: forced logout, no
// network calls, so a revoke rejection cannot recurse.
func (c *Client) onAuthError(err *schema.Error) {
	c.forceLogout()
}

// forceLogout clears local state only; used for auth errors and expiry.
func (c *Client) forceLogout() {
	c.store.Clear()
	c.stopMonitor()
}

func (c *Client) startMonitor() {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.subscription != nil {
		c.subscription.Close()
	}
	c.subscription = c.monitor.Start()
}

func (c *Client) stopMonitor() {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.subscription != nil {
		c.subscription.Close()
		c.subscription = nil
	}
}
