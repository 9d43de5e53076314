package client

import (
	"time"

	"golang.org/x/oauth2"

	"github.com/openadmin/adminkit/client/auth/session"
	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/transport"
)

// Option configures the coordinator.
type Option func(c *Client)

// WithStore sets the credential store shared by all sub-clients
func WithStore(s store.Store) Option {
	return func(c *Client) {
		c.store = s
	}
}

// WithSessionTTL sets the session duration granted on login and extension
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.sessionTTL = ttl
	}
}

// WithOAuthConfig makes login use the OAuth2 password grant
func WithOAuthConfig(config *oauth2.Config) Option {
	return func(c *Client) {
		c.oauth = config
	}
}

// WithTransportOptions appends pipeline options
func WithTransportOptions(options ...transport.Option) Option {
	return func(c *Client) {
		c.transportOptions = append(c.transportOptions, options...)
	}
}

// WithMonitorOptions appends session monitor options
func WithMonitorOptions(options ...session.Option) Option {
	return func(c *Client) {
		c.monitorOptions = append(c.monitorOptions, options...)
	}
}

// WithWarningCallback sets the session warning signal handler
func WithWarningCallback(callback func(remaining time.Duration)) Option {
	return func(c *Client) {
		c.onWarning = callback
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}
