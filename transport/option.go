package transport

import (
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/schema"
)

// Option configures a pipeline.
type Option func(*Pipeline)

// WithStore sets the credential store
func WithStore(s store.Store) Option {
	return func(p *Pipeline) {
		p.store = s
	}
}

// WithHTTPClient sets the underlying http client
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		p.httpClient = client
	}
}

// WithPolicy sets the retry policy
func WithPolicy(policy *Policy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithAPIKey sets the machine-to-machine API key; a bearer credential in the
// store always takes precedence over it.
func WithAPIKey(key string) Option {
	return func(p *Pipeline) {
		p.apiKey = key
	}
}

// WithTokenSource sets an oauth2 token source used when no interactive
// credential is present.
func WithTokenSource(source oauth2.TokenSource) Option {
	return func(p *Pipeline) {
		p.tokenSource = source
	}
}

// WithRateLimiter sets a client-side request rate limiter applied per attempt
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(p *Pipeline) {
		p.limiter = limiter
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(p *Pipeline) {
		p.userAgent = userAgent
	}
}

// WithAuthErrorHandler sets the hook invoked on 401/403 responses before the
// auth error is surfaced to the caller.
func WithAuthErrorHandler(handler func(err *schema.Error)) Option {
	return func(p *Pipeline) {
		p.onAuthError = handler
	}
}

// WithAutoIdempotencyKey makes the pipeline synthesize an idempotency key for
// unsafe methods so they become retryable; off by default.
func WithAutoIdempotencyKey() Option {
	return func(p *Pipeline) {
		p.autoIdempotencyKey = true
	}
}
