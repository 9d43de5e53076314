package transport

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/openadmin/adminkit/schema"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 10 * time.Second
	defaultJitter      = 0.2
)

// Policy is a pure retry decision function: exponential backoff with jitter,
// capped, bounded by a total attempt budget. Jitter must stay <= 1/3 so that
// consecutive delays never decrease.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64
}

// RetryContext tracks the attempt budget for one logical request; it is
// discarded when the request settles.
type RetryContext struct {
	Attempt     int
	MaxAttempts int
	LastKind    schema.Kind
	Backoff     time.Duration
}

// Decision is the outcome of consulting the policy after a failed attempt.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// DefaultPolicy returns the policy defaults: 3 total attempts, 500ms base,
// 10s cap, 20% jitter.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		MaxDelay:    defaultMaxDelay,
		Jitter:      defaultJitter,
	}
}

// Decide returns whether to retry after the given attempt (1-based) and how
// long to wait. Non-idempotent requests are never retried: a write that may
// have partially applied server-side needs an idempotency key before a replay
// is safe.
func (p *Policy) Decide(attempt int, err error, idempotent bool) Decision {
	if attempt >= p.MaxAttempts {
		return Decision{}
	}
	if !idempotent {
		return Decision{}
	}
	var reqErr *schema.Error
	if !errors.As(err, &reqErr) {
		return Decision{}
	}
	if !reqErr.Retryable() {
		return Decision{}
	}
	if reqErr.Kind == schema.KindRateLimit && reqErr.RetryAfter > 0 {
		delay := reqErr.RetryAfter
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
		return Decision{Retry: true, Delay: delay}
	}
	return Decision{Retry: true, Delay: p.backoff(attempt)}
}

// backoff jitters the exponential delay before applying the cap: MaxDelay is
// a hard ceiling, so once the budget saturates it every delay equals the cap
// and the sequence stays non-decreasing.
func (p *Policy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay << (attempt - 1)
	if p.Jitter > 0 {
		span := float64(delay) * p.Jitter
		delay += time.Duration((rand.Float64()*2 - 1) * span)
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

// idempotentMethod reports whether the method is safe to retry without an
// idempotency key. PUT/DELETE are excluded on purpose: only reads and writes
// explicitly marked idempotent by the caller qualify.
func idempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// parseRetryAfter reads the Retry-After hint, either delta-seconds or an
// HTTP date.
func parseRetryAfter(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if delay := time.Until(at); delay > 0 {
			return delay
		}
	}
	return 0
}
