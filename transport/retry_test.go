package transport

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openadmin/adminkit/schema"
)

func TestPolicy_Decide(t *testing.T) {
	policy := &Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	testCases := []struct {
		description string
		attempt     int
		err         error
		idempotent  bool
		expectRetry bool
	}{
		{description: "server error on idempotent request retries", attempt: 1, err: &schema.Error{Kind: schema.KindServer, Status: 503}, idempotent: true, expectRetry: true},
		{description: "network error retries", attempt: 1, err: schema.NewNetworkError(errors.New("refused")), idempotent: true, expectRetry: true},
		{description: "timeout retries", attempt: 2, err: schema.NewTimeoutError(errors.New("deadline")), idempotent: true, expectRetry: true},
		{description: "attempt budget exhausted", attempt: 3, err: &schema.Error{Kind: schema.KindServer, Status: 502}, idempotent: true, expectRetry: false},
		{description: "non-idempotent never retries", attempt: 1, err: schema.NewNetworkError(errors.New("refused")), idempotent: false, expectRetry: false},
		{description: "auth never retries", attempt: 1, err: &schema.Error{Kind: schema.KindAuth, Status: 401}, idempotent: true, expectRetry: false},
		{description: "validation never retries", attempt: 1, err: &schema.Error{Kind: schema.KindValidation, Status: 422}, idempotent: true, expectRetry: false},
		{description: "client error never retries", attempt: 1, err: &schema.Error{Kind: schema.KindClient, Status: 404}, idempotent: true, expectRetry: false},
		{description: "non-taxonomy error never retries", attempt: 1, err: errors.New("plain"), idempotent: true, expectRetry: false},
	}
	for _, testCase := range testCases {
		actual := policy.Decide(testCase.attempt, testCase.err, testCase.idempotent)
		assert.Equal(t, testCase.expectRetry, actual.Retry, testCase.description)
	}
}

func TestPolicy_RateLimitHint(t *testing.T) {
	policy := &Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second}

	hinted := &schema.Error{Kind: schema.KindRateLimit, Status: 429, RetryAfter: time.Second}
	decision := policy.Decide(1, hinted, true)
	require.True(t, decision.Retry)
	assert.Equal(t, time.Second, decision.Delay, "server hint wins")

	capped := &schema.Error{Kind: schema.KindRateLimit, Status: 429, RetryAfter: time.Minute}
	decision = policy.Decide(1, capped, true)
	require.True(t, decision.Retry)
	assert.Equal(t, 2*time.Second, decision.Delay, "hint capped at max delay")

	unhinted := &schema.Error{Kind: schema.KindRateLimit, Status: 429}
	decision = policy.Decide(1, unhinted, true)
	require.True(t, decision.Retry)
	assert.Equal(t, 100*time.Millisecond, decision.Delay, "fallback to default backoff")
}

func TestPolicy_BackoffIsNonDecreasing(t *testing.T) {
	serverErr := &schema.Error{Kind: schema.KindServer, Status: 503}
	policies := []*Policy{
		{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 10 * time.Second, Jitter: 0.2},
		// cap saturates from attempt 2 on; jitter is applied before the
		// cap so capped delays are all equal
		{MaxAttempts: 6, BaseDelay: 100 * time.Millisecond, MaxDelay: 150 * time.Millisecond, Jitter: 0.2},
	}
	for _, policy := range policies {
		for i := 0; i < 50; i++ {
			previous := time.Duration(0)
			for attempt := 1; attempt < policy.MaxAttempts; attempt++ {
				decision := policy.Decide(attempt, serverErr, true)
				require.True(t, decision.Retry)
				assert.GreaterOrEqual(t, decision.Delay, previous,
					"delay between attempt %v and %v decreased", attempt, attempt+1)
				assert.LessOrEqual(t, decision.Delay, policy.MaxDelay, "cap is a hard ceiling")
				previous = decision.Delay
			}
		}
	}
}

func TestPolicy_BackoffWithoutJitterDoubles(t *testing.T) {
	policy := &Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, policy.backoff(1))
	assert.Equal(t, 200*time.Millisecond, policy.backoff(2))
	assert.Equal(t, 300*time.Millisecond, policy.backoff(3), "capped")
	assert.Equal(t, 300*time.Millisecond, policy.backoff(4))
}

func TestIdempotentMethod(t *testing.T) {
	assert.True(t, idempotentMethod(http.MethodGet))
	assert.True(t, idempotentMethod(http.MethodHead))
	assert.False(t, idempotentMethod(http.MethodPost))
	assert.False(t, idempotentMethod(http.MethodPut), "writes need an explicit idempotency key")
	assert.False(t, idempotentMethod(http.MethodDelete))
}

func TestParseRetryAfter(t *testing.T) {
	header := http.Header{}
	assert.Equal(t, time.Duration(0), parseRetryAfter(header))

	header.Set("Retry-After", "5")
	assert.Equal(t, 5*time.Second, parseRetryAfter(header))

	header.Set("Retry-After", time.Now().Add(10*time.Second).UTC().Format(http.TimeFormat))
	actual := parseRetryAfter(header)
	assert.Greater(t, actual, 5*time.Second)
	assert.LessOrEqual(t, actual, 10*time.Second)

	header.Set("Retry-After", "garbage")
	assert.Equal(t, time.Duration(0), parseRetryAfter(header))
}
