package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/schema"
)

const (
	headerAuthorization  = "Authorization"
	headerAPIKey         = "X-API-Key"
	headerIdempotencyKey = "Idempotency-Key"
)

// Pipeline issues HTTP calls on behalf of sub-clients. It is safe for
// concurrent use; per-request state lives in a RetryContext scoped to one
// Do call.
type Pipeline struct {
	baseURL            string
	httpClient         *http.Client
	store              store.Store
	policy             *Policy
	apiKey             string
	tokenSource        oauth2.TokenSource
	limiter            *rate.Limiter
	userAgent          string
	autoIdempotencyKey bool
	onAuthError        func(err *schema.Error)
}

// New creates a pipeline for the given base URL.
func New(baseURL string, options ...Option) (*Pipeline, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL was empty")
	}
	ret := &Pipeline{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		policy:     DefaultPolicy(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	idempotencyKey string
	skipAuth       bool
	header         http.Header
	query          url.Values
}

// WithIdempotencyKey marks an unsafe request replay-safe; the receiving
// service dedupes by this key.
func WithIdempotencyKey(key string) RequestOption {
	return func(o *requestOptions) {
		o.idempotencyKey = key
	}
}

// WithoutAuth issues the request unauthenticated (login itself).
func WithoutAuth() RequestOption {
	return func(o *requestOptions) {
		o.skipAuth = true
	}
}

// WithHeader adds a request header
func WithHeader(name, value string) RequestOption {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = http.Header{}
		}
		o.header.Add(name, value)
	}
}

// WithQuery adds a query parameter
func WithQuery(name, value string) RequestOption {
	return func(o *requestOptions) {
		if o.query == nil {
			o.query = url.Values{}
		}
		o.query.Add(name, value)
	}
}

// NewIdempotencyKey returns a fresh opaque idempotency key.
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// Do executes one logical request: marshals body, attaches credentials and
// idempotency key, retries per policy and decodes the response into out.
func (p *Pipeline) Do(ctx context.Context, method, path string, body, out interface{}, options ...RequestOption) error {
	opts := &requestOptions{}
	for _, opt := range options {
		opt(opts)
	}
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return &schema.Error{Kind: schema.KindValidation, Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
	}
	idempotent := idempotentMethod(method) || opts.idempotencyKey != ""
	if !idempotent && p.autoIdempotencyKey {
		opts.idempotencyKey = NewIdempotencyKey()
		idempotent = true
	}

	retryCtx := &RetryContext{MaxAttempts: p.policy.MaxAttempts}
	for {
		retryCtx.Attempt++
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return schema.NewNetworkError(err)
			}
		}
		err := p.doOnce(ctx, method, path, payload, out, opts)
		if err == nil {
			return nil
		}
		var reqErr *schema.Error
		if !errors.As(err, &reqErr) {
			return err
		}
		retryCtx.LastKind = reqErr.Kind
		// 401/403 is never retried: hand it to the coordinator and surface.
		// Only a rejected credential counts; an unauthenticated request
		// (login itself) failing must not tear down an existing session.
		if reqErr.Kind == schema.KindAuth {
			if reqErr.Status != 0 && !opts.skipAuth && p.onAuthError != nil {
				p.onAuthError(reqErr)
			}
			return reqErr
		}
		decision := p.policy.Decide(retryCtx.Attempt, reqErr, idempotent)
		if !decision.Retry {
			return reqErr
		}
		retryCtx.Backoff = decision.Delay
		if err := sleep(ctx, decision.Delay); err != nil {
			return reqErr
		}
	}
}

func (p *Pipeline) doOnce(ctx context.Context, method, path string, payload []byte, out interface{}, opts *requestOptions) error {
	URL := p.baseURL + path
	if len(opts.query) > 0 {
		separator := "?"
		if strings.Contains(URL, "?") {
			separator = "&"
		}
		URL += separator + opts.query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, URL, reader)
	if err != nil {
		return &schema.Error{Kind: schema.KindClient, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, "+schema.ContentTypeProblem)
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	for name, values := range opts.header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	if !opts.skipAuth {
		// credential is re-read on every attempt, never cached at request
		// start, so a logout between retries is observed
		if err := p.authorize(req); err != nil {
			return err
		}
	}
	if opts.idempotencyKey != "" {
		req.Header.Set(headerIdempotencyKey, opts.idempotencyKey)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return classifyResponse(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &schema.Error{Kind: schema.KindClient, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// authorize attaches the credential: bearer token from the store wins, then
// an oauth2 token source, then the API key. A request that requires auth and
// has no source fails before any network call.
func (p *Pipeline) authorize(req *http.Request) error {
	if p.store != nil {
		if cred := p.store.Get(); cred != nil {
			req.Header.Set(headerAuthorization, "Bearer "+cred.AccessToken)
			return nil
		}
	}
	if p.tokenSource != nil {
		token, err := p.tokenSource.Token()
		if err != nil {
			return &schema.Error{Kind: schema.KindAuth, Err: err}
		}
		req.Header.Set(headerAuthorization, "Bearer "+token.AccessToken)
		return nil
	}
	if p.apiKey != "" {
		req.Header.Set(headerAPIKey, p.apiKey)
		return nil
	}
	return schema.ErrNotAuthenticated
}

// sleep waits for the retry delay, aborting when the context is done.
func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
