package adminkit

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/scy/auth/authorizer"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/openadmin/adminkit/client"
	"github.com/openadmin/adminkit/client/auth/session"
	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/transport"
)

// ClientOptions
//
// defines options for configuring an admin API client.
type ClientOptions struct {
	BaseURL                 string        `yaml:"baseURL" json:"baseURL" short:"u" long:"url" description:"admin api base url"`
	APIKey                  string        `yaml:"apiKey,omitempty" json:"apiKey,omitempty" long:"api-key" description:"machine-to-machine api key"`
	TokenStoreURL           string        `yaml:"tokenStoreURL,omitempty" json:"tokenStoreURL,omitempty" long:"token-store" description:"afs url persisting the session"`
	SessionTTLSeconds       int           `yaml:"sessionTTLSeconds,omitempty" json:"sessionTTLSeconds,omitempty" long:"session-ttl" description:"session duration in seconds"`
	PollIntervalSeconds     int           `yaml:"pollIntervalSeconds,omitempty" json:"pollIntervalSeconds,omitempty" long:"poll-interval" description:"session poll interval in seconds"`
	WarningThresholdSeconds int           `yaml:"warningThresholdSeconds,omitempty" json:"warningThresholdSeconds,omitempty" long:"warning-threshold" description:"session warning threshold in seconds"`
	ResetThresholdSeconds   int           `yaml:"resetThresholdSeconds,omitempty" json:"resetThresholdSeconds,omitempty" long:"reset-threshold" description:"activity reset threshold in seconds"`
	RatePerSecond           float64       `yaml:"ratePerSecond,omitempty" json:"ratePerSecond,omitempty" long:"rate" description:"client-side request rate limit"`
	Retry                   *RetryOptions `yaml:"retry,omitempty" json:"retry,omitempty"`
	Auth                    *ClientAuth   `yaml:"auth,omitempty" json:"auth,omitempty"`
}

// ClientAuth defines identity-service options for an admin API client.
type ClientAuth struct {
	OAuth2ConfigURL string `yaml:"oauth2ConfigURL,omitempty" json:"oauth2ConfigURL,omitempty" short:"c" long:"config" description:"oauth2 config file"`
	EncryptionKey   string `yaml:"encryptionKey,omitempty" json:"encryptionKey,omitempty" short:"k" long:"key" description:"encryption key"`
}

// RetryOptions overrides the transport retry policy.
type RetryOptions struct {
	MaxAttempts int     `yaml:"maxAttempts,omitempty" json:"maxAttempts,omitempty" long:"max-attempts" description:"total attempt budget"`
	BaseDelayMs int     `yaml:"baseDelayMs,omitempty" json:"baseDelayMs,omitempty" long:"base-delay-ms" description:"initial backoff in milliseconds"`
	MaxDelayMs  int     `yaml:"maxDelayMs,omitempty" json:"maxDelayMs,omitempty" long:"max-delay-ms" description:"backoff cap in milliseconds"`
	Jitter      float64 `yaml:"jitter,omitempty" json:"jitter,omitempty" long:"jitter" description:"backoff jitter fraction"`
}

func (o *ClientOptions) Init() {
	if o.SessionTTLSeconds == 0 {
		o.SessionTTLSeconds = 1800
	}
	if o.PollIntervalSeconds == 0 {
		o.PollIntervalSeconds = 30
	}
	if o.WarningThresholdSeconds == 0 {
		o.WarningThresholdSeconds = 120
	}
	if o.ResetThresholdSeconds == 0 {
		o.ResetThresholdSeconds = 180
	}
}

// LoadOptions reads YAML client options from an afs URL.
func LoadOptions(ctx context.Context, URL string) (*ClientOptions, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load client options %q: %w", URL, err)
	}
	ret := &ClientOptions{}
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse client options %q: %w", URL, err)
	}
	return ret, nil
}

// NewClient creates a session coordinator with transport, credential store
// and session monitor configured via ClientOptions.
func NewClient(ctx context.Context, options *ClientOptions, opts ...client.Option) (*client.Client, error) {
	if options == nil {
		return nil, fmt.Errorf("options were nil")
	}
	options.Init()

	var credStore store.Store
	if options.TokenStoreURL != "" {
		credStore = store.NewFileStore(options.TokenStoreURL)
	} else {
		credStore = store.NewMemoryStore()
	}

	transportOptions := []transport.Option{}
	if options.APIKey != "" {
		transportOptions = append(transportOptions, transport.WithAPIKey(options.APIKey))
	}
	if options.RatePerSecond > 0 {
		transportOptions = append(transportOptions,
			transport.WithRateLimiter(rate.NewLimiter(rate.Limit(options.RatePerSecond), 1)))
	}
	if options.Retry != nil {
		transportOptions = append(transportOptions, transport.WithPolicy(options.Retry.policy()))
	}

	clientOptions := []client.Option{
		client.WithStore(credStore),
		client.WithSessionTTL(time.Duration(options.SessionTTLSeconds) * time.Second),
		client.WithTransportOptions(transportOptions...),
		client.WithMonitorOptions(
			session.WithPollInterval(time.Duration(options.PollIntervalSeconds)*time.Second),
			session.WithWarningThreshold(time.Duration(options.WarningThresholdSeconds)*time.Second),
			session.WithResetThreshold(time.Duration(options.ResetThresholdSeconds)*time.Second),
		),
	}
	if options.Auth != nil && options.Auth.OAuth2ConfigURL != "" {
		oauthConfig, err := options.Auth.loadOAuthConfig(ctx)
		if err != nil {
			return nil, err
		}
		clientOptions = append(clientOptions, client.WithOAuthConfig(oauthConfig))
	}
	clientOptions = append(clientOptions, opts...)
	return client.New(options.BaseURL, clientOptions...)
}

func (r *RetryOptions) policy() *transport.Policy {
	ret := transport.DefaultPolicy()
	if r.MaxAttempts > 0 {
		ret.MaxAttempts = r.MaxAttempts
	}
	if r.BaseDelayMs > 0 {
		ret.BaseDelay = time.Duration(r.BaseDelayMs) * time.Millisecond
	}
	if r.MaxDelayMs > 0 {
		ret.MaxDelay = time.Duration(r.MaxDelayMs) * time.Millisecond
	}
	if r.Jitter > 0 {
		ret.Jitter = r.Jitter
	}
	return ret
}

// loadOAuthConfig loads the (optionally encrypted) OAuth2 client config.
func (a *ClientAuth) loadOAuthConfig(ctx context.Context) (*oauth2.Config, error) {
	configURL := a.OAuth2ConfigURL
	if a.EncryptionKey != "" {
		configURL += "|" + a.EncryptionKey
	}
	anAuthorizer := authorizer.New()
	oauthCfg := &authorizer.OAuthConfig{ConfigURL: configURL}
	if err := anAuthorizer.EnsureConfig(ctx, oauthCfg); err != nil {
		return nil, fmt.Errorf("failed to load oauth2 config %q: %w", a.OAuth2ConfigURL, err)
	}
	return oauthCfg.Config, nil
}
