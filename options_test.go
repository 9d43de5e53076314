package adminkit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions_Init(t *testing.T) {
	options := &ClientOptions{BaseURL: "https://admin.example.com"}
	options.Init()
	assert.Equal(t, 1800, options.SessionTTLSeconds)
	assert.Equal(t, 30, options.PollIntervalSeconds)
	assert.Equal(t, 120, options.WarningThresholdSeconds)
	assert.Equal(t, 180, options.ResetThresholdSeconds)
}

func TestLoadOptions(t *testing.T) {
	URL := filepath.Join(t.TempDir(), "client.yaml")
	config := `
baseURL: https://admin.example.com
sessionTTLSeconds: 900
retry:
  maxAttempts: 5
  baseDelayMs: 250
`
	require.NoError(t, os.WriteFile(URL, []byte(config), 0o600))

	options, err := LoadOptions(context.Background(), URL)
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example.com", options.BaseURL)
	assert.Equal(t, 900, options.SessionTTLSeconds)
	require.NotNil(t, options.Retry)
	assert.Equal(t, 5, options.Retry.MaxAttempts)

	policy := options.Retry.policy()
	assert.Equal(t, 5, policy.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, policy.BaseDelay)
	assert.Equal(t, 10*time.Second, policy.MaxDelay, "unset fields keep defaults")
}

func TestNewClient(t *testing.T) {
	options := &ClientOptions{
		BaseURL:       "https://admin.example.com",
		TokenStoreURL: filepath.Join(t.TempDir(), "session.json"),
		RatePerSecond: 10,
		Retry:         &RetryOptions{MaxAttempts: 2},
	}
	cli, err := NewClient(context.Background(), options)
	require.NoError(t, err)
	defer cli.Close()
	assert.Nil(t, cli.Store().Get())

	_, err = NewClient(context.Background(), nil)
	assert.Error(t, err)
}
