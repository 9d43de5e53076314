package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openadmin/adminkit/schema"
)

func TestFileStore_SurvivesRestart(t *testing.T) {
	URL := filepath.Join(t.TempDir(), "session.json")
	first := NewFileStore(URL)
	cred := schema.NewCredential("persisted-token", time.Now().Truncate(time.Second).UTC(), time.Hour)
	first.Set(cred)

	second := NewFileStore(URL)
	restored := second.Get()
	require.NotNil(t, restored)
	assert.Equal(t, cred.AccessToken, restored.AccessToken)
	assert.True(t, cred.SessionExpiresAt.Equal(restored.SessionExpiresAt))
}

func TestFileStore_ClearRemovesSnapshot(t *testing.T) {
	URL := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStore(URL)
	s.Set(schema.NewCredential("token", time.Now(), time.Hour))
	s.Clear()

	_, err := os.Stat(URL)
	assert.True(t, os.IsNotExist(err))
	assert.Nil(t, NewFileStore(URL).Get())
}

func TestFileStore_MalformedSnapshotReadsAsAbsent(t *testing.T) {
	URL := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(URL, []byte("{not json"), 0o600))
	assert.Nil(t, NewFileStore(URL).Get())
}

func TestFileStore_UpdateSessionExpiryPersists(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	URL := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStore(URL, WithClock(func() time.Time { return now }))
	s.Set(schema.NewCredential("token", now, time.Hour))
	s.UpdateSessionExpiry(2 * time.Hour)

	restored := NewFileStore(URL).Get()
	require.NotNil(t, restored)
	assert.True(t, restored.SessionExpiresAt.Equal(now.Add(2*time.Hour)))
}
