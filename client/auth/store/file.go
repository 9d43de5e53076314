package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/openadmin/adminkit/schema"
)

// FileStore persists the credential snapshot at an afs URL so a session
// survives process restarts; everything else delegates to the in-memory
// store. Persistence failures are deliberately ignored: the store contract
// is that no operation throws, the in-memory state stays authoritative.
type FileStore struct {
	memory *memoryStore
	fs     afs.Service
	URL    string
}

type snapshot struct {
	Credential     *schema.Credential `json:"credential,omitempty"`
	LastActivityAt time.Time          `json:"lastActivityAt,omitempty"`
}

// NewFileStore creates a Store persisted at the given afs URL. Malformed or
// missing persisted state is treated as an absent credential.
func NewFileStore(URL string, options ...Option) *FileStore {
	ret := &FileStore{
		memory: NewMemoryStore(options...).(*memoryStore),
		fs:     afs.New(),
		URL:    URL,
	}
	ret.load()
	return ret
}

func (f *FileStore) Get() *schema.Credential {
	return f.memory.Get()
}

func (f *FileStore) Set(cred *schema.Credential) {
	f.memory.mux.Lock()
	f.memory.current = cred
	f.memory.lastActivity = f.memory.now()
	f.save()
	f.memory.mux.Unlock()
	f.memory.notify(cred)
}

func (f *FileStore) Clear() {
	f.memory.mux.Lock()
	cleared := f.memory.current != nil
	f.memory.current = nil
	f.memory.lastActivity = time.Time{}
	_ = f.fs.Delete(context.Background(), f.URL)
	f.memory.mux.Unlock()
	if cleared {
		f.memory.notify(nil)
	}
}

func (f *FileStore) UpdateActivity() {
	f.memory.mux.Lock()
	defer f.memory.mux.Unlock()
	if f.memory.current == nil {
		return
	}
	f.memory.lastActivity = f.memory.now()
	f.save()
}

func (f *FileStore) LastActivity() time.Time {
	return f.memory.LastActivity()
}

func (f *FileStore) UpdateSessionExpiry(ttl time.Duration) {
	f.memory.mux.Lock()
	defer f.memory.mux.Unlock()
	if f.memory.current == nil {
		return
	}
	candidate := f.memory.now().Add(ttl)
	if candidate.After(f.memory.current.SessionExpiresAt) {
		f.memory.current = f.memory.current.WithSessionExpiry(candidate)
		f.save()
	}
}

func (f *FileStore) Subscribe(observer Observer) Handle {
	return f.memory.Subscribe(observer)
}

// save is called with the memory lock held.
func (f *FileStore) save() {
	snap := snapshot{Credential: f.memory.current, LastActivityAt: f.memory.lastActivity}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = f.fs.Upload(context.Background(), f.URL, file.DefaultFileOsMode, bytes.NewReader(data))
}

func (f *FileStore) load() {
	ctx := context.Background()
	if ok, _ := f.fs.Exists(ctx, f.URL); !ok {
		return
	}
	data, err := f.fs.DownloadWithURL(ctx, f.URL)
	if err != nil {
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil || snap.Credential == nil {
		return
	}
	if snap.Credential.AccessToken == "" {
		return
	}
	f.memory.mux.Lock()
	f.memory.current = snap.Credential
	f.memory.lastActivity = snap.LastActivityAt
	f.memory.mux.Unlock()
}
