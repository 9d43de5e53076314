package store

import (
	"sync"
	"time"

	"github.com/openadmin/adminkit/internal/collection"
	"github.com/openadmin/adminkit/schema"
)

// Observer receives credential changes; cred is nil after Clear.
type Observer interface {
	OnCredentialChange(cred *schema.Credential)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(cred *schema.Credential)

func (f ObserverFunc) OnCredentialChange(cred *schema.Credential) { f(cred) }

// Handle unregisters an observer; Close is idempotent.
type Handle interface {
	Close()
}

// Store is the single shared holder of the current credential. Set and Clear
// notify every registered observer synchronously before returning; no
// operation returns an error, malformed persisted state reads as absent.
type Store interface {
	Get() *schema.Credential
	Set(cred *schema.Credential)
	Clear()
	UpdateActivity()
	LastActivity() time.Time
	UpdateSessionExpiry(ttl time.Duration)
	Subscribe(observer Observer) Handle
}

// Option configures a store.
type Option func(*memoryStore)

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(m *memoryStore) {
		m.now = now
	}
}

type memoryStore struct {
	mux          sync.RWMutex
	current      *schema.Credential
	lastActivity time.Time
	now          func() time.Time
	observers    *collection.SyncMap[int, Observer]
	nextID       int
	idMux        sync.Mutex
}

// NewMemoryStore creates an in-memory credential store.
func NewMemoryStore(options ...Option) Store {
	ret := &memoryStore{
		now:       time.Now,
		observers: collection.NewSyncMap[int, Observer](),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

func (m *memoryStore) Get() *schema.Credential {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.current
}

func (m *memoryStore) Set(cred *schema.Credential) {
	m.mux.Lock()
	m.current = cred
	m.lastActivity = m.now()
	m.mux.Unlock()
	m.notify(cred)
}

func (m *memoryStore) Clear() {
	m.mux.Lock()
	cleared := m.current != nil
	m.current = nil
	m.lastActivity = time.Time{}
	m.mux.Unlock()
	if cleared {
		m.notify(nil)
	}
}

func (m *memoryStore) UpdateActivity() {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.current == nil {
		return
	}
	m.lastActivity = m.now()
}

func (m *memoryStore) LastActivity() time.Time {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.lastActivity
}

// UpdateSessionExpiry extends the current session without replacing the
// access token. The expiry never moves backwards.
func (m *memoryStore) UpdateSessionExpiry(ttl time.Duration) {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.current == nil {
		return
	}
	candidate := m.now().Add(ttl)
	if candidate.After(m.current.SessionExpiresAt) {
		m.current = m.current.WithSessionExpiry(candidate)
	}
}

func (m *memoryStore) Subscribe(observer Observer) Handle {
	m.idMux.Lock()
	m.nextID++
	id := m.nextID
	m.idMux.Unlock()
	m.observers.Put(id, observer)
	return &subscription{store: m, id: id}
}

// notify runs outside the state lock so observers may read the store.
func (m *memoryStore) notify(cred *schema.Credential) {
	m.observers.Range(func(_ int, observer Observer) bool {
		observer.OnCredentialChange(cred)
		return true
	})
}

type subscription struct {
	store *memoryStore
	id    int
	once  sync.Once
}

func (s *subscription) Close() {
	s.once.Do(func() {
		s.store.observers.Delete(s.id)
	})
}
