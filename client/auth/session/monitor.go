package session

import (
	"sync"
	"time"

	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/schema"
)

// State is the monitor lifecycle state.
type State string

const (
	StateInactive State = "inactive"
	StateActive   State = "active"
	StateWarning  State = "warning"
	StateExpired  State = "expired"
)

const (
	defaultPollInterval     = 30 * time.Second
	defaultWarningThreshold = 120 * time.Second
	defaultResetThreshold   = 180 * time.Second
	defaultSessionTTL       = 30 * time.Minute
)

// Monitor watches the credential store and tracks remaining session time.
type Monitor struct {
	store            store.Store
	pollInterval     time.Duration
	warningThreshold time.Duration
	resetThreshold   time.Duration
	sessionTTL       time.Duration
	onWarning        func(remaining time.Duration)
	onExpired        func()
	now              func() time.Time

	mux     sync.Mutex
	state   State
	stop    chan struct{}
	running bool
}

// Option configures a monitor.
type Option func(*Monitor)

// WithPollInterval sets the poll interval
func WithPollInterval(interval time.Duration) Option {
	return func(m *Monitor) {
		m.pollInterval = interval
	}
}

// WithWarningThreshold sets the remaining time below which Warning is entered
func WithWarningThreshold(threshold time.Duration) Option {
	return func(m *Monitor) {
		m.warningThreshold = threshold
	}
}

// WithResetThreshold sets the remaining time below which activity extends the session
func WithResetThreshold(threshold time.Duration) Option {
	return func(m *Monitor) {
		m.resetThreshold = threshold
	}
}

// WithSessionTTL sets the extension applied on qualifying activity
func WithSessionTTL(ttl time.Duration) Option {
	return func(m *Monitor) {
		m.sessionTTL = ttl
	}
}

// WithWarningCallback sets the warning signal handler
func WithWarningCallback(callback func(remaining time.Duration)) Option {
	return func(m *Monitor) {
		m.onWarning = callback
	}
}

// WithExpiryCallback sets the forced-logout handler fired once on expiry
func WithExpiryCallback(callback func()) Option {
	return func(m *Monitor) {
		m.onExpired = callback
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// New creates a monitor bound to the supplied credential store.
func New(s store.Store, options ...Option) *Monitor {
	ret := &Monitor{
		store:            s,
		pollInterval:     defaultPollInterval,
		warningThreshold: defaultWarningThreshold,
		resetThreshold:   defaultResetThreshold,
		sessionTTL:       defaultSessionTTL,
		now:              time.Now,
		state:            StateInactive,
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Subscription is the handle returned by Start; closing it stops the poll
// goroutine and releases the store registration. Close is idempotent.
type Subscription struct {
	monitor *Monitor
	handle  store.Handle
	once    sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.handle != nil {
			s.handle.Close()
		}
		s.monitor.deactivate()
	})
}

// Start begins polling and registers with the store so that a Clear (logout
// or forced logout) stops the timers without a separate call. The returned
// subscription must be closed by the caller.
func (m *Monitor) Start() *Subscription {
	m.mux.Lock()
	if m.running {
		m.stopLocked()
	}
	stop := make(chan struct{})
	m.stop = stop
	m.running = true
	active := m.store.Get() != nil
	if active {
		m.state = StateActive
	} else {
		m.state = StateInactive
	}
	m.mux.Unlock()

	handle := m.store.Subscribe(store.ObserverFunc(m.onCredentialChange))
	// an already-expired credential (e.g. restored from a persisted
	// snapshot) must be caught without waiting for the first tick
	go m.loop(stop, active)
	return &Subscription{monitor: m, handle: handle}
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.state
}

// Remaining recomputes the remaining session time from the wall clock; zero
// when no credential is present.
func (m *Monitor) Remaining() time.Duration {
	cred := m.store.Get()
	if cred == nil {
		return 0
	}
	if remaining := cred.Remaining(m.now()); remaining > 0 {
		return remaining
	}
	return 0
}

// ActivityState exposes the derived activity snapshot.
func (m *Monitor) ActivityState() schema.ActivityState {
	m.mux.Lock()
	state := m.state
	m.mux.Unlock()
	return schema.ActivityState{
		LastActivityAt:   m.store.LastActivity(),
		WarningThreshold: m.warningThreshold,
		SessionExpired:   state == StateExpired,
	}
}

// Touch records a tracked activity event (pointer-down, key-down, scroll,
// touch-start in a UI host). Activity always bumps the store's activity
// timestamp; it extends the session and resets Warning only when remaining
// time has dropped below the reset threshold.
func (m *Monitor) Touch() {
	cred := m.store.Get()
	if cred == nil {
		return
	}
	m.store.UpdateActivity()
	remaining := cred.Remaining(m.now())
	if remaining <= 0 {
		m.check()
		return
	}
	if remaining < m.resetThreshold {
		m.store.UpdateSessionExpiry(m.sessionTTL)
	}
	m.mux.Lock()
	if m.state == StateWarning {
		m.state = StateActive
	}
	m.mux.Unlock()
}

func (m *Monitor) loop(stop chan struct{}, checkNow bool) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	if checkNow {
		m.check()
	}
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.check()
		}
	}
}

// check recomputes remaining time and applies state transitions. Expiry is
// idempotent: once Expired, repeated checks are no-ops.
func (m *Monitor) check() {
	cred := m.store.Get()
	now := m.now()

	var expired bool
	var warned bool
	var warnRemaining time.Duration

	m.mux.Lock()
	if !m.running {
		m.mux.Unlock()
		return
	}
	switch {
	case cred == nil:
		// nothing left to watch, release the timers
		m.stopLocked()
	case m.state == StateExpired:
	case cred.Expired(now):
		m.state = StateExpired
		expired = true
	case cred.Remaining(now) <= m.warningThreshold:
		if m.state == StateActive {
			m.state = StateWarning
			warned = true
			warnRemaining = cred.Remaining(now)
		}
	default:
		m.state = StateActive
	}
	m.mux.Unlock()

	if warned && m.onWarning != nil {
		m.onWarning(warnRemaining)
	}
	if expired && m.onExpired != nil {
		m.onExpired()
	}
}

// onCredentialChange reacts to store broadcasts: login activates, clear
// deactivates and stops the timers.
func (m *Monitor) onCredentialChange(cred *schema.Credential) {
	m.mux.Lock()
	defer m.mux.Unlock()
	if !m.running {
		return
	}
	if cred == nil {
		m.stopLocked()
		return
	}
	m.state = StateActive
}

func (m *Monitor) deactivate() {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.stopLocked()
}

func (m *Monitor) stopLocked() {
	if !m.running {
		return
	}
	m.running = false
	m.state = StateInactive
	close(m.stop)
	m.stop = nil
}
