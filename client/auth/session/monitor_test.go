package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openadmin/adminkit/client/auth/store"
	"github.com/openadmin/adminkit/schema"
)

type fixture struct {
	store    store.Store
	monitor  *Monitor
	now      time.Time
	warnings []time.Duration
	expiries int
}

func newFixture(t *testing.T, options ...Option) *fixture {
	t.Helper()
	ret := &fixture{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return ret.now }
	ret.store = store.NewMemoryStore(store.WithClock(clock))
	options = append([]Option{
		WithClock(clock),
		WithPollInterval(time.Hour), // transitions driven by explicit checks
		WithSessionTTL(10 * time.Minute),
		WithWarningCallback(func(remaining time.Duration) { ret.warnings = append(ret.warnings, remaining) }),
		WithExpiryCallback(func() { ret.expiries++ }),
	}, options...)
	ret.monitor = New(ret.store, options...)
	return ret
}

func (f *fixture) login(ttl time.Duration) {
	f.store.Set(schema.NewCredential("token", f.now, ttl))
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestMonitor_WarningFiresOncePerCrossing(t *testing.T) {
	f := newFixture(t)
	sub := f.monitor.Start()
	defer sub.Close()

	f.login(10 * time.Minute)
	assert.Equal(t, StateActive, f.monitor.State())

	f.advance(7 * time.Minute)
	f.monitor.check()
	assert.Equal(t, StateActive, f.monitor.State(), "above threshold stays active")

	f.advance(90 * time.Second) // remaining 90s, below the 120s threshold
	f.monitor.check()
	assert.Equal(t, StateWarning, f.monitor.State())
	require.Len(t, f.warnings, 1)
	assert.Equal(t, 90*time.Second, f.warnings[0])

	f.monitor.check()
	assert.Len(t, f.warnings, 1, "no repeated signal while remaining in Warning")
}

func TestMonitor_ActivityResetsWarning(t *testing.T) {
	f := newFixture(t)
	sub := f.monitor.Start()
	defer sub.Close()

	f.login(10 * time.Minute)
	f.advance(10*time.Minute - 90*time.Second)
	f.monitor.check()
	require.Equal(t, StateWarning, f.monitor.State())

	f.monitor.Touch()
	assert.Equal(t, StateActive, f.monitor.State())
	assert.True(t, f.store.Get().SessionExpiresAt.Equal(f.now.Add(10*time.Minute)),
		"activity below the reset threshold extends the session")
	assert.Equal(t, f.now, f.store.LastActivity())
}

func TestMonitor_ActivityAboveResetThresholdOnlyBumpsActivity(t *testing.T) {
	f := newFixture(t)
	sub := f.monitor.Start()
	defer sub.Close()

	f.login(10 * time.Minute)
	expiresAt := f.store.Get().SessionExpiresAt
	f.advance(time.Minute)
	f.monitor.Touch()
	assert.True(t, f.store.Get().SessionExpiresAt.Equal(expiresAt), "plenty of time left, no extension")
	assert.Equal(t, f.now, f.store.LastActivity())
}

func TestMonitor_ExpiryFiresOnce(t *testing.T) {
	f := newFixture(t)
	sub := f.monitor.Start()
	defer sub.Close()

	f.login(10 * time.Minute)
	f.advance(11 * time.Minute)
	f.monitor.check()
	assert.Equal(t, StateExpired, f.monitor.State())
	assert.Equal(t, 1, f.expiries)

	f.monitor.check()
	f.monitor.check()
	assert.Equal(t, 1, f.expiries, "repeated checks while Expired are no-ops")
}

func TestMonitor_ClearStopsMonitor(t *testing.T) {
	f := newFixture(t)
	sub := f.monitor.Start()
	defer sub.Close()

	f.login(10 * time.Minute)
	require.Equal(t, StateActive, f.monitor.State())

	f.store.Clear()
	assert.Equal(t, StateInactive, f.monitor.State())
	f.monitor.check()
	assert.Equal(t, StateInactive, f.monitor.State(), "stopped monitor ignores checks")
}

func TestMonitor_StartWithCredentialChecksImmediately(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	credStore := store.NewMemoryStore(store.WithClock(clock))
	credStore.Set(schema.NewCredential("token", now.Add(-11*time.Minute), 10*time.Minute))

	var expiries int32
	monitor := New(credStore,
		WithClock(clock),
		WithPollInterval(time.Hour),
		WithExpiryCallback(func() { atomic.AddInt32(&expiries, 1) }))
	sub := monitor.Start()
	defer sub.Close()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&expiries) == 1 },
		time.Second, 5*time.Millisecond, "expired credential caught without waiting for a poll tick")
	assert.Equal(t, StateExpired, monitor.State())
}

func TestMonitor_PollWithoutCredentialStopsTimers(t *testing.T) {
	f := newFixture(t)
	sub := f.monitor.Start()
	defer sub.Close()

	f.monitor.check()
	assert.Equal(t, StateInactive, f.monitor.State())

	// the stopped monitor ignores a later credential; a fresh Start is needed
	f.login(10 * time.Minute)
	assert.Equal(t, StateInactive, f.monitor.State())
}

func TestMonitor_SubscriptionCloseIsIdempotent(t *testing.T) {
	f := newFixture(t)
	sub := f.monitor.Start()
	f.login(10 * time.Minute)
	sub.Close()
	sub.Close()
	assert.Equal(t, StateInactive, f.monitor.State())

	// a new login/start cycle works after release
	sub = f.monitor.Start()
	defer sub.Close()
	assert.Equal(t, StateActive, f.monitor.State())
}

func TestMonitor_Remaining(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, time.Duration(0), f.monitor.Remaining())

	f.login(10 * time.Minute)
	f.advance(4 * time.Minute)
	assert.Equal(t, 6*time.Minute, f.monitor.Remaining())

	f.advance(7 * time.Minute)
	assert.Equal(t, time.Duration(0), f.monitor.Remaining())
}

func TestMonitor_ActivityState(t *testing.T) {
	f := newFixture(t)
	sub := f.monitor.Start()
	defer sub.Close()
	f.login(10 * time.Minute)

	state := f.monitor.ActivityState()
	assert.Equal(t, 120*time.Second, state.WarningThreshold)
	assert.False(t, state.SessionExpired)

	f.advance(11 * time.Minute)
	f.monitor.check()
	assert.True(t, f.monitor.ActivityState().SessionExpired)
}
