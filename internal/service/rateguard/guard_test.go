package rateguard

import (
	"testing"
	"time"

	"mentor_sync/internal/config"
	"mentor_sync/internal/dao/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newGuard(store local.Store, maxAttempts int, window time.Duration) (*Guard, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}
	g := New(store, config.RateGuardConfig{
		MaxAttempts:   maxAttempts,
		WindowSeconds: int(window / time.Second),
	}).WithClock(clk.Now)
	return g, clk
}

func TestIsLimitedAfterMaxAttempts(t *testing.T) {
	const n = 5
	g, clk := newGuard(local.NewMemoryStore(), n, 15*time.Minute)
	key := IdentityKey("login", "user@example.com")

	for i := 0; i < n; i++ {
		assert.False(t, g.IsLimited(key), "attempt %d", i+1)
	}
	assert.True(t, g.IsLimited(key))
	assert.True(t, g.IsLimited(key))

	clk.Advance(15*time.Minute + time.Millisecond)
	assert.False(t, g.IsLimited(key))
	assert.Equal(t, n-1, g.RemainingAttempts(key))
}

func TestWindowBoundaryIsInclusive(t *testing.T) {
	g, clk := newGuard(local.NewMemoryStore(), 1, time.Minute)

	assert.False(t, g.IsLimited("k"))
	clk.Advance(time.Minute)
	assert.True(t, g.IsLimited("k"), "exactly one window later is still inside the window")
}

func TestRemainingAttempts(t *testing.T) {
	const n = 3
	g, clk := newGuard(local.NewMemoryStore(), n, time.Minute)

	assert.Equal(t, n, g.RemainingAttempts("k"))
	for k := 1; k <= n; k++ {
		g.IsLimited("k")
		assert.Equal(t, n-k, g.RemainingAttempts("k"))
	}
	for i := 0; i < 4; i++ {
		g.IsLimited("k")
		assert.Equal(t, 0, g.RemainingAttempts("k"))
	}
	assert.Equal(t, 10, g.RemainingAttemptsWith("other", 10))

	clk.Advance(2 * time.Minute)
	assert.Equal(t, n, g.RemainingAttempts("k"))
}

func TestTimeUntilReset(t *testing.T) {
	g, clk := newGuard(local.NewMemoryStore(), 3, time.Minute)

	assert.Equal(t, time.Duration(0), g.TimeUntilReset("k"))
	g.IsLimited("k")
	clk.Advance(20 * time.Second)
	assert.Equal(t, 40*time.Second, g.TimeUntilReset("k"))
	assert.Equal(t, 100*time.Second, g.TimeUntilResetWith("k", 2*time.Minute))

	clk.Advance(time.Minute)
	assert.Equal(t, time.Duration(0), g.TimeUntilReset("k"))
}

func TestResetClearsRecord(t *testing.T) {
	store := local.NewMemoryStore()
	g, _ := newGuard(store, 1, time.Minute)

	g.IsLimited("k")
	assert.True(t, g.IsLimited("k"))
	g.Reset("k")
	assert.False(t, g.IsLimited("k"))

	raw, err := store.Get("rateGuard:k")
	require.NoError(t, err)
	assert.Contains(t, raw, `"count":1`)
}

func TestKeysAreIndependent(t *testing.T) {
	g, _ := newGuard(local.NewMemoryStore(), 1, time.Minute)

	g.IsLimited("a")
	assert.True(t, g.IsLimited("a"))
	assert.False(t, g.IsLimited("b"))
}

func TestIdentityKeyNormalizes(t *testing.T) {
	assert.Equal(t, IdentityKey("login", "  Ada@Example.COM "), IdentityKey("login", "ada@example.com"))
	assert.NotEqual(t, IdentityKey("login", "ada"), IdentityKey("reset", "ada"))
}

func TestFailsOpenOnStorageFault(t *testing.T) {
	faulty := &local.FaultyStore{Store: local.NewMemoryStore(), FailGet: true, FailSet: true, FailRemove: true}
	g, _ := newGuard(faulty, 1, time.Minute)

	for i := 0; i < 5; i++ {
		assert.False(t, g.IsLimited("k"))
	}
	assert.Equal(t, 1, g.RemainingAttempts("k"))
	assert.Equal(t, time.Duration(0), g.TimeUntilReset("k"))
	assert.NotPanics(t, func() { g.Reset("k") })
}

func TestFailsOpenWhenWritesFail(t *testing.T) {
	faulty := &local.FaultyStore{Store: local.NewMemoryStore()}
	g, _ := newGuard(faulty, 1, time.Minute)

	g.IsLimited("k")
	faulty.SetFailure(true)
	assert.False(t, g.IsLimited("k"))
}

func TestCorruptRecordFailsOpen(t *testing.T) {
	store := local.NewMemoryStore()
	require.NoError(t, store.Set("rateGuard:k", "not-json"))
	g, _ := newGuard(store, 1, time.Minute)

	assert.False(t, g.IsLimited("k"))
	assert.Equal(t, 1, g.RemainingAttempts("k"))
}

func TestDefaultsApplied(t *testing.T) {
	g := New(local.NewMemoryStore(), config.RateGuardConfig{})
	assert.Equal(t, config.DefaultMaxAttempts, g.RemainingAttempts("k"))
}
