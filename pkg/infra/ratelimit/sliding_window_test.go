package ratelimit_test

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/infra/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1740730536, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newLimiter(t *testing.T, perMinute, perDay int, clock *fakeClock) *ratelimit.SlidingWindowLimiter {
	t.Helper()
	limiter, err := ratelimit.NewSlidingWindowLimiter(
		ratelimit.Config{MaxPerMinute: perMinute, MaxPerDay: perDay},
		&ratelimit.Opts{TimeProvider: clock.Now},
	)
	require.NoError(t, err)
	return limiter
}

func TestNewSlidingWindowLimiter_InvalidConfig(t *testing.T) {
	_, err := ratelimit.NewSlidingWindowLimiter(ratelimit.Config{MaxPerMinute: 0, MaxPerDay: 10}, nil)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)

	_, err = ratelimit.NewSlidingWindowLimiter(ratelimit.Config{MaxPerMinute: 10, MaxPerDay: -1}, nil)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)
}

func TestSlidingWindowLimiter_ThirdCallWithinSecondIsDenied(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(t, 2, 1000, clock)

	var results []bool
	for i := 0; i < 3; i++ {
		results = append(results, limiter.Allow("k"))
		clock.Advance(100 * time.Millisecond)
	}

	assert.Equal(t, []bool{true, true, false}, results)
}

func TestSlidingWindowLimiter_CapacityRestoredAfterOldestExpires(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(t, 3, 1000, clock)

	assert.True(t, limiter.Allow("k"))
	clock.Advance(10 * time.Second)
	assert.True(t, limiter.Allow("k"))
	assert.True(t, limiter.Allow("k"))
	assert.False(t, limiter.Allow("k"))

	// the oldest entry sits exactly on the horizon and still counts
	clock.Advance(50 * time.Second)
	assert.False(t, limiter.Allow("k"))

	clock.Advance(time.Second)
	assert.True(t, limiter.Allow("k"))
	assert.False(t, limiter.Allow("k"))
}

func TestSlidingWindowLimiter_DayWindowDeniesWhileMinuteHasRoom(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(t, 10, 3, clock)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("k"))
		clock.Advance(2 * time.Minute)
	}
	assert.False(t, limiter.Allow("k"))

	stats := limiter.Stats("k")
	assert.Equal(t, 0, stats.CountLastMinute)
	assert.Equal(t, 3, stats.CountLastDay)
	assert.True(t, stats.WithinMinuteLimit)
	assert.False(t, stats.WithinDayLimit)

	clock.Advance(24 * time.Hour)
	assert.True(t, limiter.Allow("k"))
}

func TestSlidingWindowLimiter_MinuteWindowDeniesWhileDayHasRoom(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(t, 1, 10, clock)

	assert.True(t, limiter.Allow("k"))
	assert.False(t, limiter.Allow("k"))

	stats := limiter.Stats("k")
	assert.Equal(t, 1, stats.CountLastMinute)
	assert.Equal(t, 1, stats.CountLastDay)
	assert.False(t, stats.WithinMinuteLimit)
	assert.True(t, stats.WithinDayLimit)
}

func TestSlidingWindowLimiter_DeniedRequestRecordsNothing(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(t, 2, 10, clock)

	limiter.Allow("k")
	limiter.Allow("k")
	for i := 0; i < 5; i++ {
		assert.False(t, limiter.Allow("k"))
	}

	stats := limiter.Stats("k")
	assert.Equal(t, 2, stats.CountLastMinute)
	assert.Equal(t, 2, stats.CountLastDay)
}

func TestSlidingWindowLimiter_StatsForUnknownKey(t *testing.T) {
	limiter := newLimiter(t, 5, 50, newFakeClock())

	stats := limiter.Stats("nobody")
	assert.Equal(t, ratelimit.Stats{
		CountLastMinute:   0,
		CountLastDay:      0,
		MaxPerMinute:      5,
		MaxPerDay:         50,
		WithinMinuteLimit: true,
		WithinDayLimit:    true,
	}, stats)
}

func TestSlidingWindowLimiter_StatsDoesNotConsumeCapacity(t *testing.T) {
	limiter := newLimiter(t, 1, 10, newFakeClock())

	for i := 0; i < 5; i++ {
		limiter.Stats("k")
	}
	assert.True(t, limiter.Allow("k"))
}

func TestSlidingWindowLimiter_KeysAreIndependent(t *testing.T) {
	limiter := newLimiter(t, 1, 10, newFakeClock())

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))
}

func TestSlidingWindowLimiter_ConcurrentCallersNeverExceedLimit(t *testing.T) {
	limiter := newLimiter(t, 10, 1000, newFakeClock())

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("shared") {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), allowed)
	assert.Equal(t, 10, limiter.Stats("shared").CountLastMinute)
}

func TestSlidingWindowLimiter_IdleKeysAreDropped(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(t, 10, 100, clock)

	for i := 0; i < 10000; i++ {
		require.True(t, limiter.Allow("caller-"+strconv.Itoa(i)))
	}
	require.Equal(t, 10000, limiter.TrackedKeys())

	clock.Advance(48 * time.Hour)
	assert.True(t, limiter.Allow("fresh"))
	assert.Equal(t, 1, limiter.TrackedKeys())
}

func TestSlidingWindowLimiter_SweepKeepsKeysWithinDay(t *testing.T) {
	clock := newFakeClock()
	limiter := newLimiter(t, 10, 100, clock)

	require.True(t, limiter.Allow("old"))
	clock.Advance(23 * time.Hour)
	require.True(t, limiter.Allow("recent"))

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, limiter.Stats("recent").CountLastDay)
	assert.Equal(t, 1, limiter.TrackedKeys())
}
