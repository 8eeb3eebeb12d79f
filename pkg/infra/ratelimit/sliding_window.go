package ratelimit

import (
	"errors"
	"sync"
	"time"
)

const (
	MinuteWindow = time.Minute
	DayWindow    = 24 * time.Hour

	// sweepInterval bounds how often idle keys are dropped from the map.
	sweepInterval = time.Minute
)

var ErrInvalidLimit = errors.New("rate limits must be positive")

//go:generate mockery --name=Limiter --dir=. --output=./mocks --filename=limiter_mock.go --case=underscore --with-expecter
type Limiter interface {
	Allow(key string) bool
	Stats(key string) Stats
}

type Config struct {
	MaxPerMinute int
	MaxPerDay    int
}

type Opts struct {
	TimeProvider func() time.Time
}

// Stats is the usage snapshot exposed on the usage endpoint.
type Stats struct {
	CountLastMinute   int  `json:"requests_last_minute"`
	CountLastDay      int  `json:"requests_today"`
	MaxPerMinute      int  `json:"max_requests_per_minute"`
	MaxPerDay         int  `json:"max_requests_per_day"`
	WithinMinuteLimit bool `json:"within_minute_limit"`
	WithinDayLimit    bool `json:"within_daily_limit"`
}

// windowCounter keeps request timestamps in ascending order for both horizons.
type windowCounter struct {
	minute []time.Time
	day    []time.Time
}

// SlidingWindowLimiter admits a request only when the caller has spare
// capacity in both the minute and the day window. Check and record happen
// under the same lock, so two callers can never share the last slot.
type SlidingWindowLimiter struct {
	mu           sync.Mutex
	counters     map[string]*windowCounter
	maxPerMinute int
	maxPerDay    int
	timeProvider func() time.Time
	lastSweep    time.Time
}

func NewSlidingWindowLimiter(cfg Config, opts *Opts) (*SlidingWindowLimiter, error) {
	if cfg.MaxPerMinute <= 0 || cfg.MaxPerDay <= 0 {
		return nil, ErrInvalidLimit
	}
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &SlidingWindowLimiter{
		counters:     make(map[string]*windowCounter),
		maxPerMinute: cfg.MaxPerMinute,
		maxPerDay:    cfg.MaxPerDay,
		timeProvider: timeProvider,
		lastSweep:    timeProvider(),
	}, nil
}

// Allow records the request and returns true when both windows have room.
// A denied request leaves no trace.
func (l *SlidingWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.timeProvider()
	l.sweep(now)

	counter, ok := l.counters[key]
	if !ok {
		counter = &windowCounter{}
		l.counters[key] = counter
	}
	counter.prune(now)

	if len(counter.minute) >= l.maxPerMinute || len(counter.day) >= l.maxPerDay {
		return false
	}

	counter.minute = append(counter.minute, now)
	counter.day = append(counter.day, now)
	return true
}

func (l *SlidingWindowLimiter) Stats(key string) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.timeProvider()
	l.sweep(now)

	var minuteCount, dayCount int
	if counter, ok := l.counters[key]; ok {
		counter.prune(now)
		minuteCount = len(counter.minute)
		dayCount = len(counter.day)
		if counter.empty() {
			delete(l.counters, key)
		}
	}

	return Stats{
		CountLastMinute:   minuteCount,
		CountLastDay:      dayCount,
		MaxPerMinute:      l.maxPerMinute,
		MaxPerDay:         l.maxPerDay,
		WithinMinuteLimit: minuteCount < l.maxPerMinute,
		WithinDayLimit:    dayCount < l.maxPerDay,
	}
}

// TrackedKeys reports how many callers currently hold window state.
func (l *SlidingWindowLimiter) TrackedKeys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// sweep drops every key whose windows have emptied. Callers hold l.mu.
func (l *SlidingWindowLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	for key, counter := range l.counters {
		counter.prune(now)
		if counter.empty() {
			delete(l.counters, key)
		}
	}
}

func (c *windowCounter) empty() bool {
	return len(c.minute) == 0 && len(c.day) == 0
}

func (c *windowCounter) prune(now time.Time) {
	c.minute = dropOlderThan(c.minute, now, MinuteWindow)
	c.day = dropOlderThan(c.day, now, DayWindow)
}

// dropOlderThan removes the leading timestamps that are further than horizon
// from now. A timestamp exactly at the horizon still counts.
func dropOlderThan(timestamps []time.Time, now time.Time, horizon time.Duration) []time.Time {
	i := 0
	for i < len(timestamps) && now.Sub(timestamps[i]) > horizon {
		i++
	}
	if i == 0 {
		return timestamps
	}
	if i == len(timestamps) {
		return timestamps[:0]
	}
	return append(timestamps[:0], timestamps[i:]...)
}
