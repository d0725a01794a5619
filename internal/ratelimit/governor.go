// Package ratelimit implements the per-platform rate-limit governor,
// generalizing the Strava-specific sliding-window limiter in the teacher
// repo's internal/strava/ratelimit.go to the multi-platform governor
// spec.md §4.4 describes: only platforms registered with explicit limits
// are gated at all, everything else is always permitted.
package ratelimit

import (
	"sync"
	"time"
)

// Limits configures the daily and rolling-quarter-hour caps for one
// platform. Strava's published limits are 200/day and 100/15min; spec.md
// §4.4 asks for safety margins below those.
type Limits struct {
	DailyLimit       int
	QuarterHourLimit int
}

// StravaDefaultLimits are Strava's margins per spec.md §4.4: kept below
// the published 200/day, 100/15min to leave headroom for other clients
// sharing the same API application.
var StravaDefaultLimits = Limits{
	DailyLimit:       180,
	QuarterHourLimit: 90,
}

type counters struct {
	dailyCalls       int
	quarterHourCalls int
	dailyResetAt     time.Time
	quarterResetAt   time.Time
}

// Governor tracks rate-limit state for any number of platforms. Construct
// it with New or NewWithClock; the zero value is not usable. Platforms not
// registered via Register are always permitted.
type Governor struct {
	mu       sync.Mutex
	limits   map[string]Limits
	counters map[string]*counters
	now      func() time.Time
}

// New creates a Governor. now defaults to time.Now; tests may override it.
func New() *Governor {
	return &Governor{
		limits:   make(map[string]Limits),
		counters: make(map[string]*counters),
		now:      time.Now,
	}
}

// NewWithClock creates a Governor using the given clock function, for
// deterministic tests of window rollover.
func NewWithClock(now func() time.Time) *Governor {
	g := New()
	g.now = now
	return g
}

// Register configures explicit limits for a platform. Platforms that are
// never registered are always permitted by CanRequest.
func (g *Governor) Register(platform string, limits Limits) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limits[platform] = limits
}

// Snapshot is the serializable rate-limit state for one platform, for
// optional cross-process persistence per spec.md §9's design note.
type Snapshot struct {
	Platform         string
	DailyCalls       int
	QuarterHourCalls int
	DailyResetAt     time.Time
	QuarterResetAt   time.Time
}

// Snapshot returns the current counters for every platform that has
// counters: registered platforms that CanRequest or Record has seen, plus
// any loaded by Restore.
func (g *Governor) Snapshot() []Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snaps := make([]Snapshot, 0, len(g.counters))
	for platform, c := range g.counters {
		snaps = append(snaps, Snapshot{
			Platform:         platform,
			DailyCalls:       c.dailyCalls,
			QuarterHourCalls: c.quarterHourCalls,
			DailyResetAt:     c.dailyResetAt,
			QuarterResetAt:   c.quarterResetAt,
		})
	}
	return snaps
}

// Restore loads previously-snapshotted counters back in, for processes
// that choose to persist rate-limit state across restarts.
func (g *Governor) Restore(snaps []Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range snaps {
		g.counters[s.Platform] = &counters{
			dailyCalls:       s.DailyCalls,
			quarterHourCalls: s.QuarterHourCalls,
			dailyResetAt:     s.DailyResetAt,
			quarterResetAt:   s.QuarterResetAt,
		}
	}
}

func (g *Governor) counterFor(platform string, now time.Time) *counters {
	c, ok := g.counters[platform]
	if !ok {
		c = &counters{
			dailyResetAt:   now.Add(24 * time.Hour),
			quarterResetAt: now.Add(15 * time.Minute),
		}
		g.counters[platform] = c
	}
	return c
}

func (c *counters) resetIfExpired(now time.Time) {
	if !now.Before(c.dailyResetAt) {
		c.dailyCalls = 0
		c.dailyResetAt = now.Add(24 * time.Hour)
	}
	if !now.Before(c.quarterResetAt) {
		c.quarterHourCalls = 0
		c.quarterResetAt = now.Add(15 * time.Minute)
	}
}

// CanRequest reports whether a further outbound call to platform is
// currently permitted. Unregistered platforms are always permitted.
func (g *Governor) CanRequest(platform string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	limits, ok := g.limits[platform]
	if !ok {
		return true
	}

	now := g.now()
	c := g.counterFor(platform, now)
	c.resetIfExpired(now)

	return c.dailyCalls < limits.DailyLimit && c.quarterHourCalls < limits.QuarterHourLimit
}

// Record attributes one outbound call to platform. Call it before making
// the call it accounts for, per spec.md §4.4.
func (g *Governor) Record(platform string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.limits[platform]; !ok {
		return
	}

	now := g.now()
	c := g.counterFor(platform, now)
	c.resetIfExpired(now)
	c.dailyCalls++
	c.quarterHourCalls++
}

// Usage returns the current counts for a platform, for status reporting.
func (g *Governor) Usage(platform string) (daily, quarterHour int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.counters[platform]
	if !ok {
		return 0, 0
	}
	now := g.now()
	c.resetIfExpired(now)
	return c.dailyCalls, c.quarterHourCalls
}
