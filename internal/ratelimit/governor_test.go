package ratelimit

import (
	"testing"
	"time"
)

func TestCanRequestUnregisteredAlwaysTrue(t *testing.T) {
	g := New()
	if !g.CanRequest("garmin") {
		t.Error("unregistered platform should always be permitted")
	}
}

func TestRecordAndDeny(t *testing.T) {
	g := New()
	g.Register("strava", Limits{DailyLimit: 180, QuarterHourLimit: 2})

	g.Record("strava")
	g.Record("strava")

	if g.CanRequest("strava") {
		t.Fatal("expected quarter-hour limit to deny further requests")
	}
}

func TestRollingWindowReset(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewWithClock(func() time.Time { return now })
	g.Register("strava", Limits{DailyLimit: 180, QuarterHourLimit: 1})

	g.Record("strava")
	if g.CanRequest("strava") {
		t.Fatal("expected limit to be hit")
	}

	now = now.Add(16 * time.Minute)
	if !g.CanRequest("strava") {
		t.Fatal("expected quarter-hour window to have reset")
	}
}

func TestDailyLimitIndependentOfQuarterReset(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewWithClock(func() time.Time { return now })
	g.Register("strava", Limits{DailyLimit: 1, QuarterHourLimit: 100})

	g.Record("strava")
	now = now.Add(16 * time.Minute) // quarter resets, daily doesn't

	if g.CanRequest("strava") {
		t.Fatal("expected daily limit to still deny after quarter-hour reset")
	}
}

// TestRateLimitRespect exercises invariant 6 from spec.md §8: across any
// rolling 15 minutes, at most quarterHourLimit calls are recorded.
func TestRateLimitRespect(t *testing.T) {
	g := New()
	g.Register("strava", StravaDefaultLimits)

	allowed := 0
	for i := 0; i < 200; i++ {
		if g.CanRequest("strava") {
			g.Record("strava")
			allowed++
		}
	}

	if allowed > StravaDefaultLimits.QuarterHourLimit {
		t.Fatalf("allowed %d calls, want <= %d", allowed, StravaDefaultLimits.QuarterHourLimit)
	}
}
