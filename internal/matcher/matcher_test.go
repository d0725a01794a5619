package matcher

import (
	"math"
	"testing"
	"time"

	"fitsync/internal/model"
)

func activityAt(start time.Time, sport string, distance float64, duration int) model.Metadata {
	return model.Metadata{
		Name:      "test",
		SportType: sport,
		StartTime: start,
		Distance:  distance,
		Duration:  duration,
	}
}

func TestMatchExact(t *testing.T) {
	m := New(DefaultThresholds())
	base := time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC)

	a := activityAt(base, "Run", 5000, 1800)
	b := activityAt(base, "run", 5000, 1800)

	res := m.Match(a, b)
	if !res.IsMatch {
		t.Fatalf("expected identical activities to match, reasons=%v", res.Reasons)
	}
	if math.Abs(res.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", res.Confidence)
	}
}

func TestMatchWithinTolerance(t *testing.T) {
	m := New(DefaultThresholds())
	base := time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC)

	a := activityAt(base, "running", 5000, 1800)
	b := activityAt(base.Add(2*time.Minute), "running", 5100, 1820)

	res := m.Match(a, b)
	if !res.IsMatch {
		t.Fatalf("expected within-tolerance activities to match, reasons=%v", res.Reasons)
	}
}

func TestMatchTimeOutOfRange(t *testing.T) {
	m := New(DefaultThresholds())
	base := time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC)

	a := activityAt(base, "running", 5000, 1800)
	b := activityAt(base.Add(10*time.Minute), "running", 5000, 1800)

	res := m.Match(a, b)
	if res.IsMatch {
		t.Fatalf("expected out-of-range time to prevent match, reasons=%v", res.Reasons)
	}
}

func TestMatchSimilarSport(t *testing.T) {
	m := New(DefaultThresholds())
	base := time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC)

	a := activityAt(base, "trail_running", 5000, 1800)
	b := activityAt(base, "treadmill_running", 5000, 1800)

	res := m.Match(a, b)
	if !res.IsMatch {
		t.Fatalf("expected similar sport group to match, reasons=%v", res.Reasons)
	}
}

func TestMatchDifferentSport(t *testing.T) {
	m := New(DefaultThresholds())
	base := time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC)

	a := activityAt(base, "running", 5000, 1800)
	b := activityAt(base, "cycling", 5000, 1800)

	res := m.Match(a, b)
	if res.IsMatch {
		t.Fatalf("expected different sports to not match, reasons=%v", res.Reasons)
	}
}

func TestMatchZeroDistanceBoth(t *testing.T) {
	m := New(DefaultThresholds())
	base := time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC)

	a := activityAt(base, "running", 0, 1800)
	b := activityAt(base, "running", 0, 1800)

	res := m.Match(a, b)
	if !res.IsMatch {
		t.Fatalf("expected both-zero distance to match, reasons=%v", res.Reasons)
	}
}

func TestMatchIsSymmetric(t *testing.T) {
	m := New(DefaultThresholds())
	base := time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC)

	pairs := []struct{ a, b model.Metadata }{
		{activityAt(base, "running", 5000, 1800), activityAt(base.Add(3*time.Minute), "running", 5200, 1850)},
		{activityAt(base, "cycling", 20000, 3600), activityAt(base, "running", 20000, 3600)},
		{activityAt(base, "swimming", 0, 0), activityAt(base, "swimming", 100, 0)},
	}

	for i, p := range pairs {
		ab := m.Match(p.a, p.b)
		ba := m.Match(p.b, p.a)
		if ab.IsMatch != ba.IsMatch {
			t.Errorf("pair %d: asymmetric IsMatch: ab=%v ba=%v", i, ab.IsMatch, ba.IsMatch)
		}
		if math.Abs(ab.Confidence-ba.Confidence) > 1e-9 {
			t.Errorf("pair %d: asymmetric confidence: ab=%v ba=%v", i, ab.Confidence, ba.Confidence)
		}
	}
}

func TestBestMatch(t *testing.T) {
	m := New(DefaultThresholds())
	base := time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC)
	target := activityAt(base, "running", 5000, 1800)

	candidates := []Candidate{
		{Fingerprint: "far", Metadata: activityAt(base.Add(20*time.Minute), "running", 5000, 1800)},
		{Fingerprint: "close", Metadata: activityAt(base.Add(1*time.Minute), "running", 5020, 1810)},
		{Fingerprint: "closer", Metadata: activityAt(base, "running", 5000, 1800)},
	}

	best, res, ok := m.BestMatch(target, candidates)
	if !ok {
		t.Fatalf("expected a best match")
	}
	if best.Fingerprint != "closer" {
		t.Errorf("best match = %v, want 'closer'", best.Fingerprint)
	}
	if !res.IsMatch {
		t.Errorf("best match result should be a match")
	}
}

func TestBestMatchNoneMatch(t *testing.T) {
	m := New(DefaultThresholds())
	base := time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC)
	target := activityAt(base, "running", 5000, 1800)

	candidates := []Candidate{
		{Fingerprint: "far", Metadata: activityAt(base.Add(time.Hour), "cycling", 40000, 5400)},
	}

	_, _, ok := m.BestMatch(target, candidates)
	if ok {
		t.Fatalf("expected no match")
	}
}
