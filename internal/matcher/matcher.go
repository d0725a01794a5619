// Package matcher implements fuzzy equivalence scoring between two
// activities, grounded on the weighted time/sport/distance/duration
// factors of the original Dunky-Z/FitSync activity_matcher.py, ported to
// the Go idiom of a value-returning, side-effect-free comparator.
package matcher

import (
	"fmt"
	"time"

	"fitsync/internal/model"
)

// Thresholds configures the matcher's tolerances and minimum confidence;
// the factor weights are fixed constants. The zero value is not usable;
// construct with DefaultThresholds.
type Thresholds struct {
	TimeToleranceMinutes     float64
	DistanceTolerancePercent float64
	DurationTolerancePercent float64
	MinConfidence            float64
}

// DefaultThresholds returns the values spec.md §4.3 and §6 name.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TimeToleranceMinutes:     5,
		DistanceTolerancePercent: 5,
		DurationTolerancePercent: 10,
		MinConfidence:            0.7,
	}
}

const (
	weightTime     = 0.4
	weightSport    = 0.2
	weightDistance = 0.2
	weightDuration = 0.2
)

// Result is the outcome of comparing two activities.
type Result struct {
	IsMatch    bool
	Confidence float64
	Reasons    []string
}

// Matcher produces MatchResults for pairs of activities.
type Matcher struct {
	thresholds Thresholds
}

// New creates a Matcher with the given thresholds.
func New(thresholds Thresholds) *Matcher {
	return &Matcher{thresholds: thresholds}
}

// Match compares two activities and returns a MatchResult. Match is
// symmetric: Match(a, b) and Match(b, a) always agree on IsMatch and
// Confidence (within floating point epsilon).
func (m *Matcher) Match(a, b model.Metadata) Result {
	var reasons []string

	timeMatch, timeConf, timeReason := m.checkTime(a, b)
	reasons = append(reasons, timeReason)

	sportMatch, sportConf, sportReason := m.checkSport(a, b)
	reasons = append(reasons, sportReason)

	_, distConf, distReason := m.checkDistance(a, b)
	reasons = append(reasons, distReason)

	_, durConf, durReason := m.checkDuration(a, b)
	reasons = append(reasons, durReason)

	confidence := timeConf*weightTime + sportConf*weightSport + distConf*weightDistance + durConf*weightDuration

	isMatch := timeMatch && sportMatch && confidence >= m.thresholds.MinConfidence

	return Result{
		IsMatch:    isMatch,
		Confidence: confidence,
		Reasons:    reasons,
	}
}

func (m *Matcher) checkTime(a, b model.Metadata) (bool, float64, string) {
	diff := absDuration(a.StartTime.Sub(b.StartTime))
	tolerance := time.Duration(m.thresholds.TimeToleranceMinutes * float64(time.Minute))

	if diff <= tolerance {
		confidence := 1.0 - float64(diff)/float64(tolerance)
		if confidence < 0 {
			confidence = 0
		}
		return true, confidence, fmt.Sprintf("time match (diff %.1fmin)", diff.Minutes())
	}
	return false, 0, fmt.Sprintf("time mismatch (diff %.1fmin)", diff.Minutes())
}

func (m *Matcher) checkSport(a, b model.Metadata) (bool, float64, string) {
	sportA := model.NormalizeSport(a.SportType)
	sportB := model.NormalizeSport(b.SportType)

	if sportA == sportB {
		return true, 1.0, fmt.Sprintf("sport match (%s)", sportA)
	}
	if model.SimilarSports(sportA, sportB) {
		return true, 0.8, fmt.Sprintf("sport similar (%s ~ %s)", sportA, sportB)
	}
	return false, 0, fmt.Sprintf("sport mismatch (%s vs %s)", sportA, sportB)
}

func (m *Matcher) checkDistance(a, b model.Metadata) (bool, float64, string) {
	return checkToleranceField(a.Distance, b.Distance, m.thresholds.DistanceTolerancePercent, "distance")
}

func (m *Matcher) checkDuration(a, b model.Metadata) (bool, float64, string) {
	return checkToleranceField(float64(a.Duration), float64(b.Duration), m.thresholds.DurationTolerancePercent, "duration")
}

// checkToleranceField implements the shared distance/duration shape: both
// zero is a full match, exactly one zero is a partial match, otherwise the
// percentage difference from the average must be within tolerance.
func checkToleranceField(a, b, tolerancePercent float64, label string) (bool, float64, string) {
	if a == 0 && b == 0 {
		return true, 1.0, fmt.Sprintf("%s match (both zero)", label)
	}
	if a == 0 || b == 0 {
		return true, 0.5, fmt.Sprintf("%s partial match (one is zero)", label)
	}

	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	avg := (a + b) / 2
	diffPercent := (diff / avg) * 100

	if diffPercent <= tolerancePercent {
		confidence := 1.0 - diffPercent/tolerancePercent
		if confidence < 0 {
			confidence = 0
		}
		return true, confidence, fmt.Sprintf("%s match (diff %.1f%%)", label, diffPercent)
	}
	return false, 0, fmt.Sprintf("%s mismatch (diff %.1f%%)", label, diffPercent)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Candidate pairs a fingerprint with its metadata, the shape
// FindSimilarByTimeAndSport returns from the registry.
type Candidate struct {
	Fingerprint model.Fingerprint
	Metadata    model.Metadata
}

// BestMatch filters candidates by IsMatch and returns the highest
// confidence one, or false if none match.
func (m *Matcher) BestMatch(target model.Metadata, candidates []Candidate) (Candidate, Result, bool) {
	var (
		best      Candidate
		bestRes   Result
		haveMatch bool
	)

	for _, c := range candidates {
		res := m.Match(target, c.Metadata)
		if !res.IsMatch {
			continue
		}
		if !haveMatch || res.Confidence > bestRes.Confidence {
			best = c
			bestRes = res
			haveMatch = true
		}
	}

	return best, bestRes, haveMatch
}
