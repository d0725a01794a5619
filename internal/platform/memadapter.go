package platform

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"fitsync/internal/model"
)

// MemActivity is one activity seeded into a MemAdapter.
type MemActivity struct {
	ActivityID string
	Metadata   model.Metadata
	// FileContents is written verbatim by DownloadFile.
	FileContents []byte
	// Manual marks the activity as a ManualActivityDetector hit — no
	// original file exists for it, matching manually-entered Strava
	// activities per spec.md §4.7.
	Manual bool
	// NotReadyAttempts is how many times DownloadFile returns ErrNotReady
	// before finally succeeding, simulating a source still packaging an
	// export (spec.md §4.7's 202-not-ready pattern).
	NotReadyAttempts int

	attempted int
}

// MemAdapter is a deterministic in-memory SourceAdapter + TargetAdapter
// reference implementation. It exists to exercise and test the
// orchestrator end to end without any real platform — the external
// adapters (Strava, Garmin, etc.) are out of scope collaborators this
// module only defines the contract for.
type MemAdapter struct {
	mu sync.Mutex

	id         string
	configured bool

	activities map[string]*MemActivity
	uploaded   map[string]bool // fingerprint -> seen

	SessionCleared int
}

// NewMemAdapter creates a configured, empty MemAdapter for platform id.
func NewMemAdapter(id string) *MemAdapter {
	return &MemAdapter{
		id:         id,
		configured: true,
		activities: make(map[string]*MemActivity),
		uploaded:   make(map[string]bool),
	}
}

// Seed registers an activity the adapter will serve as a source.
func (a *MemAdapter) Seed(act MemActivity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	act.attempted = 0
	a.activities[act.ActivityID] = &act
}

// SetConfigured overrides the configured flag, for exercising ConfigErr
// paths in orchestrator tests.
func (a *MemAdapter) SetConfigured(v bool) { a.configured = v }

// PreloadDuplicate marks fingerprint as already uploaded, so the next
// UploadFile call for it returns Duplicate instead of Accepted —
// simulating a target that already has this activity.
func (a *MemAdapter) PreloadDuplicate(fingerprint string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.uploaded[fingerprint] = true
}

// UploadedFingerprints returns every fingerprint this adapter has seen
// via UploadFile, for assertions that no upload was attempted.
func (a *MemAdapter) UploadedFingerprints() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.uploaded))
	for fp := range a.uploaded {
		out = append(out, fp)
	}
	return out
}

func (a *MemAdapter) ID() string          { return a.id }
func (a *MemAdapter) IsConfigured() bool  { return a.configured }
func (a *MemAdapter) TestConnection(ctx context.Context) bool {
	return a.configured
}

// ListActivities returns seeded activities with StartTime in [after,
// before), sorted ascending by StartTime regardless of mode — the real
// ordering distinction only matters to adapters paginating a live API.
func (a *MemAdapter) ListActivities(ctx context.Context, limit int, after, before time.Time, mode Mode) ([]RawActivity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var matched []*MemActivity
	for _, act := range a.activities {
		st := act.Metadata.StartTime
		if !st.Before(after) && st.Before(before) {
			matched = append(matched, act)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Metadata.StartTime.Before(matched[j].Metadata.StartTime)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]RawActivity, len(matched))
	for i, act := range matched {
		out[i] = act
	}
	return out, nil
}

func (a *MemAdapter) ToMetadata(raw RawActivity) (model.Metadata, error) {
	act, ok := raw.(*MemActivity)
	if !ok {
		return model.Metadata{}, NewPermanentError(fmt.Errorf("unrecognized raw activity type %T", raw))
	}
	return act.Metadata, nil
}

func (a *MemAdapter) ExtractActivityID(raw RawActivity) string {
	act, ok := raw.(*MemActivity)
	if !ok {
		return ""
	}
	return act.ActivityID
}

// IsManualActivity implements ManualActivityDetector.
func (a *MemAdapter) IsManualActivity(raw RawActivity) bool {
	act, ok := raw.(*MemActivity)
	return ok && act.Manual
}

// DownloadFile writes the seeded FileContents to outPath, returning
// ErrNotReady for NotReadyAttempts calls first.
func (a *MemAdapter) DownloadFile(ctx context.Context, activityID, outPath string) error {
	a.mu.Lock()
	act, ok := a.activities[activityID]
	if !ok {
		a.mu.Unlock()
		return NewPermanentError(fmt.Errorf("no such activity %q", activityID))
	}
	if act.attempted < act.NotReadyAttempts {
		act.attempted++
		a.mu.Unlock()
		return ErrNotReady
	}
	contents := act.FileContents
	a.mu.Unlock()

	if err := os.WriteFile(outPath, contents, 0o644); err != nil {
		return NewTransientError(err)
	}
	return nil
}

// UploadFile records the fingerprint and reports Duplicate on any
// repeat, matching the "target already has this activity" outcome
// spec.md §4.7 describes adapters detecting.
func (a *MemAdapter) UploadFile(ctx context.Context, path, name, fingerprint string) (UploadOutcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		return Failed, NewPermanentError(err)
	}
	if a.uploaded[fingerprint] {
		return Duplicate, nil
	}
	a.uploaded[fingerprint] = true
	return Accepted, nil
}

// ClearSession implements SessionClearer.
func (a *MemAdapter) ClearSession() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.SessionCleared++
	return nil
}
