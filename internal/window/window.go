// Package window implements the Sync Window Manager (spec.md §4.2): the
// [start, end) time range computation for a direction, in either
// incremental top-up or migration backfill mode. It reads/writes its
// cursors through the same config-key store the Orchestrator uses
// (registry.Store's GetConfig/SetConfig), so it takes a narrow interface
// rather than importing the registry package directly.
package window

import (
	"context"
	"time"
)

// ConfigStore is the subset of registry.Store the Window Manager needs.
// Declared here (not in registry) so this package has no dependency on
// the registry's SQL implementation — only on reading and writing
// string config values, grounded on the teacher's sync_state key-value
// design (internal/store/sync_state.go).
type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (value string, ok bool, err error)
	SetConfig(ctx context.Context, key, value string) error
}

// Defaults per spec.md §4.2 and §6's config-knobs list.
const (
	IncrementalLookback = 30 * 24 * time.Hour
	OverlapFloor        = time.Hour
	CatchUpFloor        = 7 * 24 * time.Hour
	MigrationCompleteSlack = 24 * time.Hour
)

// MigrationEpoch is the earliest plausible Strava-era activity date,
// used as the default migration start when no override is set.
var MigrationEpoch = time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC)

// Manager computes sync windows against a ConfigStore. now defaults to
// time.Now and may be overridden in tests for determinism.
type Manager struct {
	store ConfigStore
	now   func() time.Time
}

// New creates a Manager backed by store.
func New(store ConfigStore) *Manager {
	return &Manager{store: store, now: time.Now}
}

// NewWithClock creates a Manager using the given clock, for deterministic
// tests of cursor arithmetic.
func NewWithClock(store ConfigStore, now func() time.Time) *Manager {
	return &Manager{store: store, now: now}
}

// Window is the [Start, End) range one direction should sync for one
// call. Whether a migration is already complete is reported separately by
// IsMigrationComplete.
type Window struct {
	Start time.Time
	End   time.Time
}

// ComputeIncremental implements spec.md §4.2's incremental-mode rules,
// keyed by sourcePlatform (not by direction: an incremental catch-up is
// a property of the source, shared by every direction that reads it).
func (m *Manager) ComputeIncremental(ctx context.Context, sourcePlatform string) (Window, error) {
	now := m.now().UTC()
	key := "last_sync_" + sourcePlatform

	raw, ok, err := m.store.GetConfig(ctx, key)
	if err != nil {
		return Window{}, err
	}
	if !ok {
		return Window{Start: now.Add(-IncrementalLookback), End: now}, nil
	}

	lastSync, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Window{}, err
	}
	lastSync = lastSync.UTC()

	if now.Sub(lastSync) > 30*24*time.Hour {
		return Window{Start: now.Add(-IncrementalLookback), End: now}, nil
	}

	overlapStart := lastSync.Add(-OverlapFloor)
	catchUpFloor := now.Add(-CatchUpFloor)
	start := overlapStart
	if catchUpFloor.Before(start) {
		start = catchUpFloor
	}
	return Window{Start: start, End: now}, nil
}

// CommitIncremental records that sourcePlatform was synced as of now,
// per spec.md §4.6 step 8's "mode=incremental -> SetConfig(last_sync_<source>, now)".
func (m *Manager) CommitIncremental(ctx context.Context, sourcePlatform string) error {
	return m.store.SetConfig(ctx, "last_sync_"+sourcePlatform, m.now().UTC().Format(time.RFC3339Nano))
}

// ComputeMigration implements spec.md §4.2's migration-mode rules, keyed
// by direction rather than platform: two directions sharing a source can
// be backfilling independently.
func (m *Manager) ComputeMigration(ctx context.Context, direction string) (Window, error) {
	now := m.now().UTC()

	cursorKey := "migration_progress_" + direction
	if raw, ok, err := m.store.GetConfig(ctx, cursorKey); err != nil {
		return Window{}, err
	} else if ok {
		cursor, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Window{}, err
		}
		return Window{Start: cursor.UTC(), End: now}, nil
	}

	startKey := "migration_start_time_" + direction
	if raw, ok, err := m.store.GetConfig(ctx, startKey); err != nil {
		return Window{}, err
	} else if ok {
		start, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Window{}, err
		}
		return Window{Start: start.UTC(), End: now}, nil
	}

	return Window{Start: MigrationEpoch, End: now}, nil
}

// CommitMigrationProgress advances the migration cursor for direction to
// max(latestActivityTime, the prior cursor), monotonically, per
// spec.md §4.2 and §5's ordering guarantees.
func (m *Manager) CommitMigrationProgress(ctx context.Context, direction string, latestActivityTime time.Time) error {
	cursorKey := "migration_progress_" + direction

	if raw, ok, err := m.store.GetConfig(ctx, cursorKey); err != nil {
		return err
	} else if ok {
		prior, err := time.Parse(time.RFC3339Nano, raw)
		if err == nil && prior.After(latestActivityTime) {
			latestActivityTime = prior
		}
	}

	return m.store.SetConfig(ctx, cursorKey, latestActivityTime.UTC().Format(time.RFC3339Nano))
}

// SetMigrationStart overrides the default migration epoch for direction,
// per the SetMigrationStart operation in spec.md §6. Naive inputs are
// promoted to UTC.
func (m *Manager) SetMigrationStart(ctx context.Context, direction string, start time.Time) error {
	return m.store.SetConfig(ctx, "migration_start_time_"+direction, start.UTC().Format(time.RFC3339Nano))
}

// IsMigrationComplete reports whether direction's cursor has caught up
// to within MigrationCompleteSlack of now, per spec.md §4.2. A direction
// with no cursor yet is never complete.
func (m *Manager) IsMigrationComplete(ctx context.Context, direction string) (bool, error) {
	raw, ok, err := m.store.GetConfig(ctx, "migration_progress_"+direction)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	cursor, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return false, err
	}
	return m.now().UTC().Sub(cursor.UTC()) <= MigrationCompleteSlack, nil
}
