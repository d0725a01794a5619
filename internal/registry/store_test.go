package registry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fitsync/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "test.db"), slog.Default())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleMetadata() model.Metadata {
	return model.Metadata{
		Name:      "Morning Run",
		SportType: "Run",
		StartTime: time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC),
		Distance:  5000,
		Duration:  1800,
	}
}

func TestUpsertActivityIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	meta := sampleMetadata()

	fp1, err := s.UpsertActivity(ctx, meta, "strava", "123")
	if err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}
	fp2, err := s.UpsertActivity(ctx, meta, "strava", "123")
	if err != nil {
		t.Fatalf("UpsertActivity (second): %v", err)
	}
	if fp1 != fp2 {
		t.Fatalf("fingerprint changed across idempotent upserts: %v != %v", fp1, fp2)
	}
}

func TestIsSyncedRequiresBothMappings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	meta := sampleMetadata()

	fp, err := s.UpsertActivity(ctx, meta, "strava", "123")
	if err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}

	if err := s.SetSyncStatus(ctx, fp, "strava", "garmin", "synced"); err != nil {
		t.Fatalf("SetSyncStatus: %v", err)
	}

	synced, err := s.IsSynced(ctx, fp, "strava", "garmin")
	if err != nil {
		t.Fatalf("IsSynced: %v", err)
	}
	if synced {
		t.Fatal("expected not-synced: garmin mapping never written, only status row exists")
	}

	if _, err := s.UpsertActivity(ctx, meta, "garmin", "456"); err != nil {
		t.Fatalf("UpsertActivity (garmin): %v", err)
	}

	synced, err = s.IsSynced(ctx, fp, "strava", "garmin")
	if err != nil {
		t.Fatalf("IsSynced: %v", err)
	}
	if !synced {
		t.Fatal("expected synced once both platform mappings and a synced status row exist")
	}
}

func TestFindSimilarByTimeAndSport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := sampleMetadata()

	if _, err := s.UpsertActivity(ctx, base, "strava", "1"); err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}

	far := base
	far.StartTime = base.StartTime.Add(3 * time.Hour)
	far.Name = "Far Away"
	if _, err := s.UpsertActivity(ctx, far, "strava", "2"); err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}

	candidates, err := s.FindSimilarByTimeAndSport(ctx, base.StartTime, base.SportType, time.Hour)
	if err != nil {
		t.Fatalf("FindSimilarByTimeAndSport: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 (far activity should be outside the window)", len(candidates))
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.GetConfig(ctx, "last_sync_strava"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.SetConfig(ctx, "last_sync_strava", "2025-06-14T06:00:00Z"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	value, ok, err := s.GetConfig(ctx, "last_sync_strava")
	if err != nil || !ok {
		t.Fatalf("GetConfig: value=%q ok=%v err=%v", value, ok, err)
	}
	if value != "2025-06-14T06:00:00Z" {
		t.Fatalf("got %q, want the set value", value)
	}
}

func TestFileCacheHitRequiresFileOnDisk(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fp := model.Fingerprint("deadbeef")

	dir := t.TempDir()
	path := filepath.Join(dir, "deadbeef.fit")

	if err := s.AddFileCache(ctx, fp, "fit", path); err != nil {
		t.Fatalf("AddFileCache: %v", err)
	}

	if _, hit, err := s.GetCachedFile(ctx, fp, "fit"); err != nil || hit {
		t.Fatalf("expected cache miss before file exists, got hit=%v err=%v", hit, err)
	}

	if err := os.WriteFile(path, []byte("fit-data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	gotPath, hit, err := s.GetCachedFile(ctx, fp, "fit")
	if err != nil || !hit {
		t.Fatalf("expected cache hit after file exists, got hit=%v err=%v", hit, err)
	}
	if gotPath != path {
		t.Fatalf("got path %q, want %q", gotPath, path)
	}
}

func TestCleanupFileCacheOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fp := model.Fingerprint("abc123")

	dir := t.TempDir()
	path := filepath.Join(dir, "abc123.fit")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.AddFileCache(ctx, fp, "fit", path); err != nil {
		t.Fatalf("AddFileCache: %v", err)
	}

	// Not yet stale at a large threshold.
	deleted, err := s.CleanupFileCacheOlderThan(ctx, 365)
	if err != nil {
		t.Fatalf("CleanupFileCacheOlderThan: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("got %d deleted, want 0 for a fresh row", deleted)
	}

	// A negative threshold treats every row as stale, exercising the
	// unlink-then-delete path without needing to fake the clock.
	deleted, err = s.CleanupFileCacheOlderThan(ctx, -1)
	if err != nil {
		t.Fatalf("CleanupFileCacheOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("got %d deleted, want 1", deleted)
	}
}

func TestRuleDefaultsEnabled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	enabled, err := s.IsRuleEnabled(ctx, "strava", "garmin")
	if err != nil {
		t.Fatalf("IsRuleEnabled: %v", err)
	}
	if !enabled {
		t.Fatal("expected a direction with no rule set to default to enabled")
	}

	if err := s.SetRule(ctx, "strava", "garmin", false); err != nil {
		t.Fatalf("SetRule: %v", err)
	}
	enabled, err = s.IsRuleEnabled(ctx, "strava", "garmin")
	if err != nil {
		t.Fatalf("IsRuleEnabled: %v", err)
	}
	if enabled {
		t.Fatal("expected rule to be disabled after SetRule(false)")
	}

	if err := s.SetRule(ctx, "strava", "garmin", true); err != nil {
		t.Fatalf("SetRule: %v", err)
	}
	enabled, err = s.IsRuleEnabled(ctx, "strava", "garmin")
	if err != nil {
		t.Fatalf("IsRuleEnabled: %v", err)
	}
	if !enabled {
		t.Fatal("expected rule to be re-enabled after SetRule(true)")
	}
}

func TestStatistics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	meta := sampleMetadata()

	fp, err := s.UpsertActivity(ctx, meta, "strava", "1")
	if err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}
	if err := s.SetSyncStatus(ctx, fp, "strava", "garmin", "synced"); err != nil {
		t.Fatalf("SetSyncStatus: %v", err)
	}
	if err := s.SetConfig(ctx, "last_sync_strava", "2025-06-14T06:00:00Z"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	stats, err := s.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.ActivitiesPerPlatform["strava"] != 1 {
		t.Fatalf("got %d strava activities, want 1", stats.ActivitiesPerPlatform["strava"])
	}
	if stats.StatusHistogram["strava_to_garmin:synced"] != 1 {
		t.Fatalf("got %d synced strava_to_garmin, want 1", stats.StatusHistogram["strava_to_garmin:synced"])
	}
	if stats.LastSync["last_sync_strava"] != "2025-06-14T06:00:00Z" {
		t.Fatalf("got %q, want the set last-sync value", stats.LastSync["last_sync_strava"])
	}
}
