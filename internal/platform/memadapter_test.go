package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fitsync/internal/model"
)

func TestMemAdapterListActivitiesWindow(t *testing.T) {
	a := NewMemAdapter("strava")
	a.Seed(MemActivity{
		ActivityID: "1",
		Metadata: model.Metadata{
			Name:      "Morning Run",
			SportType: "Run",
			StartTime: time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC),
			Distance:  5000,
			Duration:  1800,
		},
		FileContents: []byte("fit-bytes-1"),
	})
	a.Seed(MemActivity{
		ActivityID: "2",
		Metadata: model.Metadata{
			Name:      "Evening Ride",
			SportType: "Ride",
			StartTime: time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC),
			Distance:  20000,
			Duration:  3600,
		},
		FileContents: []byte("fit-bytes-2"),
	})

	ctx := context.Background()
	after := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	raws, err := a.ListActivities(ctx, 10, after, before, Incremental)
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("got %d activities, want 1", len(raws))
	}
	if a.ExtractActivityID(raws[0]) != "2" {
		t.Fatalf("got activity %v, want id 2", raws[0])
	}
}

func TestMemAdapterUploadDedupesByFingerprint(t *testing.T) {
	a := NewMemAdapter("garmin")
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "a.fit")
	if err := os.WriteFile(path, []byte("fit-bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	outcome, err := a.UploadFile(ctx, path, "a.fit", "fp-123")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if outcome != Accepted {
		t.Fatalf("first upload got %v, want Accepted", outcome)
	}

	outcome, err = a.UploadFile(ctx, path, "a.fit", "fp-123")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if outcome != Duplicate {
		t.Fatalf("second upload got %v, want Duplicate", outcome)
	}
}

func TestMemAdapterDownloadNotReadyThenSucceeds(t *testing.T) {
	a := NewMemAdapter("strava")
	a.Seed(MemActivity{
		ActivityID:      "3",
		Metadata:        model.Metadata{Name: "Slow Export", SportType: "Run", StartTime: time.Now()},
		FileContents:    []byte("fit-bytes-3"),
		NotReadyAttempts: 2,
	})

	ctx := context.Background()
	attempts := 0
	err := RetryDownload(ctx, func(ctx context.Context) error {
		attempts++
		return a.DownloadFile(ctx, "3", "/tmp/out.fit")
	})
	if err != nil {
		t.Fatalf("RetryDownload: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("got %d attempts, want 3", attempts)
	}
}

func TestMemAdapterIsConfigured(t *testing.T) {
	a := NewMemAdapter("onedrive")
	if !a.IsConfigured() {
		t.Fatal("seeded mem adapter should report configured")
	}
	if !a.TestConnection(context.Background()) {
		t.Fatal("mem adapter should always pass connection test")
	}
}

func TestMemAdapterClearSession(t *testing.T) {
	a := NewMemAdapter("garmin")
	if err := a.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if a.SessionCleared != 1 {
		t.Fatalf("got %d clears, want 1", a.SessionCleared)
	}
}
