package filecache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fitsync/internal/model"
)

func TestPathIsContentAddressed(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fp := model.Fingerprint("abc123")
	got := c.Path(fp, "fit")
	want := filepath.Join(dir, "abc123.fit")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRemoveAllBestEffort(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.fit")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	missing := filepath.Join(dir, "missing.fit")

	if err := RemoveAll(context.Background(), []string{present, missing}); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	if _, err := os.Stat(present); !os.IsNotExist(err) {
		t.Fatalf("expected present file removed, stat err=%v", err)
	}
}

func TestRemoveAllManyFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 20; i++ {
		p := filepath.Join(dir, model.Fingerprint("fp").String()+string(rune('a'+i))+".fit")
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		paths = append(paths, p)
	}

	if err := RemoveAll(context.Background(), paths); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("expected %q removed", p)
		}
	}
}
