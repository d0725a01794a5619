// Package filecache implements the content-addressed File Cache
// (spec.md §4.5): downloaded activity files live at
// <cacheRoot>/<fingerprint>.<format> so one download can be fanned out
// to every configured target without re-fetching from the source.
// Bookkeeping (which fingerprint/format pairs exist, when they were
// written) lives in the Registry; this package only owns path
// computation and the bounded concurrent-unlink fan-out during cleanup
// — the one place spec.md §5 allows parallelism, grounded on
// golang.org/x/sync/errgroup the way tonimelisma-onedrive-go bounds its
// own concurrent blob operations.
package filecache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"fitsync/internal/model"
)

// Formats are the recognized file extensions, per spec.md §6.
var Formats = []string{"fit", "tcx", "gpx"}

// Cache resolves paths under a single root directory.
type Cache struct {
	root string
}

// New creates a Cache rooted at root, creating the directory if needed.
func New(root string) (*Cache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filecache: creating cache root: %w", err)
	}
	return &Cache{root: root}, nil
}

// Path computes the on-disk path for (fingerprint, format). It does not
// touch the filesystem; callers check existence separately (the
// Registry's GetCachedFile does this, requiring both the row and the
// file per spec.md §4.1).
func (c *Cache) Path(fp model.Fingerprint, format string) string {
	return filepath.Join(c.root, fmt.Sprintf("%s.%s", fp, format))
}

// Root returns the cache's root directory.
func (c *Cache) Root() string { return c.root }

// unlinkBoundedConcurrency caps how many blob removals run at once during
// cleanup fan-out (spec.md §5's carve-out); kept small since this is
// local-disk I/O, not a network fan-out.
const unlinkBoundedConcurrency = 8

// RemoveAll best-effort unlinks every path in paths concurrently, up to
// unlinkBoundedConcurrency at a time, ignoring not-exist errors. It
// returns the first unexpected error encountered, if any, but still
// attempts every removal (errgroup.Group's default behavior of
// cancelling on first error is not used here: one slow/broken disk path
// should not abort unlinking of the others).
func RemoveAll(ctx context.Context, paths []string) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(unlinkBoundedConcurrency)

	var mu sync.Mutex
	var firstErr error
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return firstErr
}
