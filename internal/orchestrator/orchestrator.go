// Package orchestrator implements the Sync Orchestrator (spec.md §4.6):
// the per-activity pipeline (fetch -> fingerprint -> dedupe ->
// download-or-cache -> upload -> record) driven sequentially per
// direction, per call, matching the teacher repo's internal/service
// sync loop in shape (options struct at construction, one exported
// RunSync-style entry point) while replacing its Strava-only body with
// the multi-platform pipeline spec.md §4.6 describes.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fitsync/internal/filecache"
	"fitsync/internal/matcher"
	"fitsync/internal/model"
	"fitsync/internal/platform"
	"fitsync/internal/ratelimit"
	"fitsync/internal/registry"
	"fitsync/internal/window"
)

// DirectionResult is the per-direction counters spec.md §4.6 specifies,
// plus an optional terminal error for directions that abort outright.
type DirectionResult struct {
	Direction string
	Success   int
	Failed    int
	Skipped   int
	Processed int
	Error     string
}

// Options configures an Orchestrator at construction, replacing the
// mutable module-level debug-flag pattern the original sync manager used
// (spec.md §9's explicit redesign guidance).
type Options struct {
	CacheRoot         string
	MatcherThresholds matcher.Thresholds
	DuplicateWindow   time.Duration
	// Now overrides the clock the Window Manager computes sync windows
	// against. Defaults to time.Now; tests inject a fixed clock so
	// seeded activity timestamps stay inside the computed window
	// regardless of when the test runs.
	Now func() time.Time
}

// DefaultOptions returns the config-knob defaults spec.md §6 lists.
func DefaultOptions(cacheRoot string) Options {
	return Options{
		CacheRoot:         cacheRoot,
		MatcherThresholds: matcher.DefaultThresholds(),
		DuplicateWindow:   time.Hour,
	}
}

// Orchestrator wires the Registry, Window Manager, Matcher, Rate-Limit
// Governor, File Cache, and the adapter Registry together and drives
// RunSync.
type Orchestrator struct {
	store    *registry.Store
	window   *window.Manager
	matcher  *matcher.Matcher
	governor *ratelimit.Governor
	cache    *filecache.Cache
	adapters *platform.Registry
	opts     Options
	logger   *slog.Logger
}

// New constructs an Orchestrator from its collaborators.
func New(store *registry.Store, governor *ratelimit.Governor, adapters *platform.Registry, opts Options, logger *slog.Logger) (*Orchestrator, error) {
	cache, err := filecache.New(opts.CacheRoot)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		store:    store,
		window:   window.NewWithClock(store, now),
		matcher:  matcher.New(opts.MatcherThresholds),
		governor: governor,
		cache:    cache,
		adapters: adapters,
		opts:     opts,
		logger:   logger,
	}, nil
}

// RunSync drives every direction sequentially, per spec.md §5's
// single-threaded scheduling model, and returns one DirectionResult per
// direction in the order given.
func (o *Orchestrator) RunSync(ctx context.Context, directions []string, batchSize int, mode platform.Mode) []DirectionResult {
	results := make([]DirectionResult, 0, len(directions))
	for _, raw := range directions {
		results = append(results, o.runDirection(ctx, raw, batchSize, mode))
	}
	return results
}

func (o *Orchestrator) runDirection(ctx context.Context, raw string, batchSize int, mode platform.Mode) DirectionResult {
	result := DirectionResult{Direction: raw}

	dir, err := platform.ParseDirection(raw)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if err := o.adapters.Validate(dir); err != nil {
		result.Error = err.Error()
		return result
	}
	source, _ := o.adapters.Source(dir.Source)
	target, _ := o.adapters.Target(dir.Target)

	enabled, err := o.store.IsRuleEnabled(ctx, dir.Source, dir.Target)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if !enabled {
		return result // disabled direction: zero counters, no error
	}

	if !source.IsConfigured() {
		result.Error = platform.NewConfigError(dir.Source, errors.New("adapter reports not configured")).Error()
		return result
	}
	if !target.IsConfigured() {
		result.Error = platform.NewConfigError(dir.Target, errors.New("adapter reports not configured")).Error()
		return result
	}

	if !o.governor.CanRequest(dir.Source) {
		result.Skipped++
		return result
	}

	var win window.Window
	if mode == platform.Migration {
		complete, err := o.window.IsMigrationComplete(ctx, raw)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		if complete {
			return result // "complete" per spec.md §4.6 step 4: zero counters, no error
		}
		win, err = o.window.ComputeMigration(ctx, raw)
		if err != nil {
			result.Error = err.Error()
			return result
		}
	} else {
		win, err = o.window.ComputeIncremental(ctx, dir.Source)
		if err != nil {
			result.Error = err.Error()
			return result
		}
	}

	o.governor.Record(dir.Source)
	raws, err := source.ListActivities(ctx, batchSize, win.Start, win.End, mode)
	if err != nil {
		result.Error = fmt.Sprintf("listing activities: %v", err)
		return result
	}

	var (
		latestActivityTime time.Time
		haveLatest         bool
		processedAny       bool
	)

	for _, rawActivity := range raws {
		if err := ctx.Err(); err != nil {
			break
		}

		outcome := o.processActivity(ctx, dir, rawActivity, source, target)
		switch outcome.status {
		case activitySkipped:
			result.Skipped++
		case activityFailed:
			result.Failed++
		case activitySuccess:
			result.Success++
		}
		result.Processed++
		processedAny = true

		if outcome.startTime != nil && (!haveLatest || outcome.startTime.After(latestActivityTime)) {
			latestActivityTime = *outcome.startTime
			haveLatest = true
		}

		if !o.governor.CanRequest(dir.Source) {
			break // partial batch is valid per spec.md §4.6 step 7
		}
	}

	if mode == platform.Migration && haveLatest {
		if err := o.window.CommitMigrationProgress(ctx, raw, latestActivityTime); err != nil {
			o.logger.Warn("failed to commit migration progress", "direction", raw, "error", err)
		}
	} else if mode == platform.Incremental && processedAny {
		if err := o.window.CommitIncremental(ctx, dir.Source); err != nil {
			o.logger.Warn("failed to commit incremental cursor", "source", dir.Source, "error", err)
		}
	}

	return result
}

// Status returns the registry's aggregate statistics, the thin
// pass-through the Status() operation of spec.md §6 names.
func (o *Orchestrator) Status(ctx context.Context) (registry.Statistics, error) {
	return o.store.Statistics(ctx)
}

// SetRule toggles whether direction is eligible to run, per the
// SetRule(source, target, enabled) operation of spec.md §6.
func (o *Orchestrator) SetRule(ctx context.Context, source, target string, enabled bool) error {
	return o.store.SetRule(ctx, source, target, enabled)
}

// SetMigrationStart overrides direction's historical backfill start, per
// the SetMigrationStart(direction, iso8601) operation of spec.md §6.
func (o *Orchestrator) SetMigrationStart(ctx context.Context, direction string, start time.Time) error {
	return o.window.SetMigrationStart(ctx, direction, start)
}

// CleanupCache deletes file_cache rows (and their blobs) older than days,
// per the CleanupCache(days) operation of spec.md §6.
func (o *Orchestrator) CleanupCache(ctx context.Context, days int) (int, error) {
	return o.store.CleanupFileCacheOlderThan(ctx, days)
}

// ClearAdapterSession delegates to adapterID's SessionClearer capability
// if it has one, per the ClearAdapterSession(adapterId) operation of
// spec.md §6 ("delegates to adapter"). It checks both the source and
// target registrations since an adapter may be wired as either or both.
func (o *Orchestrator) ClearAdapterSession(adapterID string) error {
	if a, ok := o.adapters.Source(adapterID); ok {
		if clearer, ok := a.(platform.SessionClearer); ok {
			return clearer.ClearSession()
		}
	}
	if a, ok := o.adapters.Target(adapterID); ok {
		if clearer, ok := a.(platform.SessionClearer); ok {
			return clearer.ClearSession()
		}
	}
	return fmt.Errorf("orchestrator: adapter %q is not registered or does not support session clearing", adapterID)
}

type activityStatus int

const (
	activitySkipped activityStatus = iota
	activityFailed
	activitySuccess
)

type activityOutcome struct {
	status    activityStatus
	startTime *time.Time
}

func (o *Orchestrator) processActivity(ctx context.Context, dir platform.Direction, rawActivity platform.RawActivity, source platform.SourceAdapter, target platform.TargetAdapter) activityOutcome {
	meta, err := source.ToMetadata(rawActivity)
	if err != nil {
		o.logger.Warn("failed to normalize activity", "source", dir.Source, "error", err)
		return activityOutcome{status: activityFailed}
	}
	sourceActivityID := source.ExtractActivityID(rawActivity)

	if detector, ok := source.(platform.ManualActivityDetector); ok && detector.IsManualActivity(rawActivity) {
		return activityOutcome{status: activitySkipped, startTime: &meta.StartTime}
	}

	fp := model.ComputeFingerprint(meta)

	synced, err := o.store.IsSynced(ctx, fp, dir.Source, dir.Target)
	if err != nil {
		o.logger.Error("registry read failed", "error", err)
		return activityOutcome{status: activityFailed, startTime: &meta.StartTime}
	}
	if synced {
		return activityOutcome{status: activitySkipped, startTime: &meta.StartTime}
	}

	cacheFile, err := o.resolveCacheFile(ctx, dir, meta, fp, sourceActivityID, source)
	if err != nil {
		if setErr := o.store.SetSyncStatus(ctx, fp, dir.Source, dir.Target, "failed"); setErr != nil {
			o.logger.Error("registry write failed recording download failure", "error", setErr)
		}
		return activityOutcome{status: activityFailed, startTime: &meta.StartTime}
	}

	outcome, err := target.UploadFile(ctx, cacheFile, meta.Name, string(fp))
	status := "failed"
	resultStatus := activityFailed
	if err == nil && (outcome == platform.Accepted || outcome == platform.Duplicate) {
		status = "synced"
		resultStatus = activitySuccess
	}

	if setErr := o.store.SetSyncStatus(ctx, fp, dir.Source, dir.Target, status); setErr != nil {
		o.logger.Error("registry write failed recording upload result", "error", setErr)
		return activityOutcome{status: activityFailed, startTime: &meta.StartTime}
	}

	return activityOutcome{status: resultStatus, startTime: &meta.StartTime}
}

// resolveCacheFile implements the duplicate-probe and cache-or-download
// logic of spec.md §4.6 step 7's "Duplicate probe" sub-bullet: reuse a
// cached file from a fuzzy-matched candidate before ever hitting the
// source adapter's DownloadFile.
func (o *Orchestrator) resolveCacheFile(ctx context.Context, dir platform.Direction, meta model.Metadata, fp model.Fingerprint, sourceActivityID string, source platform.SourceAdapter) (string, error) {
	candidates, err := o.store.FindSimilarByTimeAndSport(ctx, meta.StartTime, meta.SportType, o.opts.DuplicateWindow)
	if err != nil {
		return "", fmt.Errorf("duplicate probe: %w", err)
	}

	matcherCandidates := make([]matcher.Candidate, 0, len(candidates))
	for _, c := range candidates {
		matcherCandidates = append(matcherCandidates, matcher.Candidate{Fingerprint: c.Fingerprint, Metadata: c.Metadata})
	}
	if best, _, ok := o.matcher.BestMatch(meta, matcherCandidates); ok {
		for _, format := range filecache.Formats {
			if path, hit, err := o.store.GetCachedFile(ctx, best.Fingerprint, format); err == nil && hit {
				return path, nil
			}
		}
	}

	if _, err := o.store.UpsertActivity(ctx, meta, dir.Source, sourceActivityID); err != nil {
		return "", platform.NewRegistryError(err)
	}

	for _, format := range filecache.Formats {
		if path, hit, err := o.store.GetCachedFile(ctx, fp, format); err == nil && hit {
			return path, nil
		}
	}

	outPath := o.cache.Path(fp, "fit")
	o.governor.Record(dir.Source)
	if err := source.DownloadFile(ctx, sourceActivityID, outPath); err != nil {
		var transient *platform.TransientErr
		var permanent *platform.PermanentErr
		if errors.As(err, &transient) || errors.As(err, &permanent) {
			return "", err
		}
		return "", platform.NewTransientError(err)
	}

	if err := o.store.AddFileCache(ctx, fp, "fit", outPath); err != nil {
		return "", platform.NewCacheWriteError(err)
	}
	return outPath, nil
}
