// Package platform defines the PlatformAdapter contract the sync core
// consumes (spec.md §6): a uniform interface every source/target
// implements, so the orchestrator never branches on platform identity
// (spec.md §9's "registry of adapters keyed by platform id" design note).
// Concrete OAuth/cookie/session adapters for Strava, Garmin etc. are
// external collaborators; this package only defines the contract plus a
// deterministic in-memory reference implementation (memadapter.go) used
// to exercise and test the orchestrator end to end.
package platform

import (
	"context"
	"time"

	"fitsync/internal/model"
)

// RawActivity is an opaque, platform-specific activity payload. ToMetadata
// is the only place its shape is known; the orchestrator never inspects
// it, matching spec.md §9's "ToMetadata is the only place field names are
// known" design note.
type RawActivity = any

// UploadOutcome is how a target classifies its own response to an upload,
// per spec.md §4.7. The core never interprets HTTP codes itself — adapters
// do that translation and report one of these three outcomes.
type UploadOutcome int

const (
	Accepted UploadOutcome = iota
	Duplicate
	Failed
)

func (o UploadOutcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// Adapter is the capability every platform implements regardless of
// whether it is used as a source, a target, or both.
type Adapter interface {
	ID() string
	IsConfigured() bool
	TestConnection(ctx context.Context) bool
}

// SourceAdapter is the capability set of a platform used as a sync
// source: listing activities, normalizing them, and fetching their
// original file.
type SourceAdapter interface {
	Adapter

	// ListActivities returns raw activities in [after, before). In
	// Migration mode it returns them in ascending start-time order; in
	// Incremental mode ordering is unspecified (fingerprint dedup handles
	// repeats either way), per spec.md §4.7.
	ListActivities(ctx context.Context, limit int, after, before time.Time, mode Mode) ([]RawActivity, error)

	// ToMetadata normalizes a raw activity. It is the only place a raw
	// payload's platform-specific field names are known.
	ToMetadata(raw RawActivity) (model.Metadata, error)

	// ExtractActivityID returns the platform-native activity identifier.
	ExtractActivityID(raw RawActivity) string

	// DownloadFile writes the canonical original file to outPath.
	// Implementations handle any zip/202-retry details internally.
	DownloadFile(ctx context.Context, activityID, outPath string) error
}

// ManualActivityDetector is an optional SourceAdapter capability. Strava
// activities entered manually (no device, no upload id, no external id)
// have no original file and are unconditionally skipped as a source; the
// orchestrator checks for this interface and treats its absence as "never
// manual" (spec.md §4.7's "default false").
type ManualActivityDetector interface {
	IsManualActivity(raw RawActivity) bool
}

// TargetAdapter is the capability set of a platform used as a sync
// target: accepting an uploaded file and classifying its own response.
type TargetAdapter interface {
	Adapter
	UploadFile(ctx context.Context, path, name, fingerprint string) (UploadOutcome, error)
}

// SessionClearer is an optional capability for adapters that cache
// cookies, session files, or other credentials outside the OAuth token
// flow. ClearAdapterSession (spec.md §6) delegates to this interface when
// an adapter implements it.
type SessionClearer interface {
	ClearSession() error
}

// Registry holds the concrete adapters wired into one process, keyed by
// platform id, so the orchestrator can look them up by the string halves
// of a Direction without ever branching on platform identity.
type Registry struct {
	sources map[string]SourceAdapter
	targets map[string]TargetAdapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]SourceAdapter),
		targets: make(map[string]TargetAdapter),
	}
}

// RegisterSource wires a on the given platform id as a usable sync source.
func (r *Registry) RegisterSource(id string, a SourceAdapter) {
	r.sources[id] = a
}

// RegisterTarget wires a on the given platform id as a usable sync target.
func (r *Registry) RegisterTarget(id string, a TargetAdapter) {
	r.targets[id] = a
}

// Source looks up a registered source adapter by platform id.
func (r *Registry) Source(id string) (SourceAdapter, bool) {
	a, ok := r.sources[id]
	return a, ok
}

// Target looks up a registered target adapter by platform id.
func (r *Registry) Target(id string) (TargetAdapter, bool) {
	a, ok := r.targets[id]
	return a, ok
}

// Validate reports whether both halves of a direction are registered
// with the roles the direction requires.
func (r *Registry) Validate(d Direction) error {
	if _, ok := r.sources[d.Source]; !ok {
		return NewConfigError(d.Source, errNotRegisteredAsSource)
	}
	if _, ok := r.targets[d.Target]; !ok {
		return NewConfigError(d.Target, errNotRegisteredAsTarget)
	}
	return nil
}

var (
	errNotRegisteredAsSource = errNotRegistered("source")
	errNotRegisteredAsTarget = errNotRegistered("target")
)

type notRegisteredError string

func (e notRegisteredError) Error() string { return "not registered as " + string(e) }

func errNotRegistered(role string) error { return notRegisteredError(role) }
