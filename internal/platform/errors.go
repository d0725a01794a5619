package platform

import "fmt"

// The error kinds below implement the taxonomy of spec.md §7. They are
// plain wrapped error values rather than an exception hierarchy: the
// orchestrator classifies them with errors.As, matching the discriminated
// result design note in spec.md §9 ("adapter methods return a
// discriminated result ... the orchestrator maps these to the taxonomy
// ... without catching arbitrary exceptions").

// ConfigErr means an adapter is not configured or a required secret is
// missing. The direction aborts before any work is attempted.
type ConfigErr struct {
	Platform string
	Err      error
}

func (e *ConfigErr) Error() string {
	return fmt.Sprintf("%s: not configured: %v", e.Platform, e.Err)
}
func (e *ConfigErr) Unwrap() error { return e.Err }

// NewConfigError wraps err as a ConfigErr for platform.
func NewConfigError(platform string, err error) error {
	return &ConfigErr{Platform: platform, Err: err}
}

// TransientErr covers timeouts, 5xx, 202-not-ready-after-retries, and
// connection resets. It is counted as a per-activity failure; it never
// aborts the batch.
type TransientErr struct{ Err error }

func (e *TransientErr) Error() string { return fmt.Sprintf("transient: %v", e.Err) }
func (e *TransientErr) Unwrap() error { return e.Err }

// NewTransientError wraps err as a TransientErr.
func NewTransientError(err error) error { return &TransientErr{Err: err} }

// AuthErr covers 401/403 and expired cookie/session responses. Adapters
// are expected to retry once after refreshing credentials themselves;
// AuthErr reaching the orchestrator means that retry also failed, and it
// is treated like a TransientErr with a credential-refresh hint.
type AuthErr struct{ Err error }

func (e *AuthErr) Error() string {
	return fmt.Sprintf("auth failed, refresh credentials: %v", e.Err)
}
func (e *AuthErr) Unwrap() error { return e.Err }

// NewAuthError wraps err as an AuthErr.
func NewAuthError(err error) error { return &AuthErr{Err: err} }

// PermanentErr covers 400/404 on a specific activity, unsupported file
// formats, or a source reporting no file exists (e.g. an HTML page
// returned for a manual activity's file export). The activity is marked
// failed; the direction is not aborted.
type PermanentErr struct{ Err error }

func (e *PermanentErr) Error() string { return fmt.Sprintf("permanent: %v", e.Err) }
func (e *PermanentErr) Unwrap() error { return e.Err }

// NewPermanentError wraps err as a PermanentErr.
func NewPermanentError(err error) error { return &PermanentErr{Err: err} }

// RegistryErr means the persistent store failed to write. The
// orchestrator counts the activity whose registry write failed as failed
// and continues with the next activity; it does not abort the direction.
type RegistryErr struct{ Err error }

func (e *RegistryErr) Error() string { return fmt.Sprintf("registry write failed: %v", e.Err) }
func (e *RegistryErr) Unwrap() error { return e.Err }

// NewRegistryError wraps err as a RegistryErr.
func NewRegistryError(err error) error { return &RegistryErr{Err: err} }

// CacheWriteErr means the file cache failed to write a blob (disk full,
// IO error). The activity is marked failed; the loop continues.
type CacheWriteErr struct{ Err error }

func (e *CacheWriteErr) Error() string { return fmt.Sprintf("cache write failed: %v", e.Err) }
func (e *CacheWriteErr) Unwrap() error { return e.Err }

// NewCacheWriteError wraps err as a CacheWriteErr.
func NewCacheWriteError(err error) error { return &CacheWriteErr{Err: err} }
