package platform

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// DownloadRetrySchedule bounds the "202 not ready yet" retry loop some
// sources use while a just-created export is still being packaged
// (Garmin's original-file endpoint is the canonical example): 2s, 4s, 8s,
// then a flat 10s, for up to 10 retries after the first attempt (11
// attempts in all), per spec.md §4.7.
func DownloadRetrySchedule() retry.Backoff {
	b := retry.NewExponential(2 * time.Second)
	b = retry.WithCappedDuration(10*time.Second, b)
	b = retry.WithMaxRetries(10, b)
	return b
}

// ErrNotReady signals a transient "try again" response (HTTP 202 or
// equivalent) from RetryDownload's attempt function. Any other error is
// treated as final and stops the retry loop immediately.
var ErrNotReady = NewTransientError(errNotReadyMsg("download not ready"))

type errNotReadyMsg string

func (e errNotReadyMsg) Error() string { return string(e) }

// RetryDownload runs attempt under DownloadRetrySchedule, continuing for
// as long as attempt returns ErrNotReady (matched with errors.Is, so a
// wrapped ErrNotReady also retries) and stopping on success, on context
// cancellation, or on any other error.
func RetryDownload(ctx context.Context, attempt func(ctx context.Context) error) error {
	b := DownloadRetrySchedule()
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotReady) {
			return retry.RetryableError(err)
		}
		return err
	})
}
