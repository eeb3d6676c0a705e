package remote

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthError indicates a missing or rejected credential. It is fatal to
// the session; no retry is attempted.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an
// AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// RateLimitError indicates the API rate limit was exhausted. It is
// surfaced distinctly so the UI can show a specific message instead of
// a generic failure.
type RateLimitError struct {
	// ResetAt is when the limit window resets, if the server said so.
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return "rate limited by the GitHub API"
	}
	return fmt.Sprintf(
		"rate limited by the GitHub API until %s",
		e.ResetAt.Local().Format("15:04:05"),
	)
}

// IsRateLimitError reports whether err is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// NoBrowsableURLError means a notification's target has no URL a
// browser could open. It is a per-item no-op, not a pipeline failure.
type NoBrowsableURLError struct {
	APIURL string
}

func (e *NoBrowsableURLError) Error() string {
	return fmt.Sprintf("no browsable URL for %s", e.APIURL)
}

// StubFailure records a single stub whose resolution failed during
// hydration.
type StubFailure struct {
	ID  string
	Err error
}

// HydrationError aggregates the per-stub failures of a hydration batch.
// Any stub failing fails the whole batch: a partial inbox would be
// silently incomplete, so the previous cache contents are kept instead.
type HydrationError struct {
	Failures []StubFailure
}

func (e *HydrationError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf(
			"hydrating notification %s: %v",
			e.Failures[0].ID, e.Failures[0].Err,
		)
	}

	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.ID)
	}
	return fmt.Sprintf(
		"hydrating %d notifications failed (%s): %v",
		len(e.Failures), strings.Join(ids, ", "), e.Failures[0].Err,
	)
}

// Unwrap exposes the underlying failures to errors.Is/As, so an auth
// or rate-limit error inside a batch keeps its identity.
func (e *HydrationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
