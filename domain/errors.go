package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation (e.g. a second like row).
	ErrConflict = errors.New("conflict")

	// ErrToggleInFlight rejects a toggle while the previous one for the same
	// target is still waiting on the remote store.
	ErrToggleInFlight = errors.New("toggle already in flight")

	// ErrEmptyComment indicates the user submitted a blank comment.
	ErrEmptyComment = errors.New("comment cannot be empty")

	// ErrMissingImage indicates a post was submitted without an image.
	ErrMissingImage = errors.New("post requires an image")

	// ErrSelfFollow indicates the viewer tried to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")
)

// SyncError reports a failed remote read. Callers keep their last-known-good state.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// MutationError reports a failed remote write that happened after an
// optimistic local update was applied.
type MutationError struct {
	Op       string
	ID       string
	Reverted bool
	Err      error
}

func (e *MutationError) Error() string {
	state := "kept"
	if e.Reverted {
		state = "reverted"
	}
	return fmt.Sprintf("%s %s failed (%s): %v", e.Op, e.ID, state, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// ValidationError reports input rejected locally, before any remote call.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err was rejected locally.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
