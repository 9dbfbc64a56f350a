package model

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled marks jobs that were aborted by the caller's cancellation
// signal rather than by a remote or local fault.
var ErrCancelled = errors.New("cancelled")

// ResolutionError means the identifier was malformed or unreachable. The
// affected job never starts a transfer.
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SelectionNotFoundError means the identifier resolved fine but no stream of
// the requested kind (or exact quality tier) exists. Reported as a skip, not
// a crash of the batch.
type SelectionNotFoundError struct {
	Kind       StreamKind
	Preference int
}

func (e *SelectionNotFoundError) Error() string {
	if e.Preference > 0 {
		return fmt.Sprintf("no %s stream with quality %d", e.Kind, e.Preference)
	}
	return fmt.Sprintf("no %s stream available", e.Kind)
}

// TransferError means the byte transfer failed mid-download. Cancelled is
// set when the failure was the caller's cancellation signal.
type TransferError struct {
	URL       string
	Cancelled bool
	Err       error
}

func (e *TransferError) Error() string {
	if e.Cancelled {
		return fmt.Sprintf("transfer %s: cancelled", e.URL)
	}
	return fmt.Sprintf("transfer %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// NewCancelledTransfer builds the distinct cancellation failure for a job.
func NewCancelledTransfer(url string, cause error) *TransferError {
	if cause == nil {
		cause = context.Canceled
	}
	return &TransferError{URL: url, Cancelled: true, Err: fmt.Errorf("%w: %w", ErrCancelled, cause)}
}

// PostProcessError means the finalize step failed: transcoder missing,
// non-zero exit, or a rename fault. Output captures the transcoder's
// diagnostic output when available.
type PostProcessError struct {
	Input  string
	Output string // captured diagnostic output (stderr)
	Err    error
}

func (e *PostProcessError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("post-process %s: %v: %s", e.Input, e.Err, e.Output)
	}
	return fmt.Sprintf("post-process %s: %v", e.Input, e.Err)
}

func (e *PostProcessError) Unwrap() error { return e.Err }

// PreconditionError means a batch-wide precondition (destination directory
// missing or unwritable) failed. No job is attempted.
type PreconditionError struct {
	Dir string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("destination %s: %v", e.Dir, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }
