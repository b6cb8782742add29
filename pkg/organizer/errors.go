package organizer

import (
	"context"
	"errors"
	"fmt"
)

// ErrKind classifies every failure the organizer can report. Tool and
// session faults are converted to one of these at the boundary; no raw
// filesystem or provider error crosses into the orchestration loop.
type ErrKind string

const (
	KindInvalidName       ErrKind = "invalid_name"
	KindPathEscape        ErrKind = "path_escape"
	KindProtected         ErrKind = "protected"
	KindNotFound          ErrKind = "not_found"
	KindNotAFile          ErrKind = "not_a_file"
	KindDestMissing       ErrKind = "dest_missing"
	KindNotText           ErrKind = "not_text"
	KindIOFailure         ErrKind = "io_failure"
	KindAlreadyRunning    ErrKind = "already_running"
	KindIterationLimit    ErrKind = "iteration_limit_exceeded"
	KindCancelled         ErrKind = "cancelled"
	KindMissingCredential ErrKind = "missing_credential"
)

// Error is a kind-tagged failure. It implements error and unwraps to the
// underlying cause when one exists.
type Error struct {
	Kind    ErrKind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// E builds a kind-tagged error with a formatted message.
func E(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a kind-tagged error around an underlying cause.
func Wrap(cause error, kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the kind from an error chain. Context cancellation maps
// to KindCancelled; anything untagged counts as an I/O failure, which keeps
// transcripts uniform when third-party tools or providers fail.
func KindOf(err error) ErrKind {
	if err == nil {
		return ""
	}
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return KindIOFailure
}
