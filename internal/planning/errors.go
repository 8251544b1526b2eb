// Package planning assembles and synchronizes the per-cycle planning frame:
// bounded frame history, the obstacle index, reference line synthesis over
// the map and smoother collaborators, prediction time alignment, and the
// ordered fail-fast frame initialization pipeline.
package planning

import (
	"errors"
	"fmt"
)

// Kind classifies a planning failure so callers can discriminate with
// errors.Is without depending on message text.
type Kind string

const (
	// KindConfiguration marks a frame built before its collaborators were
	// wired, such as a missing map provider.
	KindConfiguration Kind = "configuration"

	// KindInvalidInput marks unusable cycle input, such as a NaN pose.
	KindInvalidInput Kind = "invalid_input"

	// KindReferenceLine marks a reference line synthesis failure from the
	// map or smoother collaborator.
	KindReferenceLine Kind = "reference_line"

	// KindObstacleAttach marks a failure attaching the cycle's obstacles to
	// a reference line candidate.
	KindObstacleAttach Kind = "obstacle_attach"
)

// Error is a classified planning failure. Op names the operation that
// failed and Err carries the collaborator cause when there is one.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

// Unwrap exposes the cause so errors.Is reaches collaborator sentinels.
func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, so errors.Is(err, ErrReferenceLine) is true for any
// reference line failure regardless of operation or cause.
func (e *Error) Is(target error) bool {
	var pe *Error
	if errors.As(target, &pe) {
		return e.Kind == pe.Kind
	}
	return false
}

// Canonical targets for errors.Is.
var (
	ErrConfiguration  = &Error{Kind: KindConfiguration}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput}
	ErrReferenceLine  = &Error{Kind: KindReferenceLine}
	ErrObstacleAttach = &Error{Kind: KindObstacleAttach}
)

// newError builds a classified error with a formatted message as cause.
func newError(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// wrapError classifies an existing cause, preserving it for errors.Is.
func wrapError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from err, or empty when err is not a planning
// error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
