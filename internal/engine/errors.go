package engine

import (
	"errors"
	"fmt"

	"github.com/mereki/gambit/internal/core"
)

// RuntimeError represents a structural fault detected during resolution.
//
// Ordinary gameplay never produces one: invalid intent is an empty package,
// hook faults are recovered, stale entity references no-op. A RuntimeError
// means the catalog or a caller handed the engine something malformed — an
// event referencing an out-of-bounds cell, an unknown event kind — and is
// therefore fatal for the resolution.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// EventID and Kind identify the offending event when known.
	EventID string
	Kind    core.Kind
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeOutOfBounds indicates an event referenced a cell outside the
	// grid.
	ErrCodeOutOfBounds RuntimeErrorCode = "OUT_OF_BOUNDS"

	// ErrCodeUnknownKind indicates an event with no transition case.
	ErrCodeUnknownKind RuntimeErrorCode = "UNKNOWN_KIND"

	// ErrCodeBadEvent indicates an event missing a required payload field
	// (for example a Transform without a replacement piece).
	ErrCodeBadEvent RuntimeErrorCode = "BAD_EVENT"
)

func (e *RuntimeError) Error() string {
	if e.EventID != "" {
		return fmt.Sprintf("%s: %s (event=%s, kind=%s)", e.Code, e.Message, e.EventID, e.Kind)
	}
	return fmt.Sprintf("%s: %s (kind=%s)", e.Code, e.Message, e.Kind)
}

// IsOutOfBounds reports whether err is an out-of-bounds RuntimeError.
func IsOutOfBounds(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeOutOfBounds
	}
	return false
}

func newOutOfBoundsError(ev core.Event, at core.Coord) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeOutOfBounds,
		Message: fmt.Sprintf("event references out-of-bounds cell %s", at),
		EventID: ev.ID,
		Kind:    ev.Kind,
	}
}
