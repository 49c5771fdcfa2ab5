package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxSteps is the default ceiling on events processed per resolution.
// No cycle guard can prove termination for arbitrary listener combinations,
// so the quota is the hard backstop: a pathological ability pairing that
// keeps chaining events terminates the resolution with a fatal diagnostic
// instead of looping forever.
const DefaultMaxSteps = 1000

// stepQuota counts events popped from the worklist during one resolution
// and enforces the ceiling. Each resolution gets a fresh quota.
type stepQuota struct {
	maxSteps int
	current  int
}

func newStepQuota(maxSteps int) *stepQuota {
	return &stepQuota{maxSteps: maxSteps}
}

// check increments the step counter and validates against the limit.
// Returns StepsExceededError once the ceiling is crossed.
func (q *stepQuota) check() error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{Steps: q.current, Limit: q.maxSteps}
	}
	return nil
}

// StepsExceededError is returned when a resolution exceeds the step ceiling.
// It aborts the whole resolution: the caller receives no partial state and
// no partial log, and the input state is untouched.
type StepsExceededError struct {
	Steps int
	Limit int
}

func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("resolution exceeded max steps: %d steps > %d limit", e.Steps, e.Limit)
}

// IsStepsExceededError reports whether err is a StepsExceededError,
// unwrapping as needed.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
