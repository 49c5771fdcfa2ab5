package harness

import (
	"fmt"
	"strings"

	"github.com/mereki/gambit/internal/core"
)

// AssertionError is returned when an assertion fails. It includes the trace
// so the failure message is debuggable on its own.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] step %d seq %d %s: %s\n", i+1, event.Step, event.Seq, event.Kind, event.Note)
	}

	return buf.String()
}

// assertLogContains checks that an event of the given kind appears in the
// trace.
func assertLogContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Kind == assertion.Kind {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertLogContains,
		Expected: fmt.Sprintf("an event of kind %s", assertion.Kind),
		Actual:   "not found in log",
		Trace:    trace,
	}
}

// assertLogOrder checks that events of the listed kinds appear in order.
// Intervening events of other kinds are allowed; each listed kind matches
// the first occurrence after the previous match.
func assertLogOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(assertion.Kinds) && event.Kind == assertion.Kinds[next] {
			next++
		}
	}
	if next < len(assertion.Kinds) {
		return &AssertionError{
			Type:     AssertLogOrder,
			Expected: fmt.Sprintf("kinds in order: %v", assertion.Kinds),
			Actual:   fmt.Sprintf("matched only the first %d", next),
			Trace:    trace,
		}
	}
	return nil
}

// assertLogCount checks the exact occurrence count of a kind.
func assertLogCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Kind == assertion.Kind {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertLogCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Kind),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalBoard checks the occupant of one cell on the final board.
func assertFinalBoard(result *Result, assertion Assertion) error {
	at := assertion.At.Coord()
	if !result.Final.InBounds(at) {
		return &AssertionError{
			Type:     AssertFinalBoard,
			Expected: fmt.Sprintf("cell %s on the board", at),
			Actual:   "out of bounds",
			Trace:    result.Trace,
		}
	}
	occupant := result.Final.PieceAt(at)

	if assertion.Empty {
		if occupant != nil {
			return &AssertionError{
				Type:     AssertFinalBoard,
				Expected: fmt.Sprintf("cell %s empty", at),
				Actual:   fmt.Sprintf("occupied by %s", occupant.PieceID()),
				Trace:    result.Trace,
			}
		}
		return nil
	}

	if occupant == nil {
		return &AssertionError{
			Type:     AssertFinalBoard,
			Expected: fmt.Sprintf("%s %s at %s", assertion.Owner, assertion.Piece, at),
			Actual:   "cell is empty",
			Trace:    result.Trace,
		}
	}
	name := core.Unwrap(occupant).Name()
	if name != assertion.Piece {
		return &AssertionError{
			Type:     AssertFinalBoard,
			Expected: fmt.Sprintf("piece %s at %s", assertion.Piece, at),
			Actual:   fmt.Sprintf("piece %s", name),
			Trace:    result.Trace,
		}
	}
	if assertion.Owner != "" && occupant.Owner().String() != assertion.Owner {
		return &AssertionError{
			Type:     AssertFinalBoard,
			Expected: fmt.Sprintf("owner %s at %s", assertion.Owner, at),
			Actual:   fmt.Sprintf("owner %s", occupant.Owner()),
			Trace:    result.Trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertLogContains:
			err = assertLogContains(result.Trace, assertion)
		case AssertLogOrder:
			err = assertLogOrder(result.Trace, assertion)
		case AssertLogCount:
			err = assertLogCount(result.Trace, assertion)
		case AssertFinalBoard:
			err = assertFinalBoard(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
