package engine

import "github.com/mereki/gambit/internal/core"

// worklist is the live ordered collection of not-yet-processed events
// driving the dispatch loop. It is an explicit data structure rather than
// call-stack recursion, so chain depth is bounded by memory, not stack.
//
// The worklist is owned by a single resolution and needs no locking.
type worklist struct {
	events []core.Event
}

func newWorklist(events []core.Event) *worklist {
	w := &worklist{events: make([]core.Event, len(events))}
	copy(w.events, events)
	return w
}

// pop removes and returns the front event.
func (w *worklist) pop() (core.Event, bool) {
	if len(w.events) == 0 {
		return core.Event{}, false
	}
	ev := w.events[0]
	// Nil the slot so retained payload pointers don't outlive the event.
	w.events[0] = core.Event{}
	if len(w.events) == 1 {
		w.events = w.events[:0]
	} else {
		w.events = w.events[1:]
	}
	return ev, true
}

// pushFront inserts events at the front in their given order, so they are
// processed before anything else pending. This is how replacements and
// chain reactions preserve the causal rule that a reaction fully resolves
// before the next originally-pending event runs.
func (w *worklist) pushFront(events ...core.Event) {
	if len(events) == 0 {
		return
	}
	combined := make([]core.Event, 0, len(events)+len(w.events))
	combined = append(combined, events...)
	combined = append(combined, w.events...)
	w.events = combined
}

// clear discards every pending event (AbortChain fallback).
func (w *worklist) clear() {
	w.events = w.events[:0]
}

func (w *worklist) len() int {
	return len(w.events)
}
