package engine

import (
	"log/slog"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/core"
)

// Dispatcher resolves action packages into canonical event logs. It holds
// only configuration; every resolution owns its own clock, quota and
// worklist, so one Dispatcher may serve any number of sequential
// resolutions (and any number of concurrent ones, each against its own
// state snapshot).
type Dispatcher struct {
	maxSteps int
	tracer   Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxSteps sets the per-resolution step ceiling.
//
// Default: 1000 (DefaultMaxSteps). Use a small value to test quota
// enforcement; raise it for catalogs with long legitimate chains.
func WithMaxSteps(maxSteps int) Option {
	return func(d *Dispatcher) {
		d.maxSteps = maxSteps
	}
}

// WithTracer injects an observability hook for dispatch behavior.
func WithTracer(t Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

// New creates a Dispatcher with the default slog tracer and step ceiling.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		maxSteps: DefaultMaxSteps,
		tracer:   NewSlogTracer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result is the output of one resolution: the final state and the applied-
// event log. The log contains exactly the canonical events in application
// order — no vetoed or superseded event appears.
type Result struct {
	State *board.State
	Log   []core.Event
}

// ResolveMove translates a move intent and resolves it. The input state is
// never mutated; an invalid intent (empty source cell) yields the input
// state and an empty log, not an error.
func (d *Dispatcher) ResolveMove(st *board.State, mv Move) (*Result, error) {
	return d.ResolvePackage(st, TranslateMove(st, mv))
}

// ResolveEvent resolves a single externally authored event, typically a
// lifecycle marker emitted by the turn manager. Fallback is ContinueChain:
// a vetoed marker must not silence independent markers queued after it.
func (d *Dispatcher) ResolveEvent(st *board.State, ev core.Event) (*Result, error) {
	return d.ResolvePackage(st, core.ActionPackage{
		Events:   []core.Event{ev},
		Fallback: core.ContinueChain,
	})
}

// ResolvePackage runs the worklist loop over an action package.
//
// Loop, while the worklist is non-empty:
//  1. Pop the next event; stamp seq and content-addressed id; charge the
//     step quota.
//  2. Recompute the listener collection from the current state and run
//     before-hooks in priority order. A veto drops the event; a replacement
//     pushes its events onto the front of the worklist. Either one applies
//     the package's fallback policy (AbortChain clears the remaining
//     worklist) and stops further listeners on this event.
//  3. If no listener altered the event, apply it via the transition
//     function, append it to the log, then run the same collection's
//     after-hooks against the new state; chained events go onto the front
//     of the worklist.
//
// The after-hooks deliberately use the collection computed before the event
// applied: a piece removed by the event still reacts to its own removal
// (that is how on-destroyed abilities fire), while the self-ignore guard
// keeps it from reacting to events it emitted itself.
//
// Hook panics are recovered and treated as "unchanged" — an extension
// authoring fault must not kill an otherwise healthy match. Only structural
// transition errors and the step quota abort the resolution.
func (d *Dispatcher) ResolvePackage(st *board.State, pkg core.ActionPackage) (*Result, error) {
	clock := NewClock()
	quota := newStepQuota(d.maxSteps)
	wl := newWorklist(pkg.Events)
	cur := st
	var log []core.Event

	for {
		ev, ok := wl.pop()
		if !ok {
			break
		}
		if err := quota.check(); err != nil {
			slog.Error("step quota exceeded",
				"steps", quota.current,
				"limit", quota.maxSteps,
				"kind", ev.Kind.String(),
			)
			return nil, err
		}

		ev = stamp(ev, clock)
		d.tracer.EventDispatched(ev)

		listeners := collectListeners(cur)
		altered := false
		for _, l := range listeners {
			// Recursion guard: a listener never observes an event it
			// authored, so a reaction cannot re-trigger its own hooks.
			if l.ListenerID() == ev.Source {
				continue
			}
			reaction := d.safeBefore(l, ev, core.HookContext{State: cur})
			switch reaction.Kind {
			case core.ReactUnchanged:
				continue
			case core.ReactVeto:
				d.tracer.EventVetoed(ev, l.ListenerID())
				if pkg.Fallback == core.AbortChain {
					wl.clear()
				}
				altered = true
			case core.ReactReplace:
				d.tracer.EventReplaced(ev, l.ListenerID(), reaction.Events)
				if pkg.Fallback == core.AbortChain {
					wl.clear()
				}
				wl.pushFront(reaction.Events...)
				altered = true
			}
			if altered {
				break
			}
		}
		if altered {
			continue
		}

		next, err := Apply(ev, cur)
		if err != nil {
			return nil, err
		}
		cur = next
		log = append(log, ev)
		d.tracer.EventApplied(ev)

		// Gather chains across after-hooks in priority order, then push the
		// whole batch to the front so the earliest listener's reaction runs
		// first.
		var chain []core.Event
		for _, l := range listeners {
			if l.ListenerID() == ev.Source {
				continue
			}
			chained := d.safeAfter(l, ev, core.HookContext{State: cur})
			if len(chained) > 0 {
				d.tracer.ChainEmitted(ev, l.ListenerID(), chained)
				chain = append(chain, chained...)
			}
		}
		wl.pushFront(chain...)
	}

	return &Result{State: cur, Log: log}, nil
}

// stamp assigns the per-resolution sequence number and the content-addressed
// id. Events arriving pre-stamped (already canonical, e.g. during store
// replay) keep their identity.
func stamp(ev core.Event, clock *Clock) core.Event {
	if ev.Seq == 0 {
		ev.Seq = clock.Next()
	}
	if ev.ID == "" {
		ev.ID = core.MustEventID(ev.Source, ev.Kind, core.Payload(ev), ev.Seq)
	}
	return ev
}

// safeBefore runs a before-hook, recovering panics as "unchanged".
func (d *Dispatcher) safeBefore(l core.Listener, ev core.Event, ctx core.HookContext) (r core.Reaction) {
	defer func() {
		if rec := recover(); rec != nil {
			d.tracer.HookFault(ev, l.ListenerID(), rec)
			r = core.Unchanged()
		}
	}()
	return l.Before(ev, ctx)
}

// safeAfter runs an after-hook, recovering panics as "no chain".
func (d *Dispatcher) safeAfter(l core.Listener, ev core.Event, ctx core.HookContext) (out []core.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			d.tracer.HookFault(ev, l.ListenerID(), rec)
			out = nil
		}
	}()
	return l.After(ev, ctx)
}
