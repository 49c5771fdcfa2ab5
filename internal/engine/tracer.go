package engine

import (
	"log/slog"
	"sync"

	"github.com/mereki/gambit/internal/core"
)

// Tracer is the injectable observability hook for dispatch behavior. Tests
// assert on recorded notifications programmatically instead of scraping log
// text; production wires the slog-backed tracer.
//
// A resolution calls the tracer synchronously from its single goroutine.
type Tracer interface {
	// EventDispatched fires when an event is popped from the worklist,
	// after stamping, before any hook runs.
	EventDispatched(ev core.Event)
	// EventVetoed fires when a before-hook drops the event.
	EventVetoed(ev core.Event, listenerID string)
	// EventReplaced fires when a before-hook supersedes the event.
	EventReplaced(ev core.Event, listenerID string, with []core.Event)
	// EventApplied fires after the transition function applied the event.
	EventApplied(ev core.Event)
	// ChainEmitted fires when an after-hook returns follow-up events.
	ChainEmitted(parent core.Event, listenerID string, events []core.Event)
	// HookFault fires when a hook panicked; the panic was recovered and the
	// hook treated as "unchanged".
	HookFault(ev core.Event, listenerID string, recovered any)
}

// slogTracer logs dispatch notifications through log/slog.
type slogTracer struct{}

// NewSlogTracer returns the default production tracer.
func NewSlogTracer() Tracer { return slogTracer{} }

func (slogTracer) EventDispatched(ev core.Event) {
	slog.Debug("event dispatched", "id", ev.ID, "kind", ev.Kind.String(), "seq", ev.Seq, "source", ev.Source)
}

func (slogTracer) EventVetoed(ev core.Event, listenerID string) {
	slog.Info("event vetoed", "id", ev.ID, "kind", ev.Kind.String(), "listener", listenerID)
}

func (slogTracer) EventReplaced(ev core.Event, listenerID string, with []core.Event) {
	slog.Info("event replaced", "id", ev.ID, "kind", ev.Kind.String(), "listener", listenerID, "replacements", len(with))
}

func (slogTracer) EventApplied(ev core.Event) {
	slog.Debug("event applied", "id", ev.ID, "kind", ev.Kind.String(), "seq", ev.Seq)
}

func (slogTracer) ChainEmitted(parent core.Event, listenerID string, events []core.Event) {
	slog.Debug("chain emitted", "parent", parent.ID, "listener", listenerID, "events", len(events))
}

func (slogTracer) HookFault(ev core.Event, listenerID string, recovered any) {
	slog.Error("listener hook panicked, treated as unchanged",
		"id", ev.ID,
		"kind", ev.Kind.String(),
		"listener", listenerID,
		"panic", recovered,
	)
}

// Notification records one tracer callback for test assertions.
type Notification struct {
	Op         string // "dispatched" | "vetoed" | "replaced" | "applied" | "chained" | "fault"
	EventID    string
	Kind       core.Kind
	ListenerID string
	Count      int
}

// RecordingTracer captures notifications in order. Safe for concurrent use,
// though resolutions are single-threaded.
type RecordingTracer struct {
	mu            sync.Mutex
	notifications []Notification
}

// NewRecordingTracer creates an empty recording tracer.
func NewRecordingTracer() *RecordingTracer {
	return &RecordingTracer{}
}

// Notifications returns a copy of everything recorded so far.
func (r *RecordingTracer) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// ByOp returns the recorded notifications matching one operation.
func (r *RecordingTracer) ByOp(op string) []Notification {
	var out []Notification
	for _, n := range r.Notifications() {
		if n.Op == op {
			out = append(out, n)
		}
	}
	return out
}

func (r *RecordingTracer) record(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *RecordingTracer) EventDispatched(ev core.Event) {
	r.record(Notification{Op: "dispatched", EventID: ev.ID, Kind: ev.Kind})
}

func (r *RecordingTracer) EventVetoed(ev core.Event, listenerID string) {
	r.record(Notification{Op: "vetoed", EventID: ev.ID, Kind: ev.Kind, ListenerID: listenerID})
}

func (r *RecordingTracer) EventReplaced(ev core.Event, listenerID string, with []core.Event) {
	r.record(Notification{Op: "replaced", EventID: ev.ID, Kind: ev.Kind, ListenerID: listenerID, Count: len(with)})
}

func (r *RecordingTracer) EventApplied(ev core.Event) {
	r.record(Notification{Op: "applied", EventID: ev.ID, Kind: ev.Kind})
}

func (r *RecordingTracer) ChainEmitted(parent core.Event, listenerID string, events []core.Event) {
	r.record(Notification{Op: "chained", EventID: parent.ID, Kind: parent.Kind, ListenerID: listenerID, Count: len(events)})
}

func (r *RecordingTracer) HookFault(ev core.Event, listenerID string, recovered any) {
	r.record(Notification{Op: "fault", EventID: ev.ID, Kind: ev.Kind, ListenerID: listenerID})
}
