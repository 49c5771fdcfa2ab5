// Package manager drives a match: it owns the authoritative state history,
// gates player intents through the ruleset, hands them to the dispatcher,
// and emits the turn lifecycle around every accepted play.
package manager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/core"
	"github.com/mereki/gambit/internal/engine"
	"github.com/mereki/gambit/internal/rules"
	"github.com/mereki/gambit/internal/store"
)

// EventLog persists resolved plays. Satisfied by *store.Store; nil disables
// persistence.
type EventLog interface {
	CreateMatch(ctx context.Context, m store.MatchRecord) error
	AppendEvents(ctx context.Context, matchID string, ply int, events []core.Event) error
	TruncateFrom(ctx context.Context, matchID string, ply int) error
}

// ply is one committed resolution: the state after it and the events it
// produced.
type ply struct {
	state *board.State
	log   []core.Event
}

// Manager owns one match. Not safe for concurrent use; a match has a single
// writer by construction.
type Manager struct {
	id         string
	dispatcher *engine.Dispatcher
	rules      rules.RuleSet
	log        EventLog

	// history[0] is the initial position with an empty log; cursor points at
	// the current entry. Undo moves the cursor back without discarding the
	// forward entries, so redo is possible until the next Play diverges.
	history []ply
	cursor  int

	finished bool
	outcome  rules.Outcome
}

// Option configures a Manager.
type Option func(*Manager)

// WithDispatcher replaces the default dispatcher.
func WithDispatcher(d *engine.Dispatcher) Option {
	return func(m *Manager) { m.dispatcher = d }
}

// WithRules replaces the default ruleset.
func WithRules(r rules.RuleSet) Option {
	return func(m *Manager) { m.rules = r }
}

// WithEventLog enables durable persistence of every committed play.
func WithEventLog(l EventLog) Option {
	return func(m *Manager) { m.log = l }
}

// WithMatchID pins the match id instead of generating one. Used when
// resuming a persisted match.
func WithMatchID(id string) Option {
	return func(m *Manager) { m.id = id }
}

// New creates a match manager over an initial state. The default stack is a
// fresh dispatcher, the basic king-elimination ruleset, and no persistence.
func New(initial *board.State, opts ...Option) *Manager {
	m := &Manager{
		id:         uuid.Must(uuid.NewV7()).String(),
		dispatcher: engine.New(),
		rules:      rules.NewBasicRules("king"),
		history:    []ply{{state: initial}},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register writes the match header to the event log. No-op without a log.
func (m *Manager) Register(ctx context.Context, setupName, setupYAML string) error {
	if m.log == nil {
		return nil
	}
	st := m.State()
	return m.log.CreateMatch(ctx, store.MatchRecord{
		ID:      m.id,
		Width:   st.Width(),
		Height:  st.Height(),
		Ruleset: setupName,
		Setup:   setupYAML,
	})
}

// ID returns the match id.
func (m *Manager) ID() string { return m.id }

// State returns the current authoritative state. Callers must treat it as
// read-only.
func (m *Manager) State() *board.State { return m.history[m.cursor].state }

// Ply returns the number of committed plays at the cursor.
func (m *Manager) Ply() int { return m.cursor }

// Finished reports whether the match has ended, with the outcome.
func (m *Manager) Finished() (bool, rules.Outcome) { return m.finished, m.outcome }

// FullLog returns every committed event up to the cursor, in order.
func (m *Manager) FullLog() []core.Event {
	var out []core.Event
	for i := 1; i <= m.cursor; i++ {
		out = append(out, m.history[i].log...)
	}
	return out
}

// LegalMoves enumerates the legal moves for the side to play.
func (m *Manager) LegalMoves() []engine.Move {
	return m.rules.LegalMoves(m.State())
}

// Play validates and commits one move for the side to play. The accepted
// move resolves first; then either the game-over marker (when the ruleset
// reports a terminal state) or the turn rollover lifecycle resolves against
// the post-move state. Both resolutions land in the same ply.
func (m *Manager) Play(ctx context.Context, mv engine.Move) ([]core.Event, error) {
	if m.finished {
		return nil, fmt.Errorf("play: match %s is finished (%s)", m.id, m.outcome.Reason)
	}
	cur := m.State()
	if err := m.rules.CheckMove(cur, mv); err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}

	res, err := m.dispatcher.ResolveMove(cur, mv)
	if err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}

	state := res.State
	events := res.Log

	if outcome := m.rules.Outcome(state); outcome.Over {
		endRes, err := m.dispatcher.ResolvePackage(state, core.ActionPackage{
			Events:   []core.Event{core.NewGameOver(core.SourceManager, outcome.Winner.Opponent())},
			Fallback: core.ContinueChain,
		})
		if err != nil {
			return nil, fmt.Errorf("play: game over: %w", err)
		}
		state = endRes.State
		events = append(events, endRes.Log...)
		m.finished = true
		m.outcome = outcome
		slog.Info("match finished", "match", m.id, "winner", outcome.Winner.String(), "reason", outcome.Reason)
	} else {
		next := cur.CurrentPlayer().Opponent()
		turn := cur.TurnNumber()
		rollRes, err := m.dispatcher.ResolvePackage(state, core.ActionPackage{
			Events: []core.Event{
				core.NewTurnEnd(core.SourceManager, cur.CurrentPlayer(), turn),
				core.NewTurnAdvanced(core.SourceManager, next, turn+1),
				core.NewTurnStart(core.SourceManager, next, turn+1),
			},
			Fallback: core.ContinueChain,
		})
		if err != nil {
			return nil, fmt.Errorf("play: turn rollover: %w", err)
		}
		state = rollRes.State
		events = append(events, rollRes.Log...)
	}

	return events, m.commit(ctx, state, events)
}

// Timeout ends the match against the given player: a TimeExpired marker
// followed by GameOver, both manager-authored.
func (m *Manager) Timeout(ctx context.Context, player core.Color) ([]core.Event, error) {
	if m.finished {
		return nil, fmt.Errorf("timeout: match %s is finished (%s)", m.id, m.outcome.Reason)
	}
	res, err := m.dispatcher.ResolvePackage(m.State(), core.ActionPackage{
		Events: []core.Event{
			core.NewTimeExpired(core.SourceManager, player),
			core.NewGameOver(core.SourceManager, player),
		},
		Fallback: core.ContinueChain,
	})
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}
	m.finished = true
	m.outcome = rules.Outcome{Over: true, Winner: player.Opponent(), Reason: "time expired"}
	slog.Info("match timed out", "match", m.id, "loser", player.String())
	return res.Log, m.commit(ctx, res.State, res.Log)
}

// Simulate resolves a move against the current state without committing.
// The authoritative history is untouched; the caller gets the hypothetical
// final state and log.
func (m *Manager) Simulate(mv engine.Move) (*engine.Result, error) {
	if err := m.rules.CheckMove(m.State(), mv); err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	res, err := m.dispatcher.ResolveMove(m.State(), mv)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	return res, nil
}

// Undo rewinds one committed play. The forward history is kept until the
// next Play overwrites it. A finished match becomes playable again.
func (m *Manager) Undo(ctx context.Context) error {
	if m.cursor == 0 {
		return fmt.Errorf("undo: already at the initial position")
	}
	m.cursor--
	m.finished = false
	m.outcome = rules.Outcome{}
	if m.log != nil {
		if err := m.log.TruncateFrom(ctx, m.id, m.cursor+1); err != nil {
			return fmt.Errorf("undo: %w", err)
		}
	}
	return nil
}

// Redo replays one undone play, if the forward history is still intact.
func (m *Manager) Redo(ctx context.Context) error {
	if m.cursor >= len(m.history)-1 {
		return fmt.Errorf("redo: nothing to redo")
	}
	m.cursor++
	entry := m.history[m.cursor]
	if outcome := m.rules.Outcome(entry.state); outcome.Over {
		m.finished = true
		m.outcome = outcome
	}
	if m.log != nil {
		if err := m.log.AppendEvents(ctx, m.id, m.cursor, entry.log); err != nil {
			return fmt.Errorf("redo: %w", err)
		}
	}
	return nil
}

// commit appends the new ply, discarding any undone forward history, and
// persists it when a log is configured.
func (m *Manager) commit(ctx context.Context, state *board.State, events []core.Event) error {
	m.history = append(m.history[:m.cursor+1], ply{state: state, log: events})
	m.cursor++
	if m.log != nil {
		if err := m.log.AppendEvents(ctx, m.id, m.cursor, events); err != nil {
			return fmt.Errorf("commit ply %d: %w", m.cursor, err)
		}
	}
	return nil
}
