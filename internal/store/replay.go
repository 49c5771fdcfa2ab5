package store

import (
	"context"
	"fmt"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/core"
	"github.com/mereki/gambit/internal/engine"
)

// ReplayResult is the outcome of re-deriving a match from its log.
type ReplayResult struct {
	Match MatchRecord
	State *board.State
	Log   []LogEntry
}

// Replay rebuilds a match's final state by re-applying its canonical log to
// the given initial state, in logical order. No listener runs: the log
// already is the resolved truth, so replay uses the transition function
// alone and must land on the same state the live resolutions produced.
//
// Each event's content-addressed id is recomputed from the decoded payload
// and checked against the stored id, so a corrupted or tampered row fails
// loudly instead of replaying into a divergent state.
func (s *Store) Replay(ctx context.Context, matchID string, initial *board.State, factory core.EntityFactory) (*ReplayResult, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", matchID, err)
	}

	entries, err := s.ReadLog(ctx, matchID, factory)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", matchID, err)
	}

	cur := initial
	for _, entry := range entries {
		ev := entry.Event
		want, err := core.EventID(ev.Source, ev.Kind, core.Payload(ev), ev.Seq)
		if err != nil {
			return nil, fmt.Errorf("replay %s: rehash event seq %d: %w", matchID, ev.Seq, err)
		}
		if want != ev.ID {
			return nil, fmt.Errorf("replay %s: event ply %d seq %d: stored id %s, recomputed %s",
				matchID, entry.Ply, ev.Seq, ev.ID, want)
		}

		next, err := engine.Apply(ev, cur)
		if err != nil {
			return nil, fmt.Errorf("replay %s: apply ply %d seq %d: %w", matchID, entry.Ply, ev.Seq, err)
		}
		cur = next
	}

	return &ReplayResult{Match: match, State: cur, Log: entries}, nil
}
