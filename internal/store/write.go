package store

import (
	"context"
	"fmt"

	"github.com/mereki/gambit/internal/core"
)

// MatchRecord is the durable header of one match.
type MatchRecord struct {
	ID        string
	Width     int
	Height    int
	Ruleset   string
	Setup     string // the YAML setup document the match was built from
	CreatedAt string
}

// CreateMatch inserts a match header. Uses ON CONFLICT(id) DO NOTHING for
// idempotency, so re-registering a match is a silent no-op.
func (s *Store) CreateMatch(ctx context.Context, m MatchRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (id, width, height, ruleset, setup)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		m.ID,
		m.Width,
		m.Height,
		m.Ruleset,
		m.Setup,
	)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// AppendEvents persists one ply's canonical log. Rows are keyed by their
// position within the ply: one ply may hold several resolutions (the
// accepted play plus the turn rollover), each restarting seq at 1, so seq
// alone is not unique. All rows are written in a single transaction; each
// insert uses ON CONFLICT DO NOTHING on (match_id, ply, idx), so
// re-appending an already-persisted ply is idempotent.
//
// Events must be stamped (non-empty ID, non-zero Seq); the store never
// assigns identity.
func (s *Store) AppendEvents(ctx context.Context, matchID string, ply int, events []core.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append events: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for idx, ev := range events {
		if ev.ID == "" || ev.Seq == 0 {
			return fmt.Errorf("append events: event %q/%d is unstamped", ev.ID, ev.Seq)
		}
		payloadJSON, err := marshalPayload(ev)
		if err != nil {
			return fmt.Errorf("append events: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events
			(match_id, ply, idx, seq, id, source, actor, player_initiated, kind, note, payload)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(match_id, ply, idx) DO NOTHING
		`,
			matchID,
			ply,
			idx,
			ev.Seq,
			ev.ID,
			ev.Source,
			ev.Actor.String(),
			ev.PlayerInitiated,
			ev.Kind.String(),
			ev.Note,
			payloadJSON,
		)
		if err != nil {
			return fmt.Errorf("append events: insert seq %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append events: commit: %w", err)
	}
	return nil
}

// TruncateFrom removes every event at or after the given ply. Used by undo:
// the log is rewound to the position before the undone resolution.
func (s *Store) TruncateFrom(ctx context.Context, matchID string, ply int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM events WHERE match_id = ? AND ply >= ?
	`, matchID, ply)
	if err != nil {
		return fmt.Errorf("truncate from ply %d: %w", ply, err)
	}
	return nil
}
