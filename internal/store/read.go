package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mereki/gambit/internal/core"
)

// LogEntry is one persisted canonical event with its position in the match.
type LogEntry struct {
	Ply   int
	Event core.Event
}

// GetMatch retrieves a match header by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetMatch(ctx context.Context, id string) (MatchRecord, error) {
	var m MatchRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, width, height, ruleset, setup, created_at
		FROM matches
		WHERE id = ?
	`, id).Scan(&m.ID, &m.Width, &m.Height, &m.Ruleset, &m.Setup, &m.CreatedAt)
	if err != nil {
		return MatchRecord{}, err
	}
	return m, nil
}

// ListMatches returns every match header, ordered by id for determinism.
// Returns an empty slice (not nil) when the store holds no matches.
func (s *Store) ListMatches(ctx context.Context) ([]MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, width, height, ruleset, setup, created_at
		FROM matches
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		var m MatchRecord
		if err := rows.Scan(&m.ID, &m.Width, &m.Height, &m.Ruleset, &m.Setup, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	if matches == nil {
		matches = []MatchRecord{}
	}
	return matches, nil
}

// ReadLog returns a match's full canonical log in logical order:
// ORDER BY ply ASC, idx ASC. Identity columns (id, seq) and authorship
// columns are restored onto each decoded event.
//
// The factory resolves replacement entities carried by Transform and
// TileChanged payloads. Returns an empty slice (not nil) for an unknown or
// empty match.
func (s *Store) ReadLog(ctx context.Context, matchID string, factory core.EntityFactory) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ply, seq, id, source, actor, player_initiated, kind, note, payload
		FROM events
		WHERE match_id = ?
		ORDER BY ply ASC, idx ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		entry, err := scanLogEntry(rows, factory)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log: %w", err)
	}

	if entries == nil {
		entries = []LogEntry{}
	}
	return entries, nil
}

// LastPly returns the highest ply recorded for a match, or 0 when the match
// has no events. Used to resume appending after a restart.
func (s *Store) LastPly(ctx context.Context, matchID string) (int, error) {
	var ply int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(ply), 0) FROM events WHERE match_id = ?
	`, matchID).Scan(&ply)
	if err != nil {
		return 0, fmt.Errorf("last ply: %w", err)
	}
	return ply, nil
}

// CountEvents returns the number of persisted events for a match.
func (s *Store) CountEvents(ctx context.Context, matchID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM events WHERE match_id = ?
	`, matchID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// scanLogEntry scans one events row and decodes its payload.
func scanLogEntry(rows *sql.Rows, factory core.EntityFactory) (LogEntry, error) {
	var (
		ply             int
		seq             int64
		id              string
		source          string
		actor           string
		playerInitiated bool
		kindText        string
		note            string
		payloadJSON     string
	)
	if err := rows.Scan(&ply, &seq, &id, &source, &actor, &playerInitiated, &kindText, &note, &payloadJSON); err != nil {
		return LogEntry{}, fmt.Errorf("scan event: %w", err)
	}

	kind, err := core.ParseKind(kindText)
	if err != nil {
		return LogEntry{}, fmt.Errorf("scan event %s: %w", id, err)
	}
	actorColor, err := core.ParseColor(actor)
	if err != nil {
		return LogEntry{}, fmt.Errorf("scan event %s: %w", id, err)
	}
	payload, err := unmarshalPayload(payloadJSON)
	if err != nil {
		return LogEntry{}, fmt.Errorf("scan event %s: %w", id, err)
	}

	ev, err := core.DecodeEvent(kind, payload, factory)
	if err != nil {
		return LogEntry{}, fmt.Errorf("scan event %s: %w", id, err)
	}
	ev.ID = id
	ev.Seq = seq
	ev.Source = source
	ev.Actor = actorColor
	ev.PlayerInitiated = playerInitiated
	ev.Note = note

	return LogEntry{Ply: ply, Event: ev}, nil
}
