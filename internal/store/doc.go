// Package store provides SQLite-backed durable storage for match event logs.
//
// The store is an append-only log with two tables:
//   - matches: one row per match (board size, setup document, ruleset)
//   - events: the canonical event log, keyed by (match_id, ply, idx)
//
// Ordering uses logical position only: ply (which committed play within the
// match) and idx (the event's position within its ply). A ply may span
// several resolutions — the accepted play plus the turn rollover — each
// restarting seq at 1, which is why seq cannot key a row. Timestamps exist
// for humans and never participate in ordering, so a replayed log is
// byte-identical to the original regardless of wall time.
//
// Writes are idempotent: every insert uses ON CONFLICT DO NOTHING on the
// logical key, so re-appending an already-persisted ply is a no-op.
//
// Event payloads are stored as RFC 8785 canonical JSON and decoded with
// json.Number so integers survive the round trip exactly; the payload text
// therefore re-hashes to the stored event id, which Replay verifies.
//
// Database configuration:
//   - WAL mode for concurrent reads during writes
//   - synchronous=NORMAL (balance durability/performance)
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
