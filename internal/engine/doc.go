// Package engine implements the gambit resolution dispatcher.
//
// The dispatcher is the heart of the system: it turns a proposed action
// package into a deterministic sequence of canonical state-changing events,
// under an open set of listener extensions (piece abilities, terrain
// effects) that may observe, veto, replace, or chain off any event.
//
// ARCHITECTURE:
//
// Single-threaded worklist loop:
// A resolution processes all events synchronously in one goroutine over an
// explicit worklist (not call-stack recursion), so pipeline depth is bounded
// by memory, not stack size. This ensures:
//   - Predictable listener evaluation order
//   - Reproducible applied-event logs
//   - Simple reasoning about causality
//
// Resolution flow:
//  1. An action package seeds the worklist in package order
//  2. The loop pops one pending event at a time
//  3. The listener collection is recomputed fresh from the current state
//     and run in priority order; a before-hook may veto or replace the event
//  4. An unaltered event is applied by the pure transition function, which
//     clones the board and re-resolves entities by id — one new state per
//     canonical event
//  5. After-hooks run against the new state; chained events are pushed onto
//     the front of the worklist so a reaction fully resolves before the next
//     originally-pending event
//
// Determinism: identical (state, package, listener set) inputs always
// produce an identical (final state, log) output. Every event is stamped
// with a per-resolution logical sequence number and a content-addressed id.
// No randomness, no concurrency, no wall clocks.
//
// Isolation: a resolution never mutates its input state. Simulations (AI
// lookahead, what-if evaluation) call the same entry points against their
// own snapshot and discard the result; no locking is needed because every
// run owns its clones end-to-end.
package engine
