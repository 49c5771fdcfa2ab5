// Package harness executes YAML match scenarios end to end: it builds the
// initial board from an inline setup document, drives the manager through a
// flow of moves and control steps, and checks assertions against the
// resulting canonical log and final board.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	setup:
//	  name: scenario_name
//	  board: { width: 8, height: 8 }
//	  current_player: white
//	  pieces:
//	    - name: pawn
//	      owner: white
//	      at: { x: 0, y: 6 }
//	      abilities: [shielded]
//	  tiles:
//	    - name: promotion
//	      at: { x: 0, y: 7 }
//	flow:
//	  - move: { from: { x: 0, y: 6 }, to: { x: 0, y: 7 } }
//	  - timeout: { player: black }
//	assertions:
//	  - type: log_contains
//	    kind: transform
//	  - type: final_board
//	    at: { x: 0, y: 7 }
//	    piece: queen
//	    owner: white
//
// # Assertion Types
//
//   - log_contains: an event of the given kind appears in the log
//   - log_order: events of the listed kinds appear in order
//   - log_count: events of the given kind appear exactly N times
//   - final_board: a cell holds the expected piece, or is empty
//
// # Deterministic Execution
//
// Every scenario runs against a fresh in-memory SQLite store with a match
// id pinned to the scenario name, so two runs of the same scenario produce
// byte-identical traces. After the flow, the harness replays the persisted
// log from scratch and fails the run if the replayed board diverges from
// the live one; the persistence and replay path is exercised by every
// scenario for free.
//
// Golden trace comparison (RunWithGolden) snapshots the kind, seq and step
// of every canonical event and diffs it against a checked-in fixture.
package harness
