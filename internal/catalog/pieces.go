// Package catalog supplies the concrete piece, tile and ability types.
//
// The engine never imports this package: it sees only the capability
// contracts in core. The catalog is wired in at the edges — setup building
// boards, the store rebuilding Transform payloads, the harness and CLI
// constructing matches — through the Registry, which implements
// core.EntityFactory.
package catalog

import (
	"fmt"

	"github.com/mereki/gambit/internal/core"
)

// moveGen enumerates geometric move candidates for a piece. Generation here
// is deliberately simple — higher-level legality is the RuleSet's job, and
// a full generator is an external collaborator of the engine.
type moveGen func(p core.Piece, s core.Snapshot) []core.Coord

// piece is the concrete board piece. It carries its own usage counters;
// Clone copies them so mutating a clone never touches the original
// snapshot's piece.
type piece struct {
	id           string
	name         string
	owner        core.Color
	pos          core.Coord
	value        int
	movesMade    int
	capturesMade int
	gen          moveGen
}

// pieceID derives a deterministic identity from the catalog name, owner and
// creation square ("white-pawn-a7"). No global counter: two processes
// building the same setup assign identical ids, which keeps resolution
// output content-addressable.
func pieceID(name string, owner core.Color, pos core.Coord) string {
	return fmt.Sprintf("%s-%s-%c%d", owner, name, 'a'+rune(pos.X), pos.Y+1)
}

func newPiece(name string, owner core.Color, pos core.Coord, value int, gen moveGen) *piece {
	return &piece{
		id:    pieceID(name, owner, pos),
		name:  name,
		owner: owner,
		pos:   pos,
		value: value,
		gen:   gen,
	}
}

func (p *piece) PieceID() string               { return p.id }
func (p *piece) Name() string                  { return p.name }
func (p *piece) Owner() core.Color             { return p.owner }
func (p *piece) Pos() core.Coord               { return p.pos }
func (p *piece) SetPos(c core.Coord)           { p.pos = c }
func (p *piece) Value() int                    { return p.value }
func (p *piece) MovesMade() int                { return p.movesMade }
func (p *piece) CapturesMade() int             { return p.capturesMade }
func (p *piece) RecordMove()                   { p.movesMade++ }
func (p *piece) RecordCapture()                { p.capturesMade++ }
func (p *piece) Listener() core.Listener       { return nil }
func (p *piece) Moves(s core.Snapshot) []core.Coord {
	if p.gen == nil {
		return nil
	}
	return p.gen(p, s)
}

func (p *piece) Clone() core.Piece {
	cp := *p
	return &cp
}

// pawnMoves: one step forward onto an empty cell, one step diagonally
// forward onto an enemy. White advances +y, black -y.
func pawnMoves(p core.Piece, s core.Snapshot) []core.Coord {
	dir := 1
	if p.Owner() == core.Black {
		dir = -1
	}
	var out []core.Coord
	fwd := p.Pos().Add(0, dir)
	if s.InBounds(fwd) && s.PieceAt(fwd) == nil {
		out = append(out, fwd)
	}
	for _, dx := range []int{-1, 1} {
		diag := p.Pos().Add(dx, dir)
		if !s.InBounds(diag) {
			continue
		}
		if occ := s.PieceAt(diag); occ != nil && occ.Owner() != p.Owner() {
			out = append(out, diag)
		}
	}
	return out
}

// rayMoves slides along each direction until the edge, a blocker, or an
// enemy (inclusive).
func rayMoves(dirs [][2]int) moveGen {
	return func(p core.Piece, s core.Snapshot) []core.Coord {
		var out []core.Coord
		for _, d := range dirs {
			for c := p.Pos().Add(d[0], d[1]); s.InBounds(c); c = c.Add(d[0], d[1]) {
				occ := s.PieceAt(c)
				if occ == nil {
					out = append(out, c)
					continue
				}
				if occ.Owner() != p.Owner() {
					out = append(out, c)
				}
				break
			}
		}
		return out
	}
}

// stepMoves jumps to each offset, landing on empty or enemy cells.
func stepMoves(offsets [][2]int) moveGen {
	return func(p core.Piece, s core.Snapshot) []core.Coord {
		var out []core.Coord
		for _, d := range offsets {
			c := p.Pos().Add(d[0], d[1])
			if !s.InBounds(c) {
				continue
			}
			if occ := s.PieceAt(c); occ == nil || occ.Owner() != p.Owner() {
				out = append(out, c)
			}
		}
		return out
	}
}

var (
	orthogonals = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonals   = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	royals      = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightJumps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)
