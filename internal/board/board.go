// Package board implements the grid and the immutable game-state snapshot.
//
// A State is mutated only while it is run-owned: the transition function
// clones before every change, so once a State has been returned from a
// resolution it is never written again. Cloning is a full deep copy — no
// piece or tile instance is shared between a State and its clone.
package board

import (
	"fmt"

	"github.com/mereki/gambit/internal/core"
)

// cell holds at most one piece reference and exactly one tile value.
type cell struct {
	piece core.Piece
	tile  core.Tile
}

// State is one snapshot of a match: the grid, whose turn it is, and the
// turn counter. Instances are created by explicit construction (initial
// board) or by the transition function (one new instance per canonical
// event), never mutated after they leave a resolution.
type State struct {
	width, height int
	cells         []cell // row-major, index = y*width + x
	current       core.Color
	turn          int
}

// NewState builds an empty grid of the given size. Every cell receives a
// tile from defaultTile; current/turn seed the match at its first turn.
func NewState(width, height int, current core.Color, defaultTile func(core.Coord) core.Tile) (*State, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("board: invalid size %dx%d", width, height)
	}
	s := &State{
		width:   width,
		height:  height,
		cells:   make([]cell, width*height),
		current: current,
		turn:    1,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := core.Coord{X: x, Y: y}
			t := defaultTile(c)
			t.SetPos(c)
			s.cells[s.index(c)].tile = t
		}
	}
	return s, nil
}

func (s *State) index(c core.Coord) int {
	return c.Y*s.width + c.X
}

// Width implements core.Snapshot.
func (s *State) Width() int { return s.width }

// Height implements core.Snapshot.
func (s *State) Height() int { return s.height }

// InBounds implements core.Snapshot.
func (s *State) InBounds(c core.Coord) bool {
	return c.X >= 0 && c.X < s.width && c.Y >= 0 && c.Y < s.height
}

// PieceAt implements core.Snapshot. Returns nil for empty or out-of-bounds
// cells.
func (s *State) PieceAt(c core.Coord) core.Piece {
	if !s.InBounds(c) {
		return nil
	}
	return s.cells[s.index(c)].piece
}

// TileAt implements core.Snapshot.
func (s *State) TileAt(c core.Coord) core.Tile {
	if !s.InBounds(c) {
		return nil
	}
	return s.cells[s.index(c)].tile
}

// PieceByID implements core.Snapshot. Scans in row-major order; piece ids
// are unique per state.
func (s *State) PieceByID(id string) core.Piece {
	for i := range s.cells {
		if p := s.cells[i].piece; p != nil && p.PieceID() == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer implements core.Snapshot.
func (s *State) CurrentPlayer() core.Color { return s.current }

// TurnNumber implements core.Snapshot.
func (s *State) TurnNumber() int { return s.turn }

// Pieces returns every piece on the board in row-major discovery order.
// This order is what breaks listener priority ties, so it must be stable.
func (s *State) Pieces() []core.Piece {
	var out []core.Piece
	for i := range s.cells {
		if p := s.cells[i].piece; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Tiles returns every tile in row-major order.
func (s *State) Tiles() []core.Tile {
	out := make([]core.Tile, 0, len(s.cells))
	for i := range s.cells {
		out = append(out, s.cells[i].tile)
	}
	return out
}

// Place puts a piece on its cell. The piece's stored position is updated to
// the cell it occupies.
func (s *State) Place(p core.Piece, at core.Coord) error {
	if !s.InBounds(at) {
		return fmt.Errorf("board: place %s out of bounds at %s", p.PieceID(), at)
	}
	if s.cells[s.index(at)].piece != nil {
		return fmt.Errorf("board: cell %s already occupied", at)
	}
	p.SetPos(at)
	s.cells[s.index(at)].piece = p
	return nil
}

// Remove clears a cell's piece reference. No-op for empty cells.
func (s *State) Remove(at core.Coord) {
	if !s.InBounds(at) {
		return
	}
	s.cells[s.index(at)].piece = nil
}

// Relocate moves the piece at from onto to, keeping the stored position in
// step with the occupied cell. The destination must be empty.
func (s *State) Relocate(from, to core.Coord) error {
	if !s.InBounds(from) || !s.InBounds(to) {
		return fmt.Errorf("board: relocate %s->%s out of bounds", from, to)
	}
	p := s.cells[s.index(from)].piece
	if p == nil {
		return fmt.Errorf("board: relocate from empty cell %s", from)
	}
	if s.cells[s.index(to)].piece != nil {
		return fmt.Errorf("board: relocate into occupied cell %s", to)
	}
	s.cells[s.index(from)].piece = nil
	p.SetPos(to)
	s.cells[s.index(to)].piece = p
	return nil
}

// Exchange swaps the pieces of two cells. Either cell may be empty.
func (s *State) Exchange(a, b core.Coord) error {
	if !s.InBounds(a) || !s.InBounds(b) {
		return fmt.Errorf("board: exchange %s<->%s out of bounds", a, b)
	}
	pa := s.cells[s.index(a)].piece
	pb := s.cells[s.index(b)].piece
	s.cells[s.index(a)].piece = pb
	s.cells[s.index(b)].piece = pa
	if pa != nil {
		pa.SetPos(b)
	}
	if pb != nil {
		pb.SetPos(a)
	}
	return nil
}

// SetTile installs a tile on its cell, replacing the previous one.
func (s *State) SetTile(t core.Tile, at core.Coord) error {
	if !s.InBounds(at) {
		return fmt.Errorf("board: set tile out of bounds at %s", at)
	}
	t.SetPos(at)
	s.cells[s.index(at)].tile = t
	return nil
}

// SetTurn updates the side to move and the turn counter.
func (s *State) SetTurn(current core.Color, turn int) {
	s.current = current
	s.turn = turn
}

// Clone deep-copies the state. Every piece (including each ability layer
// and its counters) and every tile is cloned; the result shares zero
// mutable references with the receiver.
func (s *State) Clone() *State {
	out := &State{
		width:   s.width,
		height:  s.height,
		cells:   make([]cell, len(s.cells)),
		current: s.current,
		turn:    s.turn,
	}
	for i := range s.cells {
		if p := s.cells[i].piece; p != nil {
			out.cells[i].piece = p.Clone()
		}
		if t := s.cells[i].tile; t != nil {
			out.cells[i].tile = t.Clone()
		}
	}
	return out
}

// Validate checks the structural invariant that every occupied cell's piece
// position equals the cell's coordinate. Used by tests after transitions.
func (s *State) Validate() error {
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			c := core.Coord{X: x, Y: y}
			if p := s.cells[s.index(c)].piece; p != nil && p.Pos() != c {
				return fmt.Errorf("board: piece %s stored at %s but believes %s", p.PieceID(), c, p.Pos())
			}
		}
	}
	return nil
}
