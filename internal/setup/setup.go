// Package setup loads match setup documents: YAML describing the board
// size, the side to play, and the initial piece and tile placements.
//
// Documents are validated twice: a strict YAML decode rejects unknown
// fields, then the embedded CUE schema checks shapes and ranges. Only a
// document that passes both is handed to Build.
package setup

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/core"
)

//go:embed schema.cue
var schemaCUE string

// Position is a coordinate in document form.
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Coord converts to the engine coordinate type.
func (p Position) Coord() core.Coord { return core.Coord{X: p.X, Y: p.Y} }

// PiecePlacement puts one piece on the initial board. Abilities are applied
// in listed order, each layer wrapping the previous, so the last listed
// ability is the outermost layer.
type PiecePlacement struct {
	Name      string   `yaml:"name"`
	Owner     string   `yaml:"owner"`
	At        Position `yaml:"at"`
	Abilities []string `yaml:"abilities,omitempty"`
}

// TilePlacement overrides the default plain tile on one cell.
type TilePlacement struct {
	Name string   `yaml:"name"`
	At   Position `yaml:"at"`
}

// BoardSpec is the grid size.
type BoardSpec struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Document is one parsed setup file.
type Document struct {
	Name          string           `yaml:"name"`
	Board         BoardSpec        `yaml:"board"`
	CurrentPlayer string           `yaml:"current_player"`
	Pieces        []PiecePlacement `yaml:"pieces"`
	Tiles         []TilePlacement  `yaml:"tiles,omitempty"`
}

// Catalog is what Build needs from the entity catalog: construction by name
// plus ability wrapping.
type Catalog interface {
	core.EntityFactory
	Wrap(ability string, inner core.Piece) (core.Piece, error)
}

// Load reads and validates a setup document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load setup: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load setup %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a setup document from raw YAML.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse setup: %w", err)
	}

	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("parse setup: %w", err)
	}

	return &doc, nil
}

// validateSchema unifies the document with the embedded CUE schema. The
// document is re-decoded generically so CUE sees the raw shape, not the
// already-typed struct.
func validateSchema(data []byte) error {
	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("schema: compile: %w", err)
	}

	value := ctx.Encode(generic)
	if err := value.Err(); err != nil {
		return fmt.Errorf("schema: encode: %w", err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// Build constructs the initial board state from a validated document.
// Cells default to the catalog's plain tile; placements override tiles
// first, then pieces are created, wrapped and placed.
func Build(doc *Document, cat Catalog) (*board.State, error) {
	current, err := core.ParseColor(doc.CurrentPlayer)
	if err != nil {
		return nil, fmt.Errorf("build setup %s: %w", doc.Name, err)
	}

	var tileErr error
	st, err := board.NewState(doc.Board.Width, doc.Board.Height, current, func(c core.Coord) core.Tile {
		t, err := cat.NewTile("plain", c)
		if err != nil && tileErr == nil {
			tileErr = err
		}
		return t
	})
	if err != nil {
		return nil, fmt.Errorf("build setup %s: %w", doc.Name, err)
	}
	if tileErr != nil {
		return nil, fmt.Errorf("build setup %s: %w", doc.Name, tileErr)
	}

	for _, tp := range doc.Tiles {
		at := tp.At.Coord()
		if !st.InBounds(at) {
			return nil, fmt.Errorf("build setup %s: tile %q out of bounds at %s", doc.Name, tp.Name, at)
		}
		t, err := cat.NewTile(tp.Name, at)
		if err != nil {
			return nil, fmt.Errorf("build setup %s: %w", doc.Name, err)
		}
		if err := st.SetTile(t, at); err != nil {
			return nil, fmt.Errorf("build setup %s: %w", doc.Name, err)
		}
	}

	for _, pp := range doc.Pieces {
		owner, err := core.ParseColor(pp.Owner)
		if err != nil {
			return nil, fmt.Errorf("build setup %s: piece %q: %w", doc.Name, pp.Name, err)
		}
		at := pp.At.Coord()
		if !st.InBounds(at) {
			return nil, fmt.Errorf("build setup %s: piece %q out of bounds at %s", doc.Name, pp.Name, at)
		}
		p, err := cat.NewPiece(pp.Name, owner, at)
		if err != nil {
			return nil, fmt.Errorf("build setup %s: %w", doc.Name, err)
		}
		for _, ability := range pp.Abilities {
			p, err = cat.Wrap(ability, p)
			if err != nil {
				return nil, fmt.Errorf("build setup %s: piece %q: %w", doc.Name, pp.Name, err)
			}
		}
		if err := st.Place(p, at); err != nil {
			return nil, fmt.Errorf("build setup %s: %w", doc.Name, err)
		}
	}

	return st, nil
}
