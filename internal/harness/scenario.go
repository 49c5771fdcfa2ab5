package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mereki/gambit/internal/setup"
)

// Scenario defines one match test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file and
	// pins the match id, so it must be stable.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup is the inline initial position, in the same form as a
	// standalone setup document.
	Setup setup.Document `yaml:"setup"`

	// Flow contains the steps to drive the match through.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final log and board.
	// Supported types: log_contains, log_order, log_count, final_board.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one step of a scenario flow. Exactly one field is set.
type FlowStep struct {
	// Move plays a move for the side to play.
	Move *MoveStep `yaml:"move,omitempty"`

	// Timeout expires the named player's clock, ending the match.
	Timeout *TimeoutStep `yaml:"timeout,omitempty"`

	// Undo rewinds one committed play; Redo replays one undone play.
	Undo bool `yaml:"undo,omitempty"`
	Redo bool `yaml:"redo,omitempty"`
}

// MoveStep is a move intent in document form.
type MoveStep struct {
	From setup.Position `yaml:"from"`
	To   setup.Position `yaml:"to"`
}

// TimeoutStep names the player whose clock expired.
type TimeoutStep struct {
	Player string `yaml:"player"`
}

// Assertion validates the canonical log or the final board.
type Assertion struct {
	// Type selects the assertion:
	// - "log_contains": an event of Kind appears in the log
	// - "log_order": events of the listed Kinds appear in order
	// - "log_count": events of Kind appear exactly Count times
	// - "final_board": the cell At holds (or is empty of) the given piece
	Type string `yaml:"type"`

	// Kind is the event kind ("move", "capture", ...) for the log assertions.
	Kind string `yaml:"kind,omitempty"`

	// Kinds is the expected order for log_order. Intervening events of other
	// kinds are allowed.
	Kinds []string `yaml:"kinds,omitempty"`

	// Count is the exact occurrence count for log_count.
	Count int `yaml:"count,omitempty"`

	// At locates the cell for final_board.
	At setup.Position `yaml:"at,omitempty"`

	// Piece and Owner describe the expected occupant for final_board; the
	// piece name matches the innermost catalog name. Empty expects a vacant
	// cell instead.
	Piece string `yaml:"piece,omitempty"`
	Owner string `yaml:"owner,omitempty"`
	Empty bool   `yaml:"empty,omitempty"`
}

// Assertion type constants.
const (
	AssertLogContains = "log_contains"
	AssertLogOrder    = "log_order"
	AssertLogCount    = "log_count"
	AssertFinalBoard  = "final_board"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently skipping a step.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Setup.Board.Width <= 0 || s.Setup.Board.Height <= 0 {
		return fmt.Errorf("setup.board must have a positive width and height")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		set := 0
		if step.Move != nil {
			set++
		}
		if step.Timeout != nil {
			set++
		}
		if step.Undo {
			set++
		}
		if step.Redo {
			set++
		}
		if set != 1 {
			return fmt.Errorf("flow[%d]: exactly one of move, timeout, undo, redo must be set", i)
		}
		if step.Timeout != nil && step.Timeout.Player == "" {
			return fmt.Errorf("flow[%d]: timeout requires a player", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertLogContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for log_contains", index)
		}
	case AssertLogOrder:
		if len(a.Kinds) < 2 {
			return fmt.Errorf("assertions[%d]: at least two kinds are required for log_order", index)
		}
	case AssertLogCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for log_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for log_count", index)
		}
	case AssertFinalBoard:
		if !a.Empty && a.Piece == "" {
			return fmt.Errorf("assertions[%d]: final_board requires piece (or empty: true)", index)
		}
		if a.Empty && a.Piece != "" {
			return fmt.Errorf("assertions[%d]: final_board cannot expect both a piece and empty", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
