package pipeline

import "fmt"

// State is a pipeline run state.
type State string

// Run states. FAILED is reachable from every non-terminal state.
const (
	StateInit        State = "INIT"
	StatePlanned     State = "PLANNED"
	StateArchitected State = "ARCHITECTED"
	StateCoding      State = "CODING"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// Transitions defines the allowed state transitions for a run.
var Transitions = map[State][]State{
	StateInit:        {StatePlanned, StateFailed},
	StatePlanned:     {StateArchitected, StateFailed},
	StateArchitected: {StateCoding, StateFailed},
	StateCoding:      {StateDone, StateFailed},
	StateDone:        {},
	StateFailed:      {},
}

// IsTerminal reports whether s permits no further transitions.
func (s State) IsTerminal() bool {
	return len(Transitions[s]) == 0
}

// ValidateTransition checks that from → to is an allowed transition.
func ValidateTransition(from, to State) error {
	for _, next := range Transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("invalid state transition %s -> %s", from, to)
}
