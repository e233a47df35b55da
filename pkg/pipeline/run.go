package pipeline

import (
	"github.com/google/uuid"

	"codebuilder/pkg/architect"
)

// RunState is the mutable state of one pipeline run. It is owned by the
// driver; nothing outside the pipeline mutates it.
type RunState struct {
	ID         uuid.UUID
	State      State
	StepCount  int
	StepBudget int
	UserPrompt string
	Tasks      []string
	Layout     []architect.FileSpec
}

// NewRunState creates the INIT state for a run.
func NewRunState(userPrompt string, stepBudget int) *RunState {
	return &RunState{
		ID:         uuid.New(),
		State:      StateInit,
		StepBudget: stepBudget,
		UserPrompt: userPrompt,
	}
}

// takeStep consumes one unit of the step budget. The step counter never
// passes the budget: the step that would exceed it fails instead.
func (r *RunState) takeStep() error {
	if r.StepCount+1 > r.StepBudget {
		return &StepBudgetExceededError{Budget: r.StepBudget, LastState: r.State}
	}
	r.StepCount++
	return nil
}

// transition moves the run to the next state, consuming one step.
func (r *RunState) transition(to State) error {
	if err := ValidateTransition(r.State, to); err != nil {
		return err
	}
	if err := r.takeStep(); err != nil {
		return err
	}
	r.State = to
	return nil
}

// fail marks the run FAILED without consuming budget. FAILED is reachable
// from any non-terminal state and is not itself a unit of work.
func (r *RunState) fail() {
	if !r.State.IsTerminal() {
		r.State = StateFailed
	}
}

// RunResult is the outcome of one pipeline run. File content is never
// returned; callers read the workspace to inspect the generated project.
type RunResult struct {
	RunID        uuid.UUID
	Success      bool
	State        State
	StepsUsed    int
	FilesWritten []string
	// FailedFiles maps each file the coder could not produce to the reason.
	// A non-empty map does not by itself make the run unsuccessful.
	FailedFiles map[string]string
	ErrorKind   ErrorKind
}
