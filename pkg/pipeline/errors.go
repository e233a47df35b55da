package pipeline

import (
	"errors"
	"fmt"

	"codebuilder/pkg/agent/llmerrors"
	"codebuilder/pkg/architect"
	"codebuilder/pkg/planner"
	"codebuilder/pkg/workspace"
)

// ErrorKind classifies why a run failed. Empty means the run succeeded.
type ErrorKind string

// Failure classifications reported in RunResult.
const (
	ErrorKindNone          ErrorKind = ""
	ErrorKindInvalidPrompt ErrorKind = "InvalidPrompt"
	ErrorKindPlanning      ErrorKind = "PlanningError"
	ErrorKindArchitecture  ErrorKind = "ArchitectureError"
	ErrorKindStepBudget    ErrorKind = "StepBudgetExceeded"
	ErrorKindSandbox       ErrorKind = "SandboxViolation"
	ErrorKindRateLimit     ErrorKind = "RateLimitSignal"
	ErrorKindWorkspace     ErrorKind = "WorkspaceError"
	ErrorKindProvider      ErrorKind = "ProviderError"
)

// ErrEmptyPrompt rejects a blank user prompt before any state is created.
var ErrEmptyPrompt = errors.New("user prompt cannot be empty")

// StepBudgetExceededError indicates the run consumed its full step budget
// before completing. Files written before the limit remain on disk.
type StepBudgetExceededError struct {
	Budget    int
	LastState State
}

func (e *StepBudgetExceededError) Error() string {
	return fmt.Sprintf("step budget of %d exceeded in state %s", e.Budget, e.LastState)
}

// WorkspaceError marks a local filesystem failure during a run, so it is not
// reported as an upstream provider failure.
type WorkspaceError struct {
	Op  string
	Err error
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("workspace %s failed: %v", e.Op, e.Err)
}

func (e *WorkspaceError) Unwrap() error { return e.Err }

// ClassifyError maps a run error to its RunResult error kind.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	var budgetErr *StepBudgetExceededError
	var planErr *planner.PlanningError
	var archErr *architect.ArchitectureError
	var wsErr *WorkspaceError

	switch {
	case errors.Is(err, ErrEmptyPrompt):
		return ErrorKindInvalidPrompt
	case errors.As(err, &budgetErr):
		return ErrorKindStepBudget
	case errors.As(err, &planErr):
		return ErrorKindPlanning
	case errors.As(err, &archErr):
		return ErrorKindArchitecture
	case workspace.IsSandboxViolation(err):
		return ErrorKindSandbox
	case errors.As(err, &wsErr):
		return ErrorKindWorkspace
	case llmerrors.IsRateLimit(err):
		return ErrorKindRateLimit
	default:
		return ErrorKindProvider
	}
}
