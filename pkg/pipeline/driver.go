// Package pipeline sequences the planner, architect, and coder stages as a
// finite-state machine with a bounded step budget.
package pipeline

import (
	"context"
	"strings"
	"time"

	"codebuilder/pkg/agent/llmerrors"
	"codebuilder/pkg/architect"
	"codebuilder/pkg/coder"
	"codebuilder/pkg/logx"
	"codebuilder/pkg/metrics"
	"codebuilder/pkg/planner"
	"codebuilder/pkg/workspace"
)

// Driver owns a run from prompt to generated project. Runs are synchronous
// and single-writer: one Run call at a time may target a given workspace.
type Driver struct {
	planner   *planner.Planner
	architect *architect.Architect
	coder     *coder.Coder
	ws        workspace.Workspace
	recorder  metrics.Recorder
	logger    *logx.Logger
	budget    int
}

// NewDriver creates a pipeline driver with the given step budget.
func NewDriver(p *planner.Planner, a *architect.Architect, c *coder.Coder, ws workspace.Workspace, recorder metrics.Recorder, budget int) *Driver {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &Driver{
		planner:   p,
		architect: a,
		coder:     c,
		ws:        ws,
		recorder:  recorder,
		logger:    logx.NewLogger("pipeline"),
		budget:    budget,
	}
}

// Run executes one full pipeline run. The returned RunResult is always
// populated, including on failure; err is non-nil exactly when
// result.Success is false.
func (d *Driver) Run(ctx context.Context, userPrompt string) (*RunResult, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return &RunResult{
			Success:     false,
			State:       StateFailed,
			FailedFiles: map[string]string{},
			ErrorKind:   ErrorKindInvalidPrompt,
		}, ErrEmptyPrompt
	}

	rs := NewRunState(userPrompt, d.budget)
	result := &RunResult{
		RunID:        rs.ID,
		FilesWritten: []string{},
		FailedFiles:  map[string]string{},
	}
	d.logger.Info("run %s started (budget %d steps)", rs.ID, rs.StepBudget)

	if err := d.execute(ctx, rs, result); err != nil {
		rs.fail()
		result.Success = false
		result.State = rs.State
		result.StepsUsed = rs.StepCount
		result.ErrorKind = ClassifyError(err)
		d.recorder.RunCompleted(metrics.OutcomeFailure)
		d.logger.Error("run %s failed in %s: %v", rs.ID, result.ErrorKind, err)
		return result, err
	}

	result.Success = true
	result.State = rs.State
	result.StepsUsed = rs.StepCount
	d.recorder.RunCompleted(metrics.OutcomeSuccess)
	d.logger.Info("run %s done: %d files written, %d failed, %d/%d steps",
		rs.ID, len(result.FilesWritten), len(result.FailedFiles), rs.StepCount, rs.StepBudget)
	return result, nil
}

func (d *Driver) execute(ctx context.Context, rs *RunState, result *RunResult) error {
	if err := d.ws.Init(); err != nil {
		return &WorkspaceError{Op: "init", Err: err}
	}

	// INIT -> PLANNED
	started := time.Now()
	tasks, err := d.planner.Plan(ctx, rs.UserPrompt)
	d.recorder.StageDuration(metrics.StagePlanning, time.Since(started))
	if err != nil {
		return err
	}
	rs.Tasks = tasks
	if err := rs.transition(StatePlanned); err != nil {
		return err
	}

	// PLANNED -> ARCHITECTED
	started = time.Now()
	layout, err := d.architect.Design(ctx, rs.Tasks)
	d.recorder.StageDuration(metrics.StageArchitecture, time.Since(started))
	if err != nil {
		return err
	}
	rs.Layout = layout
	if err := rs.transition(StateArchitected); err != nil {
		return err
	}

	// ARCHITECTED -> CODING -> DONE
	if err := rs.transition(StateCoding); err != nil {
		return err
	}
	started = time.Now()
	err = d.generateFiles(ctx, rs, result)
	d.recorder.StageDuration(metrics.StageCoding, time.Since(started))
	if err != nil {
		return err
	}

	return rs.transition(StateDone)
}

// generateFiles runs the coder over the layout in architect order. A file
// whose generation fails is recorded and skipped, except for rate limiting,
// which must surface so the run-level retry can see it. Each workspace write
// consumes one step; hitting the budget stops the run with everything
// written so far left on disk.
func (d *Driver) generateFiles(ctx context.Context, rs *RunState, result *RunResult) error {
	for _, spec := range rs.Layout {
		content, err := d.coder.Generate(ctx, spec, rs.Layout)
		if err != nil {
			if llmerrors.IsRateLimit(err) {
				return err
			}
			d.logger.Warn("run %s: skipping %s: %v", rs.ID, spec.Path, err)
			result.FailedFiles[spec.Path] = err.Error()
			continue
		}

		if err := rs.takeStep(); err != nil {
			return err
		}
		if err := d.ws.WriteFile(spec.Path, content); err != nil {
			if workspace.IsSandboxViolation(err) {
				return err
			}
			return &WorkspaceError{Op: "write " + spec.Path, Err: err}
		}
		result.FilesWritten = append(result.FilesWritten, spec.Path)
		d.recorder.FileWritten()
	}
	return nil
}
