// Package workflow implements the Phase Orchestrator (spec.md §4.5):
// drives a workflow's phases through the Step Runner, evaluates
// conditions, honors checkpoints, persists/restores workflow state, and
// updates the project-context file on completion.
package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jorge-barreto/skillctl/internal/callback"
	"github.com/jorge-barreto/skillctl/internal/engineerr"
	"github.com/jorge-barreto/skillctl/internal/registry"
	"github.com/jorge-barreto/skillctl/internal/skillrun"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
	"github.com/jorge-barreto/skillctl/internal/state"
	"github.com/jorge-barreto/skillctl/internal/ux"
)

// Orchestrator drives one workflow execution to completion, pause, or
// failure, delegating each phase's skill to Runner.
type Orchestrator struct {
	Registry   *registry.Registry
	Runner     *skillrun.Runner
	Callback   callback.Callback
	OutputsDir string
}

// ExecuteWorkflow is the Phase Orchestrator's public contract.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, workflowName string, inputs map[string]any, dryRun, resume bool) (*specmodel.WorkflowResult, error) {
	start := time.Now()

	wf, ok := o.Registry.Workflow(workflowName)
	if !ok {
		return nil, engineerr.New(engineerr.KindWorkflowNotFound, "workflow %q not found; available: %s", workflowName, joinSorted(o.Registry.WorkflowNames()))
	}

	workflowInputs, err := overlayDefaults(*wf, inputs)
	if err != nil {
		return nil, err
	}

	currentIdx := 0
	phaseOutputs := map[string]specmodel.PhaseOutput{}
	var phasesCompleted, phasesFailed, phasesSkipped []string
	startedAt := start.UTC().Format(time.RFC3339)

	if resume {
		loaded, err := state.LoadWorkflowState(o.OutputsDir, wf.Name)
		if err != nil {
			return nil, fmt.Errorf("loading workflow state: %w", err)
		}
		if loaded != nil && loaded.Status == specmodel.StatusPaused {
			currentIdx = loaded.CurrentPhaseIndex
			if loaded.PhaseOutputs != nil {
				phaseOutputs = loaded.PhaseOutputs
			}
			phasesCompleted = loaded.PhasesCompleted
			phasesFailed = loaded.PhasesFailed
			startedAt = loaded.StartedAt
			merged := specmodel.CloneInputs(workflowInputs)
			for k, v := range loaded.Inputs {
				if _, given := inputs[k]; !given {
					merged[k] = v // fresh values override restored ones
				}
			}
			workflowInputs = merged
		}
	}

	total := len(wf.Phases)

	if dryRun {
		fmt.Printf("\n%sDry run — %d phases:%s\n\n", ux.Bold, total, ux.Reset)
		for i := currentIdx; i < total; i++ {
			p := wf.Phases[i]
			fmt.Printf("  %s%d.%s %s%s%s (skill: %s)\n", ux.Cyan, i+1, ux.Reset, ux.Bold, p.Name, ux.Reset, p.Skill)
		}
		fmt.Println()
		return &specmodel.WorkflowResult{Success: true, WorkflowName: wf.Name, Version: wf.Version, Status: specmodel.StatusCompleted}, nil
	}

	saveState := func(status string, idx int, errMsg string) error {
		st := &specmodel.WorkflowState{
			WorkflowName: wf.Name, Version: wf.Version, Status: status,
			CurrentPhaseIndex: idx, Inputs: workflowInputs,
			PhasesCompleted: phasesCompleted, PhasesFailed: phasesFailed,
			PhaseOutputs: phaseOutputs, StartedAt: startedAt, Error: errMsg,
		}
		return state.SaveWorkflowState(o.OutputsDir, st)
	}

	finalize := func(status string, resultErr error) (*specmodel.WorkflowResult, error) {
		errMsg := ""
		if resultErr != nil {
			errMsg = resultErr.Error()
		}
		if saveErr := saveState(status, currentIdx, errMsg); saveErr != nil {
			fmt.Printf("warning: failed to save workflow state: %v\n", saveErr)
		}
		ux.ResumeHint(wf.Name)
		return &specmodel.WorkflowResult{
			Success: false, WorkflowName: wf.Name, Version: wf.Version, Status: status,
			PhasesCompleted: phasesCompleted, PhasesFailed: phasesFailed, PhasesSkipped: phasesSkipped,
			TotalDurationMs: time.Since(start).Milliseconds(),
			StateFile:       state.WorkflowStatePath(o.OutputsDir, wf.Name),
			Error:           errMsg,
		}, resultErr
	}

	for currentIdx < total {
		i := currentIdx
		phase := wf.Phases[i]

		if ctx.Err() != nil {
			return finalize(specmodel.StatusCancelled, engineerr.New(engineerr.KindCancelled, "workflow %q cancelled at phase %q", wf.Name, phase.Name))
		}

		if !evalCondition(phase.Condition, workflowInputs, phaseOutputs) {
			ux.PhaseSkip(i, phase.Name)
			phasesSkipped = append(phasesSkipped, phase.Name)
			currentIdx++
			continue
		}

		ux.PhaseHeader(i, total, phase.Name, phase.Skill)
		phaseInputs := overlayPhaseInputs(workflowInputs, phase.Inputs)

		skillResult, skillErr := o.Runner.ExecuteSkill(ctx, phase.Skill, phaseInputs, false)
		success := skillErr == nil && skillResult != nil && skillResult.Success

		var outputs map[string]any
		if skillResult != nil {
			outputs = skillResult.Outputs
		}
		phaseOutputs[phase.Name] = specmodel.PhaseOutput{Success: success, Outputs: outputs}

		if !success {
			errMsg := "phase failed"
			if skillErr != nil {
				errMsg = skillErr.Error()
			} else if skillResult != nil {
				errMsg = skillResult.Error
			}
			ux.PhaseFail(i, phase.Name, errMsg)
			phasesFailed = append(phasesFailed, phase.Name)

			switch phase.EffectiveOnFailure() {
			case specmodel.OnFailureSkipRemaining:
				currentIdx = total // break the loop, fall through to aggregate
				continue
			case specmodel.OnFailureContinue:
				currentIdx++
				continue
			default: // stop
				return finalize(specmodel.StatusFailed, fmt.Errorf("phase %q failed: %s", phase.Name, errMsg))
			}
		}

		ux.PhaseComplete(i, phase.Name)
		phasesCompleted = append(phasesCompleted, phase.Name)
		currentIdx++

		if phase.Checkpoint {
			if err := saveState(specmodel.StatusPaused, currentIdx, ""); err != nil {
				return finalize(specmodel.StatusFailed, fmt.Errorf("saving checkpoint state: %w", err))
			}
			message := phase.CheckpointMessage
			if message == "" {
				message = fmt.Sprintf("phase %q complete — continue workflow %q?", phase.Name, wf.Name)
			}
			ux.Checkpoint(message, state.WorkflowStatePath(o.OutputsDir, wf.Name))

			proceed := true
			if o.Callback != nil {
				var err error
				proceed, err = o.Callback.Checkpoint(ctx, message)
				if err != nil {
					proceed = false
				}
			}
			if !proceed {
				ux.ResumeHint(wf.Name)
				return &specmodel.WorkflowResult{
					Success: false, WorkflowName: wf.Name, Version: wf.Version, Status: specmodel.StatusPaused,
					PhasesCompleted: phasesCompleted, PhasesFailed: phasesFailed, PhasesSkipped: phasesSkipped,
					CurrentPhase:    phase.Name,
					TotalDurationMs: time.Since(start).Milliseconds(),
					StateFile:       state.WorkflowStatePath(o.OutputsDir, wf.Name),
				}, nil
			}
		}
	}

	success := len(phasesFailed) == 0
	status := specmodel.StatusCompleted
	if !success {
		status = specmodel.StatusFailed
	}

	result := &specmodel.WorkflowResult{
		Success: success, WorkflowName: wf.Name, Version: wf.Version, Status: status,
		PhasesCompleted: phasesCompleted, PhasesFailed: phasesFailed, PhasesSkipped: phasesSkipped,
		TotalDurationMs: time.Since(start).Milliseconds(),
	}

	if wf.OnComplete.ShouldUpdateContext() {
		projectPath := projectPathFrom(workflowInputs)
		if err := state.UpdateProjectContext(projectPath, wf.Name, result, time.Now()); err != nil {
			fmt.Printf("warning: %v\n", err)
		}
	}

	if success {
		if err := state.ClearWorkflowState(o.OutputsDir, wf.Name); err != nil {
			fmt.Printf("warning: failed to clear workflow state: %v\n", err)
		}
		ux.Success(fmt.Sprintf("workflow %q complete", wf.Name))
	} else {
		if err := saveState(status, currentIdx, ""); err != nil {
			fmt.Printf("warning: failed to save workflow state: %v\n", err)
		}
		result.StateFile = state.WorkflowStatePath(o.OutputsDir, wf.Name)
		ux.ResumeHint(wf.Name)
	}

	return result, nil
}

// projectPathFrom mirrors original_source/workflow_controller.py's
// _update_project_context: target_dir wins over project_path, and "."
// is the fallback when neither is set.
func projectPathFrom(inputs map[string]any) string {
	if v, ok := inputs["target_dir"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if v, ok := inputs["project_path"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "."
}

func overlayPhaseInputs(workflowInputs map[string]any, phaseInputs map[string]any) map[string]any {
	out := specmodel.CloneInputs(workflowInputs)
	for k, v := range phaseInputs {
		out[k] = v
	}
	return out
}

func overlayDefaults(wf specmodel.Workflow, inputs map[string]any) (map[string]any, error) {
	out := specmodel.CloneInputs(inputs)
	for name, spec := range wf.Inputs {
		val, present := out[name]
		if !present {
			if spec.Required {
				return nil, engineerr.New(engineerr.KindInputInvalid, "workflow %q: missing required input %q", wf.Name, name)
			}
			if spec.Default != nil {
				out[name] = spec.Default
			}
			continue
		}
		if len(spec.Enum) > 0 {
			ok := false
			for _, e := range spec.Enum {
				if fmt.Sprint(e) == fmt.Sprint(val) {
					ok = true
					break
				}
			}
			if !ok {
				return nil, engineerr.New(engineerr.KindInputInvalid, "workflow %q: input %q value %v not in enum %v", wf.Name, name, val, spec.Enum)
			}
		}
	}
	return out, nil
}

func joinSorted(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	if len(sorted) == 0 {
		return "(none)"
	}
	out := sorted[0]
	for _, n := range sorted[1:] {
		out += ", " + n
	}
	return out
}
