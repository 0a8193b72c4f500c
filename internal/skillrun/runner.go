// Package skillrun implements the Step Runner (spec.md §4.4): executes
// one skill end-to-end — input validation, prerequisites, documentation
// preload, sequential steps with retry, verification, and rollback on
// failure — producing a SkillResult and a persisted JSON log.
package skillrun

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jorge-barreto/skillctl/internal/callback"
	"github.com/jorge-barreto/skillctl/internal/engineerr"
	"github.com/jorge-barreto/skillctl/internal/probes"
	"github.com/jorge-barreto/skillctl/internal/registry"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
	"github.com/jorge-barreto/skillctl/internal/ux"
)

// Runner drives one skill execution to completion.
type Runner struct {
	Registry   *registry.Registry
	Callback   callback.Callback
	BasePath   string // containment root for working directories
	OutputsDir string // where skill_logs/ is written
}

// ExecuteSkill is the Step Runner's public contract: resolve, validate,
// gate on prerequisites, run steps in order, verify, and persist a log
// regardless of outcome.
func (r *Runner) ExecuteSkill(ctx context.Context, skillName string, inputs map[string]any, dryRun bool) (*specmodel.SkillResult, error) {
	start := time.Now()

	skill, ok := r.Registry.Skill(skillName)
	if !ok {
		return nil, engineerr.New(engineerr.KindSkillNotFound, "skill %q not found; available: %s", skillName, joinSorted(r.Registry.SkillNames()))
	}

	resolvedInputs, err := validateAndDefault(*skill, inputs)
	if err != nil {
		return nil, err
	}

	result := &specmodel.SkillResult{SkillName: skill.Name, Version: skill.Version, Outputs: map[string]any{}}

	for _, p := range skill.PreRequisites {
		res := probes.CheckPrereq(p)
		if !res.Passed {
			msg := p.ErrorMessage
			if msg == "" {
				msg = res.Message
			}
			prereqErr := engineerr.New(engineerr.KindPrereqFailed, "%s", msg)
			result.Success = false
			result.Error = prereqErr.Error()
			result.TotalDurationMs = time.Since(start).Milliseconds()
			r.persist(skill, resolvedInputs, dryRun, nil, nil, result, start)
			return result, prereqErr
		}
	}

	if len(skill.Context7Required) > 0 && r.Callback != nil && !dryRun {
		if err := r.Callback.UseContext7(ctx, skill.Context7Required); err != nil {
			fmt.Printf("warning: context7 preload failed: %v\n", err)
		}
	}

	if dryRun {
		result.Success = true
		result.StepsCompleted = []string{"(dry run)"}
		result.TotalDurationMs = time.Since(start).Milliseconds()
		r.persist(skill, resolvedInputs, true, nil, nil, result, start)
		return result, nil
	}

	var logged []loggedStep
	total := len(skill.Steps)
	for i, step := range skill.Steps {
		ux.StepHeader(i, total, step.ID, step.Type)
		stepStart := time.Now()
		stepResult, retries, err := r.runStepWithRetry(ctx, step, resolvedInputs)
		duration := time.Since(stepStart).Milliseconds()

		if err != nil {
			// Guard/config-level failure (MissingInput, PathEscape,
			// UnknownStepType, CallbackMissing, Timeout): treated as a
			// step failure, never propagated raw to the caller.
			stepResult = &specmodel.StepResult{StepID: step.ID, Success: false, Error: err.Error()}
		}
		stepResult.DurationMs = duration
		stepResult.RetriesUsed = retries

		status := "passed"
		if !stepResult.Success {
			status = "failed"
		}
		logged = append(logged, loggedStep{
			ID: step.ID, Type: step.Type, Status: status, DurationMs: duration,
			Output: truncateOutput(stepResult.Output), Error: stepResult.Error, RetriesUsed: retries,
		})

		if !stepResult.Success {
			ux.StepFail(i, step.ID, stepResult.Error)
			result.StepsFailed = append(result.StepsFailed, step.ID)
			result.Error = stepResult.Error
			runRollback(skill.Rollback, result.StepsCompleted, resolvedInputs, r.BasePath)
			result.Success = false
			result.TotalDurationMs = time.Since(start).Milliseconds()
			r.persist(skill, resolvedInputs, false, logged, nil, result, start)
			return result, nil
		}
		ux.StepComplete(i, time.Duration(duration)*time.Millisecond)
		result.StepsCompleted = append(result.StepsCompleted, step.ID)
	}

	verification := &verificationLog{Status: "passed"}
	for _, p := range skill.Verification {
		env := buildEnv(specmodel.Step{})
		res := probes.CheckVerify(ctx, p, resolvedInputs, r.BasePath, env)
		if !res.Passed {
			probeCopy := p
			verification = &verificationLog{VerificationFailed: &probeCopy}
			vErr := engineerr.New(engineerr.KindVerificationFailed, "verification %q failed: %s", p.Tag(), res.Message)
			result.Success = false
			result.Error = vErr.Error()
			result.TotalDurationMs = time.Since(start).Milliseconds()
			r.persist(skill, resolvedInputs, false, logged, verification, result, start)
			return result, nil
		}
	}

	result.Success = true
	result.TotalDurationMs = time.Since(start).Milliseconds()
	r.persist(skill, resolvedInputs, false, logged, verification, result, start)
	return result, nil
}

// runStepWithRetry dispatches step, retrying up to step.Retry additional
// times (total attempts = 1 + retry) on failure.
func (r *Runner) runStepWithRetry(ctx context.Context, step specmodel.Step, vars map[string]any) (*specmodel.StepResult, int, error) {
	attempts := step.Retry + 1
	var lastResult *specmodel.StepResult
	var lastErr error
	used := 0
	for attempt := 0; attempt < attempts; attempt++ {
		used = attempt
		if attempt > 0 {
			ux.StepRetry(step.ID, attempt, attempts-1)
		}
		lastResult, lastErr = dispatchStep(ctx, step, vars, r.BasePath, r.Callback)
		if lastErr == nil && lastResult.Success {
			return lastResult, used, nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return lastResult, used, lastErr
}

// persist writes the execution log and stamps result.LogFile. A write
// failure is reported to stderr — it never masks the skill's own
// success/failure outcome, since the log is a side record of it.
func (r *Runner) persist(skill *specmodel.Skill, inputs map[string]any, dryRun bool, steps []loggedStep, verification *verificationLog, result *specmodel.SkillResult, now time.Time) {
	path, err := writeLog(r.OutputsDir, skill, inputs, dryRun, steps, verification, result, now)
	if err != nil {
		fmt.Printf("warning: failed to write skill log: %v\n", err)
		return
	}
	result.LogFile = path
}

// validateAndDefault checks required inputs and enum constraints, then
// overlays defaults for absent optional inputs, without mutating the
// caller's map.
func validateAndDefault(skill specmodel.Skill, inputs map[string]any) (map[string]any, error) {
	out := specmodel.CloneInputs(inputs)
	for name, spec := range skill.Inputs {
		val, present := out[name]
		if !present {
			if spec.Required {
				return nil, engineerr.New(engineerr.KindInputInvalid, "skill %q: missing required input %q", skill.Name, name)
			}
			if spec.Default != nil {
				out[name] = spec.Default
			}
			continue
		}
		if len(spec.Enum) > 0 && !enumContains(spec.Enum, val) {
			return nil, engineerr.New(engineerr.KindInputInvalid, "skill %q: input %q value %v not in enum %v", skill.Name, name, val, spec.Enum)
		}
	}
	return out, nil
}

func enumContains(enum []interface{}, val any) bool {
	for _, e := range enum {
		if fmt.Sprint(e) == fmt.Sprint(val) {
			return true
		}
	}
	return false
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
