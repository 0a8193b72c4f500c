package skillrun

import (
	"time"

	"github.com/jorge-barreto/skillctl/internal/guard"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
	"github.com/jorge-barreto/skillctl/internal/state"
)

// loggedStep is one entry of the persisted log's "steps" array (§6);
// distinct from specmodel.StepResult because the log captures "status"
// and a truncated output rather than a bare Success bool.
type loggedStep struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	DurationMs  int64  `json:"duration_ms"`
	Output      string `json:"output"`
	Error       string `json:"error,omitempty"`
	RetriesUsed int    `json:"retries_used"`
}

// verificationLog records whether verification passed, or which probe
// failed it.
type verificationLog struct {
	Status            string          `json:"status,omitempty"`
	VerificationFailed *specmodel.Probe `json:"verification_failed,omitempty"`
}

// executionLog is the on-disk shape written to outputs/skill_logs/, per
// spec.md §6 — richer than the SkillResult returned to the caller.
type executionLog struct {
	Timestamp       string         `json:"timestamp"`
	Skill           string         `json:"skill"`
	Version         string         `json:"version"`
	Autonomy        string         `json:"autonomy"`
	Inputs          map[string]any `json:"inputs"`
	DryRun          bool           `json:"dry_run"`
	Steps           []loggedStep   `json:"steps"`
	Verification    *verificationLog `json:"verification,omitempty"`
	Success         bool           `json:"success"`
	TotalDurationMs int64          `json:"total_duration_ms"`
	StepsCompleted  []string       `json:"steps_completed"`
	StepsFailed     []string       `json:"steps_failed"`
	Error           string         `json:"error,omitempty"`
}

// writeLog renders and persists the execution log, returning the path it
// was written to.
func writeLog(outputsDir string, skill *specmodel.Skill, inputs map[string]any, dryRun bool,
	steps []loggedStep, verification *verificationLog, result *specmodel.SkillResult, now time.Time) (string, error) {

	entry := executionLog{
		Timestamp:       now.UTC().Format(time.RFC3339),
		Skill:           skill.Name,
		Version:         skill.Version,
		Autonomy:        skill.Autonomy,
		Inputs:          guard.Redact(inputs),
		DryRun:          dryRun,
		Steps:           steps,
		Verification:    verification,
		Success:         result.Success,
		TotalDurationMs: result.TotalDurationMs,
		StepsCompleted:  result.StepsCompleted,
		StepsFailed:     result.StepsFailed,
		Error:           result.Error,
	}

	data, err := specmodel.MarshalIndent(entry)
	if err != nil {
		return "", err
	}
	path := state.SkillLogPath(outputsDir, skill.Name, now)
	if err := state.WriteFileAtomic(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
