// Package specmodel defines the declarative shapes loaded from SKILLS/ and
// WORKFLOWS/: skills, steps, workflows, phases, and the result/state types
// that the engine produces while executing them.
package specmodel

import "encoding/json"

// Autonomy levels a skill may declare. The engine validates the value but
// never branches dispatch behavior on it — it is informational, surfaced
// in logs and `skillctl info`.
const (
	AutonomyDelegado  = "delegado"
	AutonomyCoPilot   = "co-pilot"
	AutonomyAsistente = "asistente"
)

var validAutonomy = map[string]bool{
	AutonomyDelegado:  true,
	AutonomyCoPilot:   true,
	AutonomyAsistente: true,
}

// ValidAutonomy reports whether level is one of the three recognized values.
func ValidAutonomy(level string) bool {
	return validAutonomy[level]
}

// InputSpec describes one named input accepted by a Skill or Workflow.
type InputSpec struct {
	Type     string        `json:"type"`
	Required bool          `json:"required,omitempty"`
	Default  interface{}   `json:"default,omitempty"`
	Enum     []interface{} `json:"enum,omitempty"`
}

// Probe is the declarative shape shared by pre_requisites and verification
// entries. Check is used for prereqs, Type for verification — both tags
// are accepted so either key resolves the probe kind.
type Probe struct {
	Check        string   `json:"check,omitempty"`
	Type         string   `json:"type,omitempty"`
	Args         []string `json:"args,omitempty"`
	Cmd          string   `json:"cmd,omitempty"`
	Path         string   `json:"path,omitempty"`
	ExpectExit   int      `json:"expect_exit,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// Tag returns the probe's dispatch tag, accepting either "check" (prereqs)
// or "type" (verification) depending on which was set.
func (p Probe) Tag() string {
	if p.Check != "" {
		return p.Check
	}
	return p.Type
}

// Step is one unit of work within a Skill's sequential step list.
type Step struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Cmd     string            `json:"cmd,omitempty"`
	WorkDir string            `json:"working_dir,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Timeout int               `json:"timeout,omitempty"` // seconds, default 300
	Retry   int               `json:"retry,omitempty"`

	MCPServer string                 `json:"mcp_server,omitempty"`
	MCPTool   string                 `json:"mcp_tool,omitempty"`
	MCPArgs   map[string]interface{} `json:"mcp_args,omitempty"`

	CheckpointMessage string `json:"checkpoint_message,omitempty"`
	Description       string `json:"description,omitempty"`
}

// EffectiveTimeout returns the step's configured timeout, defaulting to 300s.
func (s Step) EffectiveTimeout() int {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return 300
}

// Skill is the immutable, loaded shape of one SKILLS/<name>/skill.json.
type Skill struct {
	Name              string               `json:"name"`
	Version           string               `json:"version"`
	Description       string               `json:"description,omitempty"`
	Autonomy          string               `json:"autonomy"`
	Inputs            map[string]InputSpec `json:"inputs,omitempty"`
	PreRequisites     []Probe              `json:"pre_requisites,omitempty"`
	Context7Required  []string             `json:"context7_required,omitempty"`
	Steps             []Step               `json:"steps"`
	Verification      []Probe              `json:"verification,omitempty"`
	Rollback          []Step               `json:"rollback,omitempty"`

	// SourceDir is stamped by the registry loader at load time: the
	// directory skill.json was read from. The Step Runner does not read
	// it; working directories resolve against the runner's BasePath.
	// Not part of the on-disk JSON shape.
	SourceDir string `json:"-"`
}

// StepByID returns the step with the given id, or false if absent.
func (s *Skill) StepByID(id string) (Step, bool) {
	for _, st := range s.Steps {
		if st.ID == id {
			return st, true
		}
	}
	return Step{}, false
}

// Condition gates whether a Phase runs. Unknown Type values evaluate true
// (permissive default) per spec.
type Condition struct {
	Type  string      `json:"type"`
	Key   string      `json:"key,omitempty"`
	Value interface{} `json:"value,omitempty"`
	Path  string      `json:"path,omitempty"`
}

// OnFailure policies for a failed phase.
const (
	OnFailureStop          = "stop"
	OnFailureSkipRemaining = "skip_remaining"
	OnFailureContinue      = "continue"
)

// Phase is one skill invocation within a Workflow.
type Phase struct {
	Name              string               `json:"name"`
	Skill             string               `json:"skill"`
	Inputs            map[string]any       `json:"inputs,omitempty"`
	Condition         *Condition           `json:"condition,omitempty"`
	Checkpoint        bool                 `json:"checkpoint,omitempty"`
	CheckpointMessage string               `json:"checkpoint_message,omitempty"`
	OnFailure         string               `json:"on_failure,omitempty"`
}

// EffectiveOnFailure defaults an empty OnFailure to "stop".
func (p Phase) EffectiveOnFailure() string {
	if p.OnFailure == "" {
		return OnFailureStop
	}
	return p.OnFailure
}

// OnComplete controls post-workflow side effects.
type OnComplete struct {
	UpdateContext *bool `json:"update_context,omitempty"`
}

// ShouldUpdateContext defaults UpdateContext to true when unset.
func (o OnComplete) ShouldUpdateContext() bool {
	if o.UpdateContext == nil {
		return true
	}
	return *o.UpdateContext
}

// Workflow is the immutable, loaded shape of one WORKFLOWS/<name>.json.
type Workflow struct {
	Name        string               `json:"name"`
	Version     string               `json:"version"`
	Description string               `json:"description,omitempty"`
	Inputs      map[string]InputSpec `json:"inputs,omitempty"`
	Phases      []Phase              `json:"phases"`
	OnComplete  OnComplete           `json:"on_complete,omitempty"`

	// SourcePath is stamped by the registry loader: the file the
	// workflow was read from.
	SourcePath string `json:"-"`
}

// PhaseIndex returns the index of the named phase, or -1 if absent.
func (w *Workflow) PhaseIndex(name string) int {
	for i, p := range w.Phases {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// StepResult is the outcome of one dispatched step.
type StepResult struct {
	StepID      string `json:"step_id"`
	Success     bool   `json:"success"`
	Output      string `json:"output"`
	DurationMs  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
	RetriesUsed int    `json:"retries_used"`
}

// SkillResult is the outcome of one complete skill execution.
type SkillResult struct {
	Success         bool           `json:"success"`
	SkillName       string         `json:"skill_name"`
	Version         string         `json:"version"`
	StepsCompleted  []string       `json:"steps_completed"`
	StepsFailed     []string       `json:"steps_failed"`
	TotalDurationMs int64          `json:"total_duration_ms"`
	LogFile         string         `json:"log_file,omitempty"`
	Error           string         `json:"error,omitempty"`
	Outputs         map[string]any `json:"outputs,omitempty"`
}

// WorkflowStatus values.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusPaused     = "paused"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// PhaseOutput records one phase's result for condition evaluation and resume.
type PhaseOutput struct {
	Success bool           `json:"success"`
	Outputs map[string]any `json:"outputs,omitempty"`
}

// WorkflowResult is the outcome of one complete (or paused) workflow run.
type WorkflowResult struct {
	Success          bool     `json:"success"`
	WorkflowName     string   `json:"workflow_name"`
	Version          string   `json:"version"`
	Status           string   `json:"status"`
	PhasesCompleted  []string `json:"phases_completed"`
	PhasesFailed     []string `json:"phases_failed"`
	PhasesSkipped    []string `json:"phases_skipped"`
	CurrentPhase     string   `json:"current_phase,omitempty"`
	TotalDurationMs  int64    `json:"total_duration_ms"`
	StateFile        string   `json:"state_file,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// WorkflowState is the persisted record that allows a paused or failed
// workflow to be resumed.
type WorkflowState struct {
	WorkflowName      string                 `json:"workflow_name"`
	Version           string                 `json:"version"`
	Status            string                 `json:"status"`
	CurrentPhaseIndex int                    `json:"current_phase_index"`
	Inputs            map[string]any         `json:"inputs"`
	PhasesCompleted   []string               `json:"phases_completed"`
	PhasesFailed      []string               `json:"phases_failed"`
	PhaseOutputs      map[string]PhaseOutput `json:"phase_outputs"`
	StartedAt         string                 `json:"started_at"`
	UpdatedAt         string                 `json:"updated_at"`
	Error             string                 `json:"error,omitempty"`
}

// Clone deep-copies inputs so callers can mutate without aliasing state
// already written to disk.
func CloneInputs(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// MarshalIndent is the one place the engine serializes to disk, so every
// persisted file (logs, state) gets identical formatting.
func MarshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
