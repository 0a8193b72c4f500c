package workflow

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jorge-barreto/skillctl/internal/callback"
	"github.com/jorge-barreto/skillctl/internal/engineerr"
	"github.com/jorge-barreto/skillctl/internal/registry"
	"github.com/jorge-barreto/skillctl/internal/skillrun"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func noopSkill(name string, cmd string) specmodel.Skill {
	return specmodel.Skill{
		Name: name, Version: "1.0.0",
		Steps: []specmodel.Step{{ID: "run", Type: "bash", Cmd: cmd}},
	}
}

func newTestOrchestrator(t *testing.T, base string, cb callback.Callback) *Orchestrator {
	t.Helper()
	reg := registry.New(base, nil)
	if _, err := reg.Load(); err != nil {
		t.Fatalf("loading registry: %v", err)
	}
	runner := &skillrun.Runner{Registry: reg, BasePath: base, OutputsDir: filepath.Join(base, "outputs")}
	return &Orchestrator{Registry: reg, Runner: runner, Callback: cb, OutputsDir: filepath.Join(base, "outputs")}
}

func TestExecuteWorkflow_HappyPath(t *testing.T) {
	base := t.TempDir()
	writeJSON(t, filepath.Join(base, "SKILLS", "build", "skill.json"), noopSkill("build", "true"))
	writeJSON(t, filepath.Join(base, "SKILLS", "deploy", "skill.json"), noopSkill("deploy", "true"))
	writeJSON(t, filepath.Join(base, "WORKFLOWS", "release.json"), specmodel.Workflow{
		Name: "release", Version: "1.0.0",
		Phases: []specmodel.Phase{{Name: "build-phase", Skill: "build"}, {Name: "deploy-phase", Skill: "deploy"}},
	})

	o := newTestOrchestrator(t, base, nil)
	result, err := o.ExecuteWorkflow(context.Background(), "release", map[string]any{}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.Status != specmodel.StatusCompleted {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.PhasesCompleted) != 2 {
		t.Fatalf("PhasesCompleted = %v", result.PhasesCompleted)
	}
	if _, err := os.Stat(filepath.Join(base, "outputs", "workflow_state", "release_state.json")); !os.IsNotExist(err) {
		t.Fatal("state file should be cleared after a successful run")
	}
}

func TestExecuteWorkflow_UnknownWorkflow(t *testing.T) {
	base := t.TempDir()
	o := newTestOrchestrator(t, base, nil)
	_, err := o.ExecuteWorkflow(context.Background(), "ghost", nil, false, false)
	if !engineerr.Is(err, engineerr.KindWorkflowNotFound) {
		t.Fatalf("expected WorkflowNotFound, got %v", err)
	}
}

func TestExecuteWorkflow_StopOnFailureRetainsState(t *testing.T) {
	base := t.TempDir()
	writeJSON(t, filepath.Join(base, "SKILLS", "build", "skill.json"), noopSkill("build", "true"))
	writeJSON(t, filepath.Join(base, "SKILLS", "broken", "skill.json"), noopSkill("broken", "exit 1"))
	writeJSON(t, filepath.Join(base, "WORKFLOWS", "release.json"), specmodel.Workflow{
		Name: "release", Version: "1.0.0",
		Phases: []specmodel.Phase{{Name: "build-phase", Skill: "build"}, {Name: "broken-phase", Skill: "broken"}},
	})

	o := newTestOrchestrator(t, base, nil)
	result, err := o.ExecuteWorkflow(context.Background(), "release", map[string]any{}, false, false)
	if err == nil {
		t.Fatal("expected an error for a stopping failure")
	}
	if result.Status != specmodel.StatusFailed {
		t.Fatalf("Status = %q", result.Status)
	}
	if _, statErr := os.Stat(filepath.Join(base, "outputs", "workflow_state", "release_state.json")); statErr != nil {
		t.Fatal("state file must be retained after a failed run")
	}
}

func TestExecuteWorkflow_SkipRemainingStopsLoopAndFailsAggregate(t *testing.T) {
	base := t.TempDir()
	writeJSON(t, filepath.Join(base, "SKILLS", "broken", "skill.json"), noopSkill("broken", "exit 1"))
	writeJSON(t, filepath.Join(base, "SKILLS", "never", "skill.json"), noopSkill("never", "touch "+filepath.Join(base, "should-not-run")))
	writeJSON(t, filepath.Join(base, "WORKFLOWS", "release.json"), specmodel.Workflow{
		Name: "release", Version: "1.0.0",
		Phases: []specmodel.Phase{
			{Name: "broken-phase", Skill: "broken", OnFailure: specmodel.OnFailureSkipRemaining},
			{Name: "never-phase", Skill: "never"},
		},
	})

	o := newTestOrchestrator(t, base, nil)
	result, err := o.ExecuteWorkflow(context.Background(), "release", map[string]any{}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Fatal("aggregate success must be false when a phase failed, even with skip_remaining")
	}
	if _, statErr := os.Stat(filepath.Join(base, "should-not-run")); statErr == nil {
		t.Fatal("skip_remaining must prevent the subsequent phase from running")
	}
}

func TestExecuteWorkflow_ConditionSkipsPhase(t *testing.T) {
	base := t.TempDir()
	marker := filepath.Join(base, "ran")
	writeJSON(t, filepath.Join(base, "SKILLS", "conditional", "skill.json"), noopSkill("conditional", "touch "+marker))
	writeJSON(t, filepath.Join(base, "WORKFLOWS", "release.json"), specmodel.Workflow{
		Name: "release", Version: "1.0.0",
		Phases: []specmodel.Phase{{
			Name: "conditional-phase", Skill: "conditional",
			Condition: &specmodel.Condition{Type: "input_truthy", Key: "should_run"},
		}},
	})

	o := newTestOrchestrator(t, base, nil)
	result, err := o.ExecuteWorkflow(context.Background(), "release", map[string]any{"should_run": false}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.PhasesSkipped) != 1 {
		t.Fatalf("expected phase to be skipped, got %+v", result)
	}
	if _, statErr := os.Stat(marker); statErr == nil {
		t.Fatal("skipped phase must not run its skill")
	}
}

func TestExecuteWorkflow_CheckpointPausesAndResumes(t *testing.T) {
	base := t.TempDir()
	writeJSON(t, filepath.Join(base, "SKILLS", "first", "skill.json"), noopSkill("first", "true"))
	writeJSON(t, filepath.Join(base, "SKILLS", "second", "skill.json"), noopSkill("second", "true"))
	writeJSON(t, filepath.Join(base, "WORKFLOWS", "release.json"), specmodel.Workflow{
		Name: "release", Version: "1.0.0",
		Phases: []specmodel.Phase{
			{Name: "first-phase", Skill: "first", Checkpoint: true, CheckpointMessage: "ok?"},
			{Name: "second-phase", Skill: "second"},
		},
	})

	o := newTestOrchestrator(t, base, nil) // no callback: auto-pass checkpoints... so use declining fake below
	decline := &decliningCallback{}
	o.Callback = decline

	result, err := o.ExecuteWorkflow(context.Background(), "release", map[string]any{}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != specmodel.StatusPaused {
		t.Fatalf("expected paused status, got %+v", result)
	}
	if len(result.PhasesCompleted) != 1 || result.PhasesCompleted[0] != "first-phase" {
		t.Fatalf("PhasesCompleted = %v", result.PhasesCompleted)
	}

	// Resume with an accepting callback.
	o.Callback = &acceptingCallback{}
	result2, err := o.ExecuteWorkflow(context.Background(), "release", map[string]any{}, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if !result2.Success || result2.Status != specmodel.StatusCompleted {
		t.Fatalf("expected successful resume, got %+v", result2)
	}
}

type decliningCallback struct{}

func (decliningCallback) UseContext7(ctx context.Context, libs []string) error { return nil }
func (decliningCallback) ExecuteStep(ctx context.Context, step specmodel.Step, inputs map[string]any) (*specmodel.StepResult, error) {
	return nil, nil
}
func (decliningCallback) Checkpoint(ctx context.Context, message string) (bool, error) { return false, nil }
func (decliningCallback) MCPCall(ctx context.Context, server, tool string, args map[string]any) (any, error) {
	return nil, nil
}

type acceptingCallback struct{}

func (acceptingCallback) UseContext7(ctx context.Context, libs []string) error { return nil }
func (acceptingCallback) ExecuteStep(ctx context.Context, step specmodel.Step, inputs map[string]any) (*specmodel.StepResult, error) {
	return nil, nil
}
func (acceptingCallback) Checkpoint(ctx context.Context, message string) (bool, error) { return true, nil }
func (acceptingCallback) MCPCall(ctx context.Context, server, tool string, args map[string]any) (any, error) {
	return nil, nil
}
