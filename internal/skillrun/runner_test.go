package skillrun

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jorge-barreto/skillctl/internal/callback"
	"github.com/jorge-barreto/skillctl/internal/engineerr"
	"github.com/jorge-barreto/skillctl/internal/registry"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

// fakeCallback records calls and returns configurable results, in the
// same hand-rolled-fake style the teacher uses for its Dispatcher mock.
type fakeCallback struct {
	mu             sync.Mutex
	checkpointOK   bool
	executeStepErr error
	executeResult  *specmodel.StepResult
	mcpValue       any
	mcpErr         error
	context7Calls  [][]string
}

func (f *fakeCallback) UseContext7(ctx context.Context, libs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.context7Calls = append(f.context7Calls, libs)
	return nil
}

func (f *fakeCallback) ExecuteStep(ctx context.Context, step specmodel.Step, inputs map[string]any) (*specmodel.StepResult, error) {
	if f.executeStepErr != nil {
		return nil, f.executeStepErr
	}
	return f.executeResult, nil
}

func (f *fakeCallback) Checkpoint(ctx context.Context, message string) (bool, error) {
	return f.checkpointOK, nil
}

func (f *fakeCallback) MCPCall(ctx context.Context, server, tool string, args map[string]any) (any, error) {
	return f.mcpValue, f.mcpErr
}

func writeSkill(t *testing.T, base string, skill specmodel.Skill) {
	t.Helper()
	dir := filepath.Join(base, "SKILLS", skill.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(skill)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skill.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestRunner(t *testing.T, base string, cb *fakeCallback) *Runner {
	t.Helper()
	reg := registry.New(base, nil)
	if _, err := reg.Load(); err != nil {
		t.Fatalf("loading registry: %v", err)
	}
	var c callback.Callback
	if cb != nil {
		c = cb
	}
	return &Runner{Registry: reg, Callback: c, BasePath: base, OutputsDir: filepath.Join(base, "outputs")}
}

func TestExecuteSkill_HappyPath(t *testing.T) {
	base := t.TempDir()
	writeSkill(t, base, specmodel.Skill{
		Name: "greet", Version: "1.0.0",
		Steps: []specmodel.Step{
			{ID: "say-hi", Type: "bash", Cmd: "echo hello {name}"},
		},
	})

	r := newTestRunner(t, base, nil)
	result, err := r.ExecuteSkill(context.Background(), "greet", map[string]any{"name": "world"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(result.StepsCompleted) != 1 || result.StepsCompleted[0] != "say-hi" {
		t.Fatalf("StepsCompleted = %v", result.StepsCompleted)
	}
	if result.LogFile == "" {
		t.Fatal("expected a log file to be written")
	}
	if _, err := os.Stat(result.LogFile); err != nil {
		t.Fatalf("log file not written: %v", err)
	}
}

func TestExecuteSkill_MissingRequiredInput(t *testing.T) {
	base := t.TempDir()
	writeSkill(t, base, specmodel.Skill{
		Name: "needs-ticket", Version: "1.0.0",
		Inputs: map[string]specmodel.InputSpec{"ticket": {Type: "string", Required: true}},
		Steps:  []specmodel.Step{{ID: "noop", Type: "bash", Cmd: "true"}},
	})

	r := newTestRunner(t, base, nil)
	_, err := r.ExecuteSkill(context.Background(), "needs-ticket", map[string]any{}, false)
	if !engineerr.Is(err, engineerr.KindInputInvalid) {
		t.Fatalf("expected InputInvalid, got %v", err)
	}
}

func TestExecuteSkill_UnknownSkill(t *testing.T) {
	base := t.TempDir()
	r := newTestRunner(t, base, nil)
	_, err := r.ExecuteSkill(context.Background(), "does-not-exist", nil, false)
	if !engineerr.Is(err, engineerr.KindSkillNotFound) {
		t.Fatalf("expected SkillNotFound, got %v", err)
	}
}

func TestExecuteSkill_PrereqFailureStopsBeforeSteps(t *testing.T) {
	base := t.TempDir()
	marker := filepath.Join(base, "ran.txt")
	writeSkill(t, base, specmodel.Skill{
		Name: "gated", Version: "1.0.0",
		PreRequisites: []specmodel.Probe{{Check: "command_exists", Args: []string{"not-a-real-command-xyz"}}},
		Steps:         []specmodel.Step{{ID: "write-marker", Type: "bash", Cmd: "touch " + marker}},
	})

	r := newTestRunner(t, base, nil)
	result, err := r.ExecuteSkill(context.Background(), "gated", map[string]any{}, false)
	if err == nil || !engineerr.Is(err, engineerr.KindPrereqFailed) {
		t.Fatalf("expected PrereqFailed, got result=%+v err=%v", result, err)
	}
	if _, statErr := os.Stat(marker); statErr == nil {
		t.Fatal("step must not run when a prerequisite fails")
	}
}

func TestExecuteSkill_RetrySucceedsOnSecondAttempt(t *testing.T) {
	base := t.TempDir()
	counterFile := filepath.Join(base, "counter")
	writeSkill(t, base, specmodel.Skill{
		Name: "flaky", Version: "1.0.0",
		Steps: []specmodel.Step{{
			ID: "flaky-step", Type: "bash", Retry: 1,
			Cmd: "test -f " + counterFile + " && exit 0 || { touch " + counterFile + "; exit 1; }",
		}},
	})

	r := newTestRunner(t, base, nil)
	result, err := r.ExecuteSkill(context.Background(), "flaky", map[string]any{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("expected eventual success after retry, got %+v", result)
	}
}

func TestExecuteSkill_FailureTriggersRollback(t *testing.T) {
	base := t.TempDir()
	created := filepath.Join(base, "created.txt")
	cleaned := filepath.Join(base, "cleaned.txt")
	writeSkill(t, base, specmodel.Skill{
		Name: "needs-cleanup", Version: "1.0.0",
		Steps: []specmodel.Step{
			{ID: "create", Type: "bash", Cmd: "touch " + created},
			{ID: "boom", Type: "bash", Cmd: "exit 1"},
		},
		Rollback: []specmodel.Step{
			{ID: "create", Type: "bash", Cmd: "rm -f " + created},
			{ID: "cleanup", Type: "bash", Cmd: "touch " + cleaned},
		},
	})

	r := newTestRunner(t, base, nil)
	result, err := r.ExecuteSkill(context.Background(), "needs-cleanup", map[string]any{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Fatal("expected failure")
	}
	if _, err := os.Stat(created); !os.IsNotExist(err) {
		t.Fatal("rollback for completed step 'create' should have removed the file")
	}
	if _, err := os.Stat(cleaned); err != nil {
		t.Fatal("the always-run 'cleanup' rollback entry should have run")
	}
}

func TestExecuteSkill_VerificationFailureDoesNotRollback(t *testing.T) {
	base := t.TempDir()
	created := filepath.Join(base, "created.txt")
	writeSkill(t, base, specmodel.Skill{
		Name: "unverifiable", Version: "1.0.0",
		Steps:        []specmodel.Step{{ID: "create", Type: "bash", Cmd: "touch " + created}},
		Verification: []specmodel.Probe{{Type: "file_exists", Path: filepath.Join(base, "does-not-exist.txt")}},
		Rollback:     []specmodel.Step{{ID: "create", Type: "bash", Cmd: "rm -f " + created}},
	})

	r := newTestRunner(t, base, nil)
	result, err := r.ExecuteSkill(context.Background(), "unverifiable", map[string]any{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Fatal("expected verification failure")
	}
	if _, statErr := os.Stat(created); statErr != nil {
		t.Fatal("verification failure must not trigger rollback (spec §7)")
	}
}

func TestExecuteSkill_DryRunShortCircuits(t *testing.T) {
	base := t.TempDir()
	marker := filepath.Join(base, "should-not-exist")
	writeSkill(t, base, specmodel.Skill{
		Name: "dry", Version: "1.0.0",
		Steps: []specmodel.Step{{ID: "write", Type: "bash", Cmd: "touch " + marker}},
	})

	r := newTestRunner(t, base, nil)
	result, err := r.ExecuteSkill(context.Background(), "dry", map[string]any{}, true)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || len(result.StepsCompleted) != 1 || result.StepsCompleted[0] != "(dry run)" {
		t.Fatalf("unexpected dry-run result: %+v", result)
	}
	if _, statErr := os.Stat(marker); statErr == nil {
		t.Fatal("dry run must not execute steps")
	}
}

func TestExecuteSkill_CheckpointAutoPassesWithoutCallback(t *testing.T) {
	base := t.TempDir()
	writeSkill(t, base, specmodel.Skill{
		Name: "gate-only", Version: "1.0.0",
		Steps: []specmodel.Step{{ID: "confirm", Type: "checkpoint", CheckpointMessage: "proceed?"}},
	})

	r := newTestRunner(t, base, nil)
	result, err := r.ExecuteSkill(context.Background(), "gate-only", map[string]any{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("expected checkpoint to auto-pass without a callback, got %+v", result)
	}
}

func TestExecuteSkill_AgentStepDelegatesToCallback(t *testing.T) {
	base := t.TempDir()
	writeSkill(t, base, specmodel.Skill{
		Name: "delegated", Version: "1.0.0",
		Context7Required: []string{"stdlib/net-http"},
		Steps:            []specmodel.Step{{ID: "delegate", Type: "agent", Cmd: "do the thing"}},
	})

	cb := &fakeCallback{executeResult: &specmodel.StepResult{Success: true, Output: "done"}}
	r := newTestRunner(t, base, cb)
	result, err := r.ExecuteSkill(context.Background(), "delegated", map[string]any{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("expected success via callback, got %+v", result)
	}
	if len(cb.context7Calls) != 1 {
		t.Fatalf("expected context7 preload to be invoked once, got %v", cb.context7Calls)
	}
}

func TestExecuteSkill_CheckpointDeclinedFailsSkill(t *testing.T) {
	base := t.TempDir()
	writeSkill(t, base, specmodel.Skill{
		Name: "picky-gate", Version: "1.0.0",
		Steps: []specmodel.Step{{ID: "confirm", Type: "checkpoint", CheckpointMessage: "proceed?"}},
	})

	cb := &fakeCallback{checkpointOK: false}
	r := newTestRunner(t, base, cb)
	result, err := r.ExecuteSkill(context.Background(), "picky-gate", map[string]any{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Fatal("expected a declined checkpoint to fail the skill")
	}
}

func TestExecuteSkill_MCPStepUsesCallback(t *testing.T) {
	base := t.TempDir()
	writeSkill(t, base, specmodel.Skill{
		Name: "uses-mcp", Version: "1.0.0",
		Steps: []specmodel.Step{{ID: "call-tool", Type: "mcp", MCPServer: "jira", MCPTool: "create_issue"}},
	})

	cb := &fakeCallback{mcpValue: "ISSUE-42"}
	r := newTestRunner(t, base, cb)
	result, err := r.ExecuteSkill(context.Background(), "uses-mcp", map[string]any{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
}

func TestExecuteSkill_AgentStepRequiresCallback(t *testing.T) {
	base := t.TempDir()
	writeSkill(t, base, specmodel.Skill{
		Name: "needs-agent", Version: "1.0.0",
		Steps: []specmodel.Step{{ID: "delegate", Type: "agent", Cmd: "do the thing"}},
	})

	r := newTestRunner(t, base, nil)
	result, err := r.ExecuteSkill(context.Background(), "needs-agent", map[string]any{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Fatal("expected failure: agent step with no callback configured")
	}
}

func TestExecuteSkill_UnknownStepType(t *testing.T) {
	base := t.TempDir()
	writeSkill(t, base, specmodel.Skill{
		Name: "weird", Version: "1.0.0",
		Steps: []specmodel.Step{{ID: "huh", Type: "smoke-signal"}},
	})

	r := newTestRunner(t, base, nil)
	result, err := r.ExecuteSkill(context.Background(), "weird", map[string]any{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Success || result.StepsFailed[0] != "huh" {
		t.Fatalf("expected step 'huh' to fail, got %+v", result)
	}
}
