package skillrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jorge-barreto/skillctl/internal/callback"
	"github.com/jorge-barreto/skillctl/internal/engineerr"
	"github.com/jorge-barreto/skillctl/internal/guard"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

// buildEnv returns the child process environment: the ambient process
// environment overlaid with step.Env (step wins on key collision).
func buildEnv(step specmodel.Step) []string {
	base := os.Environ()
	if len(step.Env) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(step.Env))
	out = append(out, base...)
	for k, v := range step.Env {
		out = append(out, k+"="+v)
	}
	return out
}

// exitCode extracts a process exit code from a Run error: (0, nil) for a
// clean exit, (code, nil) for a normal non-zero exit, (0, err) otherwise.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}

// resolveWorkDir interpolates step.WorkDir (defaulting to ".") and checks
// it lies within basePath before any subprocess is spawned.
func resolveWorkDir(step specmodel.Step, vars map[string]any, basePath string) (string, error) {
	tmpl := step.WorkDir
	if tmpl == "" {
		tmpl = "."
	}
	dir, err := guard.Interpolate(tmpl, vars)
	if err != nil {
		return "", err
	}
	return guard.ResolveWithin(basePath, dir)
}

// truncateOutput mirrors the persisted-log truncation rule (§6): capture
// is kept in full on the in-memory StepResult, but the runner applies this
// when building each logged step entry.
func truncateOutput(s string) string {
	const limit = 1000
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// dispatchStep runs one step to completion (no retry — the caller owns
// the retry loop) and returns a StepResult with Success/Output/Error set.
// DurationMs and RetriesUsed are filled in by the caller.
func dispatchStep(ctx context.Context, step specmodel.Step, vars map[string]any, basePath string, cb callback.Callback) (*specmodel.StepResult, error) {
	switch step.Type {
	case "bash":
		return dispatchShell(ctx, "bash", step, vars, basePath)
	case "python":
		return dispatchShell(ctx, "python3", step, vars, basePath)
	case "agent":
		return dispatchAgent(ctx, step, vars, cb)
	case "checkpoint":
		return dispatchCheckpoint(ctx, step, vars, cb)
	case "mcp":
		return dispatchMCP(ctx, step, cb)
	default:
		return nil, engineerr.New(engineerr.KindUnknownStepType, "unknown step type %q for step %q", step.Type, step.ID)
	}
}

// dispatchShell backs both bash and python steps: python is run via its
// own interpreter as a child process (never in-process eval — the first
// draft of this engine took that shortcut and it is flagged as a defect)
// so timeout and isolation semantics match bash exactly.
func dispatchShell(ctx context.Context, interpreter string, step specmodel.Step, vars map[string]any, basePath string) (*specmodel.StepResult, error) {
	cmdStr, err := guard.Interpolate(step.Cmd, vars)
	if err != nil {
		return nil, err
	}
	workDir, err := resolveWorkDir(step, vars, basePath)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(step.EffectiveTimeout()) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var args []string
	if interpreter == "python3" {
		args = []string{"-c", cmdStr}
	} else {
		args = []string{"-c", cmdStr}
	}

	cmd := exec.CommandContext(runCtx, interpreter, args...)
	cmd.Dir = workDir
	cmd.Env = buildEnv(step)

	var captured bytes.Buffer
	cmd.Stdout = io.MultiWriter(&captured)
	cmd.Stderr = io.MultiWriter(&captured)

	runErr := cmd.Run()
	output := captured.String()

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, engineerr.New(engineerr.KindTimeout, "step %q exceeded its %ds timeout", step.ID, step.EffectiveTimeout())
	}

	code, err := exitCode(runErr)
	if err != nil {
		return nil, fmt.Errorf("running step %q: %w", step.ID, err)
	}
	if code != 0 {
		return &specmodel.StepResult{StepID: step.ID, Success: false, Output: output,
			Error: engineerr.New(engineerr.KindStepNonZero, "step %q exited %d", step.ID, code).Error()}, nil
	}
	return &specmodel.StepResult{StepID: step.ID, Success: true, Output: output}, nil
}

func dispatchAgent(ctx context.Context, step specmodel.Step, vars map[string]any, cb callback.Callback) (*specmodel.StepResult, error) {
	if cb == nil {
		return nil, engineerr.New(engineerr.KindCallbackMissing, "step %q requires an agent callback but none is configured", step.ID)
	}
	result, err := cb.ExecuteStep(ctx, step, vars)
	if err != nil {
		return &specmodel.StepResult{StepID: step.ID, Success: false, Error: err.Error()}, nil
	}
	if result == nil {
		return &specmodel.StepResult{StepID: step.ID, Success: true}, nil
	}
	result.StepID = step.ID
	return result, nil
}

func dispatchCheckpoint(ctx context.Context, step specmodel.Step, vars map[string]any, cb callback.Callback) (*specmodel.StepResult, error) {
	message := step.CheckpointMessage
	if message == "" {
		message = step.Description
	}
	message, err := guard.Interpolate(message, vars)
	if err != nil {
		return nil, err
	}

	if cb == nil {
		return &specmodel.StepResult{StepID: step.ID, Success: true, Output: "auto-passed (no callback configured)"}, nil
	}

	ok, err := cb.Checkpoint(ctx, message)
	if err != nil {
		return &specmodel.StepResult{StepID: step.ID, Success: false, Error: err.Error()}, nil
	}
	if !ok {
		return &specmodel.StepResult{StepID: step.ID, Success: false, Error: "checkpoint declined"}, nil
	}
	return &specmodel.StepResult{StepID: step.ID, Success: true, Output: message}, nil
}

func dispatchMCP(ctx context.Context, step specmodel.Step, cb callback.Callback) (*specmodel.StepResult, error) {
	if cb == nil {
		return nil, engineerr.New(engineerr.KindCallbackMissing, "step %q requires an MCP-capable callback but none is configured", step.ID)
	}
	value, err := cb.MCPCall(ctx, step.MCPServer, step.MCPTool, step.MCPArgs)
	if err != nil {
		return &specmodel.StepResult{StepID: step.ID, Success: false, Error: err.Error()}, nil
	}
	return &specmodel.StepResult{StepID: step.ID, Success: true, Output: strings.TrimSpace(fmt.Sprint(value))}, nil
}
