// Package probes implements the Prereq & Verify Probes: declarative
// predicates evaluated before a skill's steps run (pre_requisites) and
// after they succeed (verification), per spec.md §4.3.
package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/jorge-barreto/skillctl/internal/guard"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

// Result is the outcome of evaluating one probe.
type Result struct {
	Passed  bool
	Message string
}

// CheckPrereq evaluates a pre_requisites entry. Only the prereq-only tags
// (command_exists, file_exists, dir_exists, env_var_set) are meaningful
// here; bash and json_valid are verify-only per spec and evaluate false.
func CheckPrereq(p specmodel.Probe) Result {
	switch p.Tag() {
	case "command_exists":
		return checkCommandExists(p)
	case "file_exists":
		return checkFileExists(p)
	case "dir_exists":
		return checkDirExists(p)
	case "env_var_set":
		return checkEnvVarSet(p)
	default:
		return Result{Passed: false, Message: fmt.Sprintf("unknown prerequisite check %q", p.Tag())}
	}
}

// CheckVerify evaluates a verification entry after interpolating any
// templated command/path fields against vars.
func CheckVerify(ctx context.Context, p specmodel.Probe, vars map[string]any, workDir string, env []string) Result {
	switch p.Tag() {
	case "command_exists":
		return checkCommandExists(p)
	case "file_exists":
		return checkFileExistsTemplated(p, vars)
	case "dir_exists":
		return checkDirExistsTemplated(p, vars)
	case "env_var_set":
		return checkEnvVarSet(p)
	case "bash":
		return checkBash(ctx, p, vars, workDir, env)
	case "json_valid":
		return checkJSONValid(p, vars)
	default:
		return Result{Passed: false, Message: fmt.Sprintf("unknown verification type %q", p.Tag())}
	}
}

func checkCommandExists(p specmodel.Probe) Result {
	if len(p.Args) == 0 {
		return Result{Passed: false, Message: "command_exists: missing command name in args"}
	}
	cmd := p.Args[0]
	if _, err := exec.LookPath(cmd); err != nil {
		return Result{Passed: false, Message: fmt.Sprintf("command %q not found on PATH", cmd)}
	}
	return Result{Passed: true, Message: fmt.Sprintf("command %q exists", cmd)}
}

func checkFileExists(p specmodel.Probe) Result {
	if len(p.Args) == 0 {
		return Result{Passed: false, Message: "file_exists: missing path in args"}
	}
	return statRegular(p.Args[0])
}

func checkFileExistsTemplated(p specmodel.Probe, vars map[string]any) Result {
	path := p.Path
	if path == "" && len(p.Args) > 0 {
		path = p.Args[0]
	}
	expanded, err := guard.Interpolate(path, vars)
	if err != nil {
		return Result{Passed: false, Message: err.Error()}
	}
	return statRegular(expanded)
}

func statRegular(path string) Result {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Result{Passed: false, Message: fmt.Sprintf("file %q does not exist", path)}
	}
	return Result{Passed: true, Message: fmt.Sprintf("file %q exists", path)}
}

func checkDirExists(p specmodel.Probe) Result {
	if len(p.Args) == 0 {
		return Result{Passed: false, Message: "dir_exists: missing path in args"}
	}
	return statDir(p.Args[0])
}

func checkDirExistsTemplated(p specmodel.Probe, vars map[string]any) Result {
	path := p.Path
	if path == "" && len(p.Args) > 0 {
		path = p.Args[0]
	}
	expanded, err := guard.Interpolate(path, vars)
	if err != nil {
		return Result{Passed: false, Message: err.Error()}
	}
	return statDir(expanded)
}

func statDir(path string) Result {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return Result{Passed: false, Message: fmt.Sprintf("directory %q does not exist", path)}
	}
	return Result{Passed: true, Message: fmt.Sprintf("directory %q exists", path)}
}

func checkEnvVarSet(p specmodel.Probe) Result {
	if len(p.Args) == 0 {
		return Result{Passed: false, Message: "env_var_set: missing variable name in args"}
	}
	name := p.Args[0]
	if _, ok := os.LookupEnv(name); !ok {
		return Result{Passed: false, Message: fmt.Sprintf("env var %q is not set", name)}
	}
	return Result{Passed: true, Message: fmt.Sprintf("env var %q is set", name)}
}

func checkBash(ctx context.Context, p specmodel.Probe, vars map[string]any, workDir string, env []string) Result {
	expanded, err := guard.Interpolate(p.Cmd, vars)
	if err != nil {
		return Result{Passed: false, Message: err.Error()}
	}
	cmd := exec.CommandContext(ctx, "bash", "-c", expanded)
	cmd.Dir = workDir
	cmd.Env = env
	err = cmd.Run()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		return Result{Passed: false, Message: err.Error()}
	}
	return Result{Passed: code == p.ExpectExit, Message: fmt.Sprintf("exit code: %d", code)}
}

func checkJSONValid(p specmodel.Probe, vars map[string]any) Result {
	path, err := guard.Interpolate(p.Path, vars)
	if err != nil {
		return Result{Passed: false, Message: err.Error()}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Passed: false, Message: fmt.Sprintf("reading %q: %v", path, err)}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Result{Passed: false, Message: fmt.Sprintf("invalid JSON in %q: %v", path, err)}
	}
	return Result{Passed: true, Message: fmt.Sprintf("valid JSON: %q", path)}
}
