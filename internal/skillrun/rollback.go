package skillrun

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/jorge-barreto/skillctl/internal/guard"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
	"github.com/jorge-barreto/skillctl/internal/ux"
)

// rollbackTimeout is fixed by spec.md §4.4.1 regardless of the step's own
// declared timeout.
const rollbackTimeout = 60 * time.Second

// runRollback executes skill.Rollback entries in declaration order,
// restricted to ids present in stepsCompleted plus any entry literally
// named "cleanup". Each entry's failure is logged to stderr and never
// alters the skill's already-failed outcome (P3, §7 RollbackError).
func runRollback(rollback []specmodel.Step, stepsCompleted []string, vars map[string]any, basePath string) {
	if len(rollback) == 0 {
		return
	}
	completed := make(map[string]bool, len(stepsCompleted))
	for _, id := range stepsCompleted {
		completed[id] = true
	}

	for _, entry := range rollback {
		if !completed[entry.ID] && entry.ID != "cleanup" {
			continue
		}
		ux.Rollback(entry.ID)
		if err := runRollbackEntry(entry, vars, basePath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: rollback step %q failed: %v\n", entry.ID, err)
		}
	}
}

// runRollbackEntry always gets a fresh, un-cancelled context: rollback is
// best-effort cleanup and must still attempt to run even if the skill's
// own context was cancelled or timed out.
func runRollbackEntry(entry specmodel.Step, vars map[string]any, basePath string) error {
	cmdStr, err := guard.Interpolate(entry.Cmd, vars)
	if err != nil {
		return err
	}
	workDir, err := resolveWorkDir(entry, vars, basePath)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", cmdStr)
	cmd.Dir = workDir
	cmd.Env = buildEnv(entry)
	var captured bytes.Buffer
	cmd.Stdout = &captured
	cmd.Stderr = &captured

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, captured.String())
	}
	return nil
}
