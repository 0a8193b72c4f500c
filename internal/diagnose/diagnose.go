// Package diagnose implements the `skillctl diagnose` command: locate the
// most recent failed run of a workflow, gather the failing skill's
// persisted execution log, and ask claude for a diagnosis — adapted from
// the teacher's doctor.Run, retargeted at skill_logs/ and workflow_state/
// instead of a per-phase artifacts directory.
package diagnose

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jorge-barreto/skillctl/internal/registry"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
	"github.com/jorge-barreto/skillctl/internal/state"
	"github.com/jorge-barreto/skillctl/internal/ux"
)

const maxLogLines = 200

const diagPrompt = `You are diagnosing a failed skillctl workflow phase. Analyze the context below and provide a concise diagnosis.

## Failed Phase
%s

## Skill Execution Log (%s)
%s

Instructions:
1. Identify what went wrong from the step statuses and error output above.
2. Classify this as a WORKFLOW problem (phase ordering, missing inputs, a bad condition) or a SKILL problem (the steps themselves).
3. Suggest specific fixes.
4. Recommend the next command to run:
   - skillctl resume <workflow>              (continue from the paused phase; a failed run restarts from the first phase)
   - skillctl run <skill> --inputs <json>     (re-run just the failing skill in isolation)
   - Fix the underlying issue first, then retry

Be direct and concise. Focus on actionable advice.`

// Diagnose loads workflowName's persisted state, finds the failing phase
// and its skill's most recent execution log, and asks claude to diagnose
// the failure. It prints "No failed run to diagnose." and returns nil if
// there is no paused, failed or cancelled state to examine.
func Diagnose(ctx context.Context, reg *registry.Registry, outputsDir, workflowName string) error {
	wf, ok := reg.Workflow(workflowName)
	if !ok {
		return fmt.Errorf("workflow %q not found", workflowName)
	}

	st, err := state.LoadWorkflowState(outputsDir, workflowName)
	if err != nil {
		return fmt.Errorf("loading workflow state: %w", err)
	}
	if st == nil || (st.Status != specmodel.StatusFailed && st.Status != specmodel.StatusPaused && st.Status != specmodel.StatusCancelled) {
		fmt.Println("No failed run to diagnose.")
		return nil
	}

	phaseName := failingPhaseName(wf, st)
	idx := wf.PhaseIndex(phaseName)
	if idx == -1 {
		return fmt.Errorf("phase %q not found in workflow %q", phaseName, workflowName)
	}
	phase := wf.Phases[idx]

	logPath, logText, err := latestSkillLog(outputsDir, phase.Skill)
	if err != nil {
		return fmt.Errorf("gathering skill log for %q: %w", phase.Skill, err)
	}

	phaseDesc := fmt.Sprintf("%s (skill: %s, status: %s)", phase.Name, phase.Skill, st.Status)
	prompt := fmt.Sprintf(diagPrompt, phaseDesc, logPath, truncateLines(logText, maxLogLines))

	fmt.Printf("\n%s%s══ Diagnosing phase %q (%s) ══%s\n\n", ux.Bold, ux.Cyan, phase.Name, workflowName, ux.Reset)

	return runClaude(ctx, prompt)
}

// failingPhaseName prefers the last entry recorded in PhasesFailed; if the
// state carries none (e.g. a checkpoint pause with no failure yet), it
// falls back to the phase sitting at CurrentPhaseIndex.
func failingPhaseName(wf *specmodel.Workflow, st *specmodel.WorkflowState) string {
	if n := len(st.PhasesFailed); n > 0 {
		return st.PhasesFailed[n-1]
	}
	if st.CurrentPhaseIndex >= 0 && st.CurrentPhaseIndex < len(wf.Phases) {
		return wf.Phases[st.CurrentPhaseIndex].Name
	}
	return ""
}

// latestSkillLog finds the most recently written skill_logs/<skillName>_*.json
// file for skillName and returns its path and raw contents. The timestamp
// suffix in the filename sorts lexicographically, so the last match after
// a sorted glob is the newest.
func latestSkillLog(outputsDir, skillName string) (string, string, error) {
	pattern := filepath.Join(outputsDir, "skill_logs", skillName+"_*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", "", err
	}
	if len(matches) == 0 {
		return "", "", fmt.Errorf("no execution log found for skill %q", skillName)
	}
	sort.Strings(matches)
	latest := matches[len(matches)-1]

	data, err := os.ReadFile(latest)
	if err != nil {
		return "", "", err
	}

	var pretty map[string]any
	if err := json.Unmarshal(data, &pretty); err == nil {
		if indented, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			return latest, string(indented), nil
		}
	}
	return latest, string(data), nil
}

func truncateLines(s string, max int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= max {
		return s
	}
	return strings.Join(lines[len(lines)-max:], "\n")
}

func runClaude(ctx context.Context, prompt string) error {
	cmd := exec.CommandContext(ctx, "claude", "-p", prompt, "--model", "sonnet")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = filteredEnv()
	return cmd.Run()
}

// filteredEnv strips CLAUDECODE-prefixed environment variables so the
// diagnosis subprocess doesn't inherit session state from a claude process
// that might already be running skillctl itself.
func filteredEnv() []string {
	env := os.Environ()
	out := make([]string, 0, len(env))
	for _, e := range env {
		if strings.HasPrefix(e, "CLAUDECODE") {
			continue
		}
		out = append(out, e)
	}
	return out
}
