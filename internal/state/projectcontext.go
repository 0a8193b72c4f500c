package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

// UpdateProjectContext appends a workflow execution summary to
// <projectPath>/PROJECT_CONTEXT.md, per spec.md §6. The block is
// inserted just before a "## Next Steps" heading if one exists,
// otherwise appended to the end of the file. A missing context file is
// reported back as an error string for the caller to log as a warning —
// it is never a workflow failure.
func UpdateProjectContext(projectPath, workflowName string, result *specmodel.WorkflowResult, now time.Time) error {
	path := filepath.Join(projectPath, "PROJECT_CONTEXT.md")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("PROJECT_CONTEXT.md not found at %s", path)
	}
	content := string(data)

	status := "FAILED"
	if result.Success {
		status = "SUCCESS"
	}
	completed := strings.Join(result.PhasesCompleted, ", ")
	if completed == "" {
		completed = "None"
	}
	failed := strings.Join(result.PhasesFailed, ", ")
	if failed == "" {
		failed = "None"
	}

	entry := fmt.Sprintf(
		"\n---\n\n## Workflow Execution: %s (%s)\n\n**Status:** %s\n**Phases Completed:** %s\n**Phases Failed:** %s\n**Duration:** %dms\n",
		workflowName, now.Format("2006-01-02 15:04"), status, completed, failed, result.TotalDurationMs,
	)

	const nextSteps = "## Next Steps"
	if idx := strings.Index(content, nextSteps); idx != -1 {
		content = content[:idx] + entry + "\n" + content[idx:]
	} else {
		content += entry
	}

	return os.WriteFile(path, []byte(content), 0644)
}
