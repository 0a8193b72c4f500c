package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

// skillLogsDir and workflowStateDir are the fixed subdirectories of the
// run's outputs directory, per spec.md §6.
const (
	skillLogsDir     = "skill_logs"
	workflowStateDir = "workflow_state"
)

// SkillLogPath returns the path a skill run's log is written to:
// outputs/skill_logs/<skill-name>_<YYYYmmdd_HHMMSS>.json.
func SkillLogPath(outputsDir, skillName string, ts time.Time) string {
	name := skillName + "_" + ts.Format("20060102_150405") + ".json"
	return filepath.Join(outputsDir, skillLogsDir, name)
}

// WorkflowStatePath returns outputs/workflow_state/<workflow-name>_state.json.
func WorkflowStatePath(outputsDir, workflowName string) string {
	return filepath.Join(outputsDir, workflowStateDir, workflowName+"_state.json")
}

// LoadWorkflowState reads a workflow's persisted state. It returns (nil,
// nil) if no state file exists — the state file exists iff the workflow
// is paused or failed and has not yet been successfully completed and
// cleared.
func LoadWorkflowState(outputsDir, workflowName string) (*specmodel.WorkflowState, error) {
	path := WorkflowStatePath(outputsDir, workflowName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var st specmodel.WorkflowState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveWorkflowState persists st, stamping UpdatedAt.
func SaveWorkflowState(outputsDir string, st *specmodel.WorkflowState) error {
	st.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := specmodel.MarshalIndent(st)
	if err != nil {
		return err
	}
	return writeFileAtomic(WorkflowStatePath(outputsDir, st.WorkflowName), data, 0644)
}

// ClearWorkflowState removes a workflow's state file. Called once a
// workflow completes successfully, so a future run starts fresh.
func ClearWorkflowState(outputsDir, workflowName string) error {
	err := os.Remove(WorkflowStatePath(outputsDir, workflowName))
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
