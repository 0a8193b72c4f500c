package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

func TestUpdateProjectContext_InsertsBeforeNextSteps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PROJECT_CONTEXT.md")
	original := "# Project\n\nSome notes.\n\n## Next Steps\n\n- ship it\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatal(err)
	}

	result := &specmodel.WorkflowResult{
		Success:         true,
		PhasesCompleted: []string{"build", "test"},
		TotalDurationMs: 4200,
	}
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	if err := UpdateProjectContext(dir, "release-train", result, now); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "release-train") || !strings.Contains(content, "SUCCESS") {
		t.Fatalf("missing expected entry content: %s", content)
	}
	if strings.Index(content, "release-train") > strings.Index(content, "## Next Steps") {
		t.Fatal("entry must be inserted before ## Next Steps")
	}
}

func TestUpdateProjectContext_AppendsWhenNoNextSteps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PROJECT_CONTEXT.md")
	if err := os.WriteFile(path, []byte("# Project\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := &specmodel.WorkflowResult{Success: false, PhasesFailed: []string{"deploy"}}
	if err := UpdateProjectContext(dir, "release-train", result, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "FAILED") {
		t.Fatalf("expected FAILED status in appended entry: %s", data)
	}
}

func TestUpdateProjectContext_MissingFileIsError(t *testing.T) {
	dir := t.TempDir()
	err := UpdateProjectContext(dir, "release-train", &specmodel.WorkflowResult{}, time.Now().UTC())
	if err == nil {
		t.Fatal("expected an error for a missing PROJECT_CONTEXT.md, so the caller can log a warning")
	}
}
