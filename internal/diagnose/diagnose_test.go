package diagnose

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jorge-barreto/skillctl/internal/registry"
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

func TestDiagnose_NoStateIsNoOp(t *testing.T) {
	base := t.TempDir()
	writeJSON(t, filepath.Join(base, "SKILLS", "build", "skill.json"), specmodel.Skill{Name: "build", Version: "1.0.0"})
	writeJSON(t, filepath.Join(base, "WORKFLOWS", "release.json"), specmodel.Workflow{
		Name: "release", Version: "1.0.0",
		Phases: []specmodel.Phase{{Name: "build-phase", Skill: "build"}},
	})
	reg := registry.New(base, nil)
	if _, err := reg.Load(); err != nil {
		t.Fatal(err)
	}

	err := Diagnose(context.Background(), reg, filepath.Join(base, "outputs"), "release")
	if err != nil {
		t.Fatalf("expected nil error with no state file, got %v", err)
	}
}

func TestDiagnose_UnknownWorkflow(t *testing.T) {
	base := t.TempDir()
	reg := registry.New(base, nil)
	if _, err := reg.Load(); err != nil {
		t.Fatal(err)
	}
	err := Diagnose(context.Background(), reg, filepath.Join(base, "outputs"), "ghost")
	if err == nil {
		t.Fatal("expected error for unknown workflow")
	}
}

func TestFailingPhaseName_PrefersPhasesFailed(t *testing.T) {
	wf := &specmodel.Workflow{Phases: []specmodel.Phase{{Name: "a"}, {Name: "b"}}}
	st := &specmodel.WorkflowState{PhasesFailed: []string{"a", "b"}, CurrentPhaseIndex: 0}
	if got := failingPhaseName(wf, st); got != "b" {
		t.Fatalf("got %q, want b", got)
	}
}

func TestFailingPhaseName_FallsBackToCurrentIndex(t *testing.T) {
	wf := &specmodel.Workflow{Phases: []specmodel.Phase{{Name: "a"}, {Name: "b"}}}
	st := &specmodel.WorkflowState{CurrentPhaseIndex: 1}
	if got := failingPhaseName(wf, st); got != "b" {
		t.Fatalf("got %q, want b", got)
	}
}

func TestLatestSkillLog_PicksNewestByName(t *testing.T) {
	base := t.TempDir()
	older := filepath.Join(base, "skill_logs", "build_20260101_000000.json")
	newer := filepath.Join(base, "skill_logs", "build_20260102_000000.json")
	writeJSON(t, older, map[string]any{"success": false})
	writeJSON(t, newer, map[string]any{"success": true})

	path, text, err := latestSkillLog(base, "build")
	if err != nil {
		t.Fatal(err)
	}
	if path != newer {
		t.Fatalf("path = %q, want %q", path, newer)
	}
	if !strings.Contains(text, "true") {
		t.Fatalf("expected newest content, got %q", text)
	}
}

func TestLatestSkillLog_Missing(t *testing.T) {
	base := t.TempDir()
	if _, _, err := latestSkillLog(base, "ghost"); err == nil {
		t.Fatal("expected error for missing log")
	}
}

func TestTruncateLines(t *testing.T) {
	lines := make([]string, 300)
	for i := range lines {
		lines[i] = "line"
	}
	full := strings.Join(lines, "\n")
	result := truncateLines(full, maxLogLines)
	if len(strings.Split(result, "\n")) != maxLogLines {
		t.Fatalf("expected %d lines, got %d", maxLogLines, len(strings.Split(result, "\n")))
	}
}

func TestFilteredEnv_StripsClaudeCode(t *testing.T) {
	t.Setenv("CLAUDECODE", "1")
	t.Setenv("CLAUDECODE_FOO", "bar")
	t.Setenv("KEEP_ME", "yes")

	env := filteredEnv()
	for _, e := range env {
		if strings.HasPrefix(e, "CLAUDECODE") {
			t.Fatalf("expected CLAUDECODE vars stripped, found %q", e)
		}
	}
	found := false
	for _, e := range env {
		if e == "KEEP_ME=yes" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected unrelated env var to survive")
	}
}
