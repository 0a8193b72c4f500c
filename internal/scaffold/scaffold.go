// Package scaffold implements `skillctl init`: writes a deterministic
// example skill and workflow into a fresh project so there's something
// concrete to run and adapt, the same way the teacher's init writes a
// minimal default config rather than requiring a blank slate.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/skillctl/internal/registry"
	"github.com/jorge-barreto/skillctl/internal/ux"
)

const exampleSkill = `{
  "name": "example",
  "version": "1.0.0",
  "description": "Prints a greeting and checks that the target directory exists.",
  "autonomy": "co-pilot",
  "inputs": {
    "target_dir": {
      "type": "string",
      "required": false,
      "default": "."
    }
  },
  "pre_requisites": [
    {"check": "command_exists", "args": ["bash"], "error_message": "bash must be on PATH"}
  ],
  "steps": [
    {
      "id": "greet",
      "type": "bash",
      "cmd": "echo hello from {target_dir}",
      "working_dir": "{target_dir}"
    }
  ],
  "verification": [],
  "rollback": []
}
`

const exampleWorkflow = `{
  "name": "example-workflow",
  "version": "1.0.0",
  "inputs": {
    "target_dir": {
      "type": "string",
      "required": false,
      "default": "."
    }
  },
  "phases": [
    {
      "name": "greet-phase",
      "skill": "example"
    }
  ],
  "on_complete": {
    "update_context": true
  }
}
`

// Init scaffolds SKILLS/example/skill.json and WORKFLOWS/example-workflow.json
// under targetDir, then loads the resulting registry to confirm the
// written files are well-formed before reporting success.
func Init(targetDir string) error {
	skillsDir := filepath.Join(targetDir, "SKILLS")
	workflowsDir := filepath.Join(targetDir, "WORKFLOWS")
	if _, err := os.Stat(skillsDir); err == nil {
		return fmt.Errorf("SKILLS directory already exists in %s", targetDir)
	}

	files := map[string]string{
		filepath.Join("SKILLS", "example", "skill.json"): exampleSkill,
		filepath.Join("WORKFLOWS", "example-workflow.json"): exampleWorkflow,
	}

	var written []string
	for relPath, content := range files {
		fullPath := filepath.Join(targetDir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", relPath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", relPath, err)
		}
		written = append(written, relPath)
	}

	gitignorePath := filepath.Join(skillsDir, "..", ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("outputs/\n"), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	written = append(written, ".gitignore")

	reg := registry.New(targetDir, nil)
	if _, err := reg.Load(); err != nil {
		return fmt.Errorf("scaffolded registry failed to load: %w", err)
	}

	printSuccess(written)
	fmt.Printf("\n  %sCustomize SKILLS/example/skill.json and WORKFLOWS/example-workflow.json for your project.%s\n", ux.Dim, ux.Reset)
	fmt.Printf("\n  Next: %sskillctl run example --dry-run%s\n\n", ux.Cyan, ux.Reset)
	return nil
}

func printSuccess(written []string) {
	fmt.Printf("\n%s%s  ✓ Initialized skillctl project%s\n\n", ux.Bold, ux.Green, ux.Reset)
	fmt.Printf("  Created:\n")
	for _, path := range written {
		fmt.Printf("    %s%s%s\n", ux.Cyan, path, ux.Reset)
	}
}
