// Package registry discovers skill and workflow specifications on disk,
// validates them, and exposes them as immutable records keyed by name.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

// Registry holds the loaded skills and workflows for one base path. It is
// safe for concurrent reads; Load/Reload take an exclusive lock while
// swapping in a freshly parsed snapshot.
type Registry struct {
	SkillsDir          string
	WorkflowsDir       string
	SkillSchemaPath    string
	WorkflowSchemaPath string
	Validator          Validator

	mu        sync.RWMutex
	skills    map[string]*specmodel.Skill
	workflows map[string]*specmodel.Workflow
}

// New returns a Registry rooted at basePath using the conventional
// SKILLS/, WORKFLOWS/, schemas/ layout from spec.md §6.
func New(basePath string, validator Validator) *Registry {
	return &Registry{
		SkillsDir:          filepath.Join(basePath, "SKILLS"),
		WorkflowsDir:       filepath.Join(basePath, "WORKFLOWS"),
		SkillSchemaPath:    filepath.Join(basePath, "schemas", "skill-schema.json"),
		WorkflowSchemaPath: filepath.Join(basePath, "schemas", "workflow-schema.json"),
		Validator:          validator,
	}
}

// LoadResult carries non-fatal issues found while loading: bad files that
// were skipped, and workflow phases whose skill reference didn't resolve.
type LoadResult struct {
	Warnings []string
}

// Load walks SkillsDir and WorkflowsDir, parses every spec file, validates
// it against its schema when one is configured, and replaces the
// registry's in-memory snapshot atomically. A SchemaValidatorMissingError
// aborts the entire load; any other per-file problem is reported as a
// warning and that file is skipped.
func (r *Registry) Load() (*LoadResult, error) {
	res := &LoadResult{}

	skills := make(map[string]*specmodel.Skill)
	if err := r.loadSkills(skills, res); err != nil {
		return nil, err
	}

	workflows := make(map[string]*specmodel.Workflow)
	if err := r.loadWorkflows(workflows, skills, res); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.skills = skills
	r.workflows = workflows
	r.mu.Unlock()

	return res, nil
}

// Reload discards the current snapshot and loads from disk again.
func (r *Registry) Reload() (*LoadResult, error) {
	return r.Load()
}

func (r *Registry) loadSkills(into map[string]*specmodel.Skill, res *LoadResult) error {
	entries, err := os.ReadDir(r.SkillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("skills directory not found: %s", r.SkillsDir))
			return nil
		}
		return fmt.Errorf("reading skills dir: %w", err)
	}

	hasSchema, err := fileExists(r.SkillSchemaPath)
	if err != nil {
		return err
	}
	if hasSchema && r.Validator == nil {
		return &SchemaValidatorMissingError{SchemaPath: r.SkillSchemaPath}
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		skillDir := filepath.Join(r.SkillsDir, e.Name())
		skillJSON := filepath.Join(skillDir, "skill.json")
		raw, err := os.ReadFile(skillJSON)
		if err != nil {
			if !os.IsNotExist(err) {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", skillJSON, err))
			}
			continue
		}

		if hasSchema {
			if err := r.Validator.Validate(r.SkillSchemaPath, raw); err != nil {
				res.Warnings = append(res.Warnings, (&ValidationError{Path: skillJSON, Err: err}).Error())
				continue
			}
		}

		var skill specmodel.Skill
		if err := json.Unmarshal(raw, &skill); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: invalid JSON: %v", skillJSON, err))
			continue
		}

		if problem := sanityCheckSkill(&skill); problem != "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s", skillJSON, problem))
			continue
		}

		if _, dup := into[skill.Name]; dup {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: duplicate skill name %q, keeping first loaded", skillJSON, skill.Name))
			continue
		}

		skill.SourceDir = skillDir
		into[skill.Name] = &skill
	}
	return nil
}

func (r *Registry) loadWorkflows(into map[string]*specmodel.Workflow, skills map[string]*specmodel.Skill, res *LoadResult) error {
	entries, err := os.ReadDir(r.WorkflowsDir)
	if err != nil {
		if os.IsNotExist(err) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("workflows directory not found: %s", r.WorkflowsDir))
			return nil
		}
		return fmt.Errorf("reading workflows dir: %w", err)
	}

	hasSchema, err := fileExists(r.WorkflowSchemaPath)
	if err != nil {
		return err
	}
	if hasSchema && r.Validator == nil {
		return &SchemaValidatorMissingError{SchemaPath: r.WorkflowSchemaPath}
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(r.WorkflowsDir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		if hasSchema {
			if err := r.Validator.Validate(r.WorkflowSchemaPath, raw); err != nil {
				res.Warnings = append(res.Warnings, (&ValidationError{Path: path, Err: err}).Error())
				continue
			}
		}

		var wf specmodel.Workflow
		if err := json.Unmarshal(raw, &wf); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: invalid JSON: %v", path, err))
			continue
		}

		if problem := sanityCheckWorkflow(&wf); problem != "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s", path, problem))
			continue
		}

		if _, dup := into[wf.Name]; dup {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: duplicate workflow name %q, keeping first loaded", path, wf.Name))
			continue
		}

		for _, phase := range wf.Phases {
			if _, ok := skills[phase.Skill]; !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: phase %q references unknown skill %q", path, phase.Name, phase.Skill))
			}
		}

		wf.SourcePath = path
		into[wf.Name] = &wf
	}
	return nil
}

func sanityCheckSkill(s *specmodel.Skill) string {
	if s.Name == "" {
		return "missing 'name'"
	}
	if s.Version == "" {
		return "missing 'version'"
	}
	if s.Autonomy != "" && !specmodel.ValidAutonomy(s.Autonomy) {
		return fmt.Sprintf("unknown autonomy %q", s.Autonomy)
	}
	if len(s.Steps) == 0 {
		return "must declare at least one step"
	}
	seen := make(map[string]bool, len(s.Steps))
	for _, st := range s.Steps {
		if st.ID == "" {
			return "step with empty id"
		}
		if seen[st.ID] {
			return fmt.Sprintf("duplicate step id %q", st.ID)
		}
		seen[st.ID] = true
	}
	return ""
}

func sanityCheckWorkflow(w *specmodel.Workflow) string {
	if w.Name == "" {
		return "missing 'name'"
	}
	if w.Version == "" {
		return "missing 'version'"
	}
	if len(w.Phases) == 0 {
		return "must declare at least one phase"
	}
	seen := make(map[string]bool, len(w.Phases))
	for _, p := range w.Phases {
		if p.Name == "" {
			return "phase with empty name"
		}
		if seen[p.Name] {
			return fmt.Sprintf("duplicate phase name %q", p.Name)
		}
		seen[p.Name] = true
		if p.Skill == "" {
			return fmt.Sprintf("phase %q missing 'skill'", p.Name)
		}
	}
	return ""
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Skill returns the loaded skill by name.
func (r *Registry) Skill(name string) (*specmodel.Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[name]
	return s, ok
}

// Workflow returns the loaded workflow by name.
func (r *Registry) Workflow(name string) (*specmodel.Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workflows[name]
	return w, ok
}

// SkillNames returns every loaded skill name, sorted.
func (r *Registry) SkillNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.skills))
	for n := range r.skills {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WorkflowNames returns every loaded workflow name, sorted.
func (r *Registry) WorkflowNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.workflows))
	for n := range r.workflows {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
