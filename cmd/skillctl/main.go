// Command skillctl runs the declarative skill/workflow execution engine:
// a single skill via the Step Runner, or a multi-phase workflow via the
// Phase Orchestrator, both driven from JSON specifications under
// SKILLS/ and WORKFLOWS/ in the current project.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jorge-barreto/skillctl/internal/callback"
	"github.com/jorge-barreto/skillctl/internal/diagnose"
	"github.com/jorge-barreto/skillctl/internal/docs"
	"github.com/jorge-barreto/skillctl/internal/registry"
	"github.com/jorge-barreto/skillctl/internal/scaffold"
	"github.com/jorge-barreto/skillctl/internal/skillrun"
	"github.com/jorge-barreto/skillctl/internal/state"
	"github.com/jorge-barreto/skillctl/internal/ux"
	"github.com/jorge-barreto/skillctl/internal/workflow"
	cli "github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:        "skillctl",
		Usage:       "Declarative skill and workflow execution engine",
		Description: "Run 'skillctl docs' for documentation on skill.json and workflow.json syntax, step types, and more.",
		Commands: []*cli.Command{
			initCmd(),
			listCmd(),
			infoCmd(),
			runCmd(),
			runWorkflowCmd(),
			resumeCmd(),
			statusCmd(),
			diagnoseCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(1)
	}
}

func loadRegistry(projectRoot string) (*registry.Registry, error) {
	reg := registry.New(projectRoot, registry.NewJSONSchemaValidator())
	if _, err := reg.Load(); err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}
	return reg, nil
}

func outputsDir(projectRoot string) string {
	return filepath.Join(projectRoot, "outputs")
}

func parseInputs(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var inputs map[string]any
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, fmt.Errorf("parsing --inputs: %w", err)
	}
	return inputs, nil
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Scaffold a new SKILLS/ and WORKFLOWS/ directory with an example",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(dir)
		},
	}
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List registered skills and workflows",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			projectRoot, err := os.Getwd()
			if err != nil {
				return err
			}
			reg, err := loadRegistry(projectRoot)
			if err != nil {
				return err
			}

			fmt.Printf("\n%sSkills:%s\n", ux.Bold, ux.Reset)
			for _, name := range reg.SkillNames() {
				s, _ := reg.Skill(name)
				fmt.Printf("  %-20s %s\n", name, s.Description)
			}

			fmt.Printf("\n%sWorkflows:%s\n", ux.Bold, ux.Reset)
			for _, name := range reg.WorkflowNames() {
				fmt.Printf("  %-20s\n", name)
			}
			fmt.Println()
			return nil
		},
	}
}

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show the full definition of one skill or workflow",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return fmt.Errorf("name argument is required")
			}
			projectRoot, err := os.Getwd()
			if err != nil {
				return err
			}
			reg, err := loadRegistry(projectRoot)
			if err != nil {
				return err
			}
			if s, ok := reg.Skill(name); ok {
				data, _ := json.MarshalIndent(s, "", "  ")
				fmt.Println(string(data))
				return nil
			}
			if wf, ok := reg.Workflow(name); ok {
				data, _ := json.MarshalIndent(wf, "", "  ")
				fmt.Println(string(data))
				return nil
			}
			return fmt.Errorf("no skill or workflow named %q", name)
		},
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run one skill",
		ArgsUsage: "<skill>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "inputs", Usage: "JSON object of input values"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Check inputs and prerequisites without running steps"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			skillName := cmd.Args().First()
			if skillName == "" {
				return fmt.Errorf("skill argument is required")
			}

			projectRoot, err := os.Getwd()
			if err != nil {
				return err
			}
			reg, err := loadRegistry(projectRoot)
			if err != nil {
				return err
			}
			inputs, err := parseInputs(cmd.String("inputs"))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			r := &skillrun.Runner{
				Registry:   reg,
				Callback:   callback.NewClaude(""),
				BasePath:   projectRoot,
				OutputsDir: outputsDir(projectRoot),
			}

			result, err := r.ExecuteSkill(ctx, skillName, inputs, cmd.Bool("dry-run"))
			if result != nil && !result.Success {
				fmt.Fprintf(os.Stderr, "%sskill %q failed: %s%s\n", ux.Red, skillName, result.Error, ux.Reset)
			}
			return err
		},
	}
}

func runWorkflowCmd() *cli.Command {
	return &cli.Command{
		Name:      "run-workflow",
		Usage:     "Run a multi-phase workflow",
		ArgsUsage: "<workflow>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "inputs", Usage: "JSON object of input values"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the phase plan without executing"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return executeWorkflow(ctx, cmd, false)
		},
	}
}

func resumeCmd() *cli.Command {
	return &cli.Command{
		Name:      "resume",
		Usage:     "Resume a paused workflow (a failed one runs from its first phase)",
		ArgsUsage: "<workflow>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "inputs", Usage: "JSON object of input overrides"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return executeWorkflow(ctx, cmd, true)
		},
	}
}

func executeWorkflow(ctx context.Context, cmd *cli.Command, resume bool) error {
	workflowName := cmd.Args().First()
	if workflowName == "" {
		return fmt.Errorf("workflow argument is required")
	}

	projectRoot, err := os.Getwd()
	if err != nil {
		return err
	}
	reg, err := loadRegistry(projectRoot)
	if err != nil {
		return err
	}
	inputs, err := parseInputs(cmd.String("inputs"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	cb := callback.NewClaude("")
	o := &workflow.Orchestrator{
		Registry: reg,
		Runner: &skillrun.Runner{
			Registry:   reg,
			Callback:   cb,
			BasePath:   projectRoot,
			OutputsDir: outputsDir(projectRoot),
		},
		Callback:   cb,
		OutputsDir: outputsDir(projectRoot),
	}

	dryRun := false
	if f := cmd.Bool("dry-run"); f {
		dryRun = true
	}

	result, err := o.ExecuteWorkflow(ctx, workflowName, inputs, dryRun, resume)
	if result != nil && !result.Success && result.Status != "paused" {
		fmt.Fprintf(os.Stderr, "%sworkflow %q failed: %s%s\n", ux.Red, workflowName, result.Error, ux.Reset)
	}
	return err
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show the persisted state of a workflow",
		ArgsUsage: "<workflow>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			workflowName := cmd.Args().First()
			if workflowName == "" {
				return fmt.Errorf("workflow argument is required")
			}
			projectRoot, err := os.Getwd()
			if err != nil {
				return err
			}
			reg, err := loadRegistry(projectRoot)
			if err != nil {
				return err
			}
			wf, ok := reg.Workflow(workflowName)
			if !ok {
				return fmt.Errorf("workflow %q not found", workflowName)
			}
			st, err := state.LoadWorkflowState(outputsDir(projectRoot), workflowName)
			if err != nil {
				return fmt.Errorf("loading workflow state: %w", err)
			}
			ux.RenderWorkflowStatus(wf, st)
			return nil
		},
	}
}

func diagnoseCmd() *cli.Command {
	return &cli.Command{
		Name:      "diagnose",
		Usage:     "Ask claude to diagnose a failed or paused workflow run",
		ArgsUsage: "<workflow>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			workflowName := cmd.Args().First()
			if workflowName == "" {
				return fmt.Errorf("workflow argument is required")
			}
			projectRoot, err := os.Getwd()
			if err != nil {
				return err
			}
			reg, err := loadRegistry(projectRoot)
			if err != nil {
				return err
			}
			return diagnose.Diagnose(ctx, reg, outputsDir(projectRoot), workflowName)
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-14s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'skillctl docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}
