package callback

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"github.com/jorge-barreto/skillctl/internal/guard"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

// Claude is the default Callback implementation for running skillctl
// interactively from a terminal with the `claude` CLI on PATH. It prints
// checkpoint prompts to stdout and reads the operator's answer from
// stdin, and dispatches `agent`-typed steps by rendering the step's
// interpolated cmd as a prompt and streaming the response.
type Claude struct {
	// Model is passed as --model to the claude CLI. Empty uses the CLI's
	// own default.
	Model string
}

// NewClaude returns a Claude callback using the given model (may be empty).
func NewClaude(model string) *Claude {
	return &Claude{Model: model}
}

// UseContext7 logs the requested documentation libraries. Context7's
// actual preload semantics are delegated to the host (spec.md glossary);
// this default implementation only records the request.
func (c *Claude) UseContext7(ctx context.Context, libs []string) error {
	if len(libs) == 0 {
		return nil
	}
	fmt.Printf("  preloading docs: %s\n", strings.Join(libs, ", "))
	return nil
}

// ExecuteStep interpolates step.Cmd against inputs, renders the result as
// a prompt, and runs one claude turn, returning its streamed text as output.
func (c *Claude) ExecuteStep(ctx context.Context, step specmodel.Step, inputs map[string]any) (*specmodel.StepResult, error) {
	prompt, err := guard.Interpolate(step.Cmd, inputs)
	if err != nil {
		return nil, err
	}

	args := []string{"-p", prompt, "--output-format", "stream-json", "--verbose", "--include-partial-messages"}
	if c.Model != "" {
		args = append(args, "--model", c.Model)
	}
	args = append(args, "--session-id", uuid.New().String())

	cmd := exec.CommandContext(ctx, "claude", args...)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting claude: %w", err)
	}

	stream, streamErr := processStream(ctx, stdout, os.Stdout)
	waitErr := cmd.Wait()

	code := 0
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if waitErr != nil {
		return nil, waitErr
	}
	if streamErr != nil && ctx.Err() == nil {
		return nil, streamErr
	}

	output := ""
	if stream != nil {
		output = stream.Text
	}
	return &specmodel.StepResult{Success: code == 0, Output: output}, nil
}

// Checkpoint prints message and blocks for an operator y/n answer,
// honoring context cancellation.
func (c *Claude) Checkpoint(ctx context.Context, message string) (bool, error) {
	fmt.Printf("\n  %s\n\n  [y to continue / anything else to stop]: ", message)

	type readResult struct {
		line string
		err  error
	}
	ch := make(chan readResult, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		ch <- readResult{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return false, r.err
		}
		switch strings.ToLower(r.line) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// MCPCall is not implemented by the default callback; wire a
// domain-specific Callback to serve real MCP tools.
func (c *Claude) MCPCall(ctx context.Context, server, tool string, args map[string]any) (any, error) {
	return nil, fmt.Errorf("mcp_call not implemented by the default claude callback (server=%q tool=%q)", server, tool)
}
