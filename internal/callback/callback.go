// Package callback defines the agent callback capability (spec.md §9,
// §4.4) that lets `agent`, `checkpoint`, and `mcp` steps — and a skill's
// context7_required preload — delegate to a host-supplied actor. The
// engine only depends on the Callback interface; this package also ships
// one concrete implementation (Claude) that shells out to the `claude`
// CLI, suitable for running skillctl interactively from a terminal.
package callback

import (
	"context"

	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

// Callback is the single pluggable capability the core engine calls out
// to. Each method corresponds to one verb from spec.md §9's
// {use_context7, execute_step, checkpoint, mcp_call} set; splitting them
// into named methods (rather than one invoke(verb, payload)) is the
// richer typing the spec explicitly allows without changing engine
// semantics.
type Callback interface {
	// UseContext7 preloads documentation for the named libraries before a
	// skill's steps run. Errors are logged by the caller and never abort
	// execution.
	UseContext7(ctx context.Context, libs []string) error

	// ExecuteStep delegates one `agent`-typed step. A nil result with a
	// nil error means "treat as success with no output".
	ExecuteStep(ctx context.Context, step specmodel.Step, inputs map[string]any) (*specmodel.StepResult, error)

	// Checkpoint presents message to the host and reports whether
	// execution should continue.
	Checkpoint(ctx context.Context, message string) (bool, error)

	// MCPCall delegates one `mcp`-typed step to an MCP tool.
	MCPCall(ctx context.Context, server, tool string, args map[string]any) (any, error)
}
