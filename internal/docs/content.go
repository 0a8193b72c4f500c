package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with skillctl",
		Content: topicQuickstart,
	},
	{
		Name:    "skills",
		Title:   "Skill Reference",
		Summary: "skill.json schema, inputs, prereqs, steps, verification, rollback",
		Content: topicSkills,
	},
	{
		Name:    "workflows",
		Title:   "Workflow Reference",
		Summary: "workflow.json schema, phases, conditions, checkpoints",
		Content: topicWorkflows,
	},
	{
		Name:    "steps",
		Title:   "Step Types",
		Summary: "bash, python, agent, checkpoint, and mcp step dispatch",
		Content: topicSteps,
	},
	{
		Name:    "guard",
		Title:   "Path & Input Guard",
		Summary: "Template interpolation, path containment, and secret redaction",
		Content: topicGuard,
	},
	{
		Name:    "outputs",
		Title:   "Outputs Directory",
		Summary: "Structure of outputs/ and what gets persisted",
		Content: topicOutputs,
	},
}

const topicQuickstart = `Quick Start
===========

1. Scaffold a project:

    cd your-project
    skillctl init

   This creates SKILLS/example/skill.json and WORKFLOWS/example-workflow.json.

2. List what's registered:

    skillctl list

3. Check a skill's inputs and prerequisites without running its steps:

    skillctl run example --dry-run

4. Run it for real, with inputs:

    skillctl run example --inputs '{"target_dir": "."}'

5. Run a multi-phase workflow:

    skillctl run-workflow release --inputs '{"env": "staging"}'

6. Check the state of a paused or failed workflow, and resume a paused one:

    skillctl status release
    skillctl resume release

7. Ask for help diagnosing a failure:

    skillctl diagnose release

CLI Flags
---------

  skillctl run <skill> --inputs <json>       Run a skill
  skillctl run <skill> --dry-run             Check inputs and prereqs, run no steps
  skillctl run-workflow <workflow> --inputs <json>
  skillctl resume <workflow>                 Resume a paused workflow
  skillctl status <workflow>                 Show a workflow's persisted state
  skillctl list                              List skills and workflows
  skillctl info <name>                       Show one skill or workflow in detail
  skillctl diagnose <workflow>                Ask claude to diagnose a failed run
  skillctl init                              Scaffold SKILLS/ and WORKFLOWS/
  skillctl docs                              List documentation topics
  skillctl docs <topic>                      Show a documentation topic
`

const topicSkills = `Skill Reference
===============

A skill is a single unit of work declared in SKILLS/<name>/skill.json.

Top-level fields
----------------

  name               string    Required. Unique skill name.
  version            string    Required. Semver-ish version string.
  description        string    Human-readable summary.
  autonomy           string    "delegado", "co-pilot", or "asistente".
                                Informational — surfaced in logs and
                                skillctl info, never branches dispatch.
  inputs             map       Name -> input spec (required, type, enum, default).
  pre_requisites     list      Probes checked before any step runs.
  context7_required  list      Library names preloaded via the agent callback's
                                UseContext7 before the first step, best-effort.
  steps              list      Required. Ordered list of steps.
  verification       list      Probes checked after all steps succeed.
  rollback           list      Steps to run, in declaration order, if a step
                                fails partway through.

Step fields
-----------

  id                 string    Required. Unique within the skill.
  type               string    Required. "bash", "python", "agent",
                                "checkpoint", or "mcp".
  cmd                string    Shell or Python source (bash/python steps);
                                interpolated with the skill's resolved inputs.
  working_dir        string    Relative to the runner's containment root.
                                Defaults to ".". Resolved paths must stay
                                within the root — see the guard topic.
  env                map       Extra environment variables, overlaid on the
                                process environment; step wins on conflict.
  timeout            int       Seconds. Defaults to 300.
  retry              int       Extra attempts beyond the first on failure.
  checkpoint_message string    Message shown to the operator for checkpoint
                                steps. Falls back to description if unset.
  mcp_server         string    MCP server name (mcp steps only).
  mcp_tool           string    MCP tool name (mcp steps only).
  mcp_args           map       Arguments passed to the MCP tool call.

Validation Rules
----------------

- Skill and step names must be unique within their scope.
- Every {name} referenced by a template must be present in the skill's
  resolved inputs (passed or defaulted) when the step runs; otherwise
  the step fails with MissingInput.
- python steps always run as an isolated python3 child process — never
  evaluated in-process.
- Rollback runs only for step ids already recorded in steps_completed,
  plus any entry literally named "cleanup", regardless of where
  execution stopped.
`

const topicWorkflows = `Workflow Reference
==================

A workflow chains skills into phases, declared in WORKFLOWS/<name>.json.

Top-level fields
----------------

  name          string    Required. Unique workflow name.
  version       string    Required.
  inputs        map       Name -> input spec, same shape as a skill's.
  phases        list      Required. Ordered list of phases.
  on_complete   object    update_context: bool, default true.

Phase fields
------------

  name                string    Required. Unique within the workflow.
  skill                string    Required. Name of a registered skill.
  inputs               map       Extra inputs overlaid on the workflow's
                                  resolved inputs for this phase only.
  condition             object    Evaluated before running; see below.
  on_failure            string    "stop" (default), "continue", or
                                  "skip_remaining".
  checkpoint            bool      Pause for operator confirmation after this
                                  phase completes.
  checkpoint_message    string    Message shown at the pause point.

Conditions
----------

  input_equals      key, value         true if inputs[key] == value
  input_truthy      key                true if inputs[key] is a non-zero,
                                        non-empty, non-false value
  previous_success  key (phase name)   true if that phase ran and succeeded
  file_exists       path               true if the interpolated path exists
  (any other type)                     evaluates true — unknown condition
                                        kinds are permissive by default

Resume Semantics
-----------------

A paused or failed workflow persists a WorkflowState to
outputs/workflow_state/<name>_state.json. Resuming a paused workflow
restores the phase index, accumulated phase outputs, and
completed/failed phase lists — but any input explicitly passed to the
resume command overrides the restored value for that key. A failed or
cancelled state is not restored: resume runs such a workflow from its
first phase. A successful run clears the state file; a failed or
paused run keeps it.
`

const topicSteps = `Step Types
==========

bash
----
Interpolates cmd against the skill's resolved inputs, resolves working_dir
within the containment root, and runs it via "bash -c" with a per-step
timeout. Combined stdout+stderr is captured and truncated in the
persisted log.

python
------
Identical dispatch to bash, except the interpreter is "python3 -c".
Python steps always run as an isolated child process — evaluating
Python in-process is a defect, not an optimization.

agent
-----
Delegates to the configured Callback's ExecuteStep, passing the
interpolated cmd as a prompt. Requires a callback to be configured;
a skill with an agent step run without one fails with
CallbackMissing.

checkpoint
----------
Prints (or delegates to the callback's Checkpoint) a yes/no prompt.
With no callback configured, checkpoints auto-pass — this lets skills
with checkpoints run unattended in CI contexts that never supply an
interactive callback.

mcp
---
Delegates to the callback's MCPCall with mcp_server, mcp_tool, and
mcp_args as declared (mcp_args is not interpolated). Requires a
callback; CallbackMissing otherwise.

Retry
-----
A step retries up to its retry count on failure (total attempts =
1 + retry). Retries stop early if the run's context is already done
(e.g. the run was interrupted).
`

const topicGuard = `Path & Input Guard
===================

Template Interpolation
----------------------
Steps, conditions, and probes reference inputs with {name} braces, not
shell-style ${name} or $name. Interpolation fails closed: a reference
to a name that isn't present in the resolved inputs is an error, not a
silent empty string.

Path Containment
-----------------
Every working_dir a step or rollback entry uses is resolved relative
to the runner's containment root and checked against it before use. A
path that would escape the root (via ../ segments or an absolute path
outside it) fails with PathEscape rather than being silently clamped.

Secret Redaction
-----------------
Inputs are redacted before they are written to a persisted execution
log: values for input names that contain a secret-like token anywhere
in the name (password, secret, token, api_key, auth, credential,
session, jwt, and similar) are replaced with a fixed placeholder. Redaction only affects what's written to disk — the
unredacted values are still used to run the skill.
`

const topicOutputs = `Outputs Directory
===================

outputs/
  skill_logs/
    <skill>_<YYYYmmdd_HHMMSS>.json   One file per skill execution.
  workflow_state/
    <workflow>_state.json            Present only while paused or failed;
                                      removed on a successful run.

Skill Execution Log
--------------------
Each skill run writes one JSON file recording: timestamp, skill name
and version, autonomy, redacted inputs, whether it was a dry run, one
entry per step (id, type, status, duration, truncated output, retries
used), the verification outcome, overall success, total duration, and
the steps_completed / steps_failed lists used by rollback and by
diagnose.

Workflow State
--------------
Captures enough to resume: workflow name and version, status
(paused/failed/cancelled), current phase index, the resolved inputs
at pause time, completed/failed phase name lists, accumulated phase
outputs, start and update times, and the last error if any. skillctl diagnose reads this file plus the failing phase's most
recent skill log to build its prompt.

Project Context
----------------
On workflow completion, if on_complete.update_context is true (the
default), a short summary block — status, phases completed, phases
failed, duration — is inserted into PROJECT_CONTEXT.md in the
directory named by the target_dir or project_path input (the current
directory if neither is set), just before a "## Next Steps" heading if one exists. A
missing PROJECT_CONTEXT.md is logged as a warning, never a workflow
failure.
`
