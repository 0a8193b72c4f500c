// Package ux renders the engine's interactive CLI progress output:
// colored phase/step headers, pass/fail markers, and checkpoint prompts.
// It has no bearing on the persisted JSON logs, which are the structured
// record of an execution.
package ux

import (
	"fmt"
	"time"
)

const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// StepHeader prints a timestamped header before dispatching one step.
func StepHeader(index, total int, stepID, stepType string) {
	fmt.Printf("%s[%s]%s  %sStep %d/%d: %s (%s)%s\n",
		Dim, timestamp(), Reset, Bold, index+1, total, stepID, stepType, Reset)
}

// StepComplete prints a step completion message.
func StepComplete(index int, duration time.Duration) {
	m := int(duration.Minutes())
	s := int(duration.Seconds()) % 60
	fmt.Printf("%s[%s]%s  %s✓ step %d complete (%dm %02ds)%s\n",
		Dim, timestamp(), Reset, Green, index+1, m, s, Reset)
}

// StepFail prints a step failure message.
func StepFail(index int, stepID, errMsg string) {
	fmt.Printf("%s[%s]%s  %s✗ step %d (%s) failed: %s%s\n",
		Dim, timestamp(), Reset, Red, index+1, stepID, errMsg, Reset)
}

// StepRetry prints a retry attempt message.
func StepRetry(stepID string, attempt, max int) {
	fmt.Printf("%s[%s]%s  %s↺ retrying %q (attempt %d/%d)%s\n",
		Dim, timestamp(), Reset, Yellow, stepID, attempt, max, Reset)
}

// Rollback prints a rollback-in-progress message.
func Rollback(stepID string) {
	fmt.Printf("%s[%s]%s  %s↩ rolling back %q%s\n", Dim, timestamp(), Reset, Yellow, stepID, Reset)
}

// PhaseHeader prints a timestamped phase header.
func PhaseHeader(index, total int, name, skill string) {
	fmt.Printf("\n%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
	fmt.Printf("%s[%s]%s  %sPhase %d/%d: %s (skill: %s)%s\n",
		Dim, timestamp(), Reset, Bold, index+1, total, name, skill, Reset)
}

// PhaseSkip prints a phase skip message (condition not met).
func PhaseSkip(index int, name string) {
	fmt.Printf("%s[%s]%s  %s– Phase %d (%s) skipped (condition not met)%s\n",
		Dim, timestamp(), Reset, Dim, index+1, name, Reset)
}

// PhaseComplete prints a phase completion message.
func PhaseComplete(index int, name string) {
	fmt.Printf("%s[%s]%s  %s✓ Phase %d (%s) complete%s\n",
		Dim, timestamp(), Reset, Green, index+1, name, Reset)
}

// PhaseFail prints a phase failure message.
func PhaseFail(index int, name, errMsg string) {
	fmt.Printf("%s[%s]%s  %s✗ Phase %d (%s) failed: %s%s\n",
		Dim, timestamp(), Reset, Red, index+1, name, errMsg, Reset)
}

// Checkpoint prints a checkpoint message and where the state was saved.
func Checkpoint(message, stateFile string) {
	fmt.Printf("\n  %sCHECKPOINT:%s %s\n  state saved: %s\n", Bold, Reset, message, stateFile)
}

// ToolUse prints an inline tool call from an attended agent step.
func ToolUse(name, input string) {
	summary := input
	if len(summary) > 80 {
		summary = summary[:77] + "..."
	}
	fmt.Printf("  %s⚡ %s%s %s\n", Cyan, name, Reset, summary)
}

// Success prints a final success banner.
func Success(label string) {
	fmt.Printf("\n%s%s══ %s ══%s\n\n", Bold, Green, label, Reset)
}

// ResumeHint prints the resume command hint for a paused or failed workflow.
func ResumeHint(workflowName string) {
	fmt.Printf("\n%sResume:%s skillctl resume %s\n", Yellow, Reset, workflowName)
}
