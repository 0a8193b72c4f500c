package ux

import (
	"fmt"

	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

// RenderWorkflowStatus prints the full status display for a workflow,
// given its spec and the last persisted state (nil if it has never run
// or has already completed and cleared its state file).
func RenderWorkflowStatus(wf *specmodel.Workflow, st *specmodel.WorkflowState) {
	fmt.Printf("%sWorkflow:%s %s v%s\n", Bold, Reset, wf.Name, wf.Version)

	if st == nil {
		fmt.Printf("%sState:%s    %sno run recorded (never started, or completed and cleared)%s\n", Bold, Reset, Dim, Reset)
		return
	}

	if st.CurrentPhaseIndex >= len(wf.Phases) {
		fmt.Printf("%sState:%s    %s%scompleted%s\n", Bold, Reset, Green, Bold, Reset)
	} else {
		phase := wf.Phases[st.CurrentPhaseIndex]
		fmt.Printf("%sState:%s    %d/%d (%s) — %s\n",
			Bold, Reset, st.CurrentPhaseIndex+1, len(wf.Phases), phase.Name, st.Status)
	}

	if len(st.PhasesCompleted) > 0 {
		fmt.Printf("\n%sCompleted:%s\n", Bold, Reset)
		for _, name := range st.PhasesCompleted {
			fmt.Printf("  %s%s%s done\n", Green, name, Reset)
		}
	}

	if len(st.PhasesFailed) > 0 {
		fmt.Printf("\n%sFailed:%s\n", Bold, Reset)
		for _, name := range st.PhasesFailed {
			fmt.Printf("  %s%s%s failed\n", Red, name, Reset)
		}
	}

	fmt.Printf("\n%sRemaining:%s\n", Bold, Reset)
	for i := st.CurrentPhaseIndex; i < len(wf.Phases); i++ {
		p := wf.Phases[i]
		marker := "  "
		if i == st.CurrentPhaseIndex {
			marker = fmt.Sprintf("%s→%s ", Yellow, Reset)
		}
		fmt.Printf("  %s%-20s %s(skill: %s)%s\n", marker, p.Name, Dim, p.Skill, Reset)
	}

	if st.Error != "" {
		fmt.Printf("\n%sError:%s %s\n", Bold, Reset, st.Error)
	}
	fmt.Println()
}
