package workflow

import (
	"os"
	"reflect"

	"github.com/jorge-barreto/skillctl/internal/guard"
	"github.com/jorge-barreto/skillctl/internal/specmodel"
)

// evalCondition evaluates a Phase's condition against the current
// workflow inputs and accumulated phase outputs. Unknown condition types
// evaluate true — a permissive default so new condition kinds can be
// added without breaking existing workflows (spec.md §3).
func evalCondition(cond *specmodel.Condition, inputs map[string]any, phaseOutputs map[string]specmodel.PhaseOutput) bool {
	if cond == nil {
		return true
	}
	switch cond.Type {
	case "input_equals":
		return reflect.DeepEqual(inputs[cond.Key], cond.Value)
	case "input_truthy":
		return truthy(inputs[cond.Key])
	case "previous_success":
		out, ok := phaseOutputs[cond.Key]
		return ok && out.Success
	case "file_exists":
		path, err := guard.Interpolate(cond.Path, inputs)
		if err != nil {
			return false
		}
		_, statErr := os.Stat(path)
		return statErr == nil
	default:
		return true
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
