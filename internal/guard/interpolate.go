// Package guard implements the Path & Input Guard: template interpolation,
// path containment checking, and secret redaction (spec.md §4.2).
package guard

import (
	"fmt"
	"strings"

	"github.com/jorge-barreto/skillctl/internal/engineerr"
)

// Interpolate replaces {name}-braced placeholders in template with the
// stringified value of the matching key in vars. A placeholder whose key
// is absent from vars produces a MissingInput error — interpolation never
// panics and never silently falls back to the process environment.
func Interpolate(template string, vars map[string]any) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(template) {
		c := template[i]
		if c == '{' {
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				// Unmatched brace: treat literally, matching the rest of
				// the template being passed through untouched.
				out.WriteByte(c)
				i++
				continue
			}
			name := template[i+1 : i+1+end]
			val, ok := lookup(vars, name)
			if !ok {
				return "", engineerr.New(engineerr.KindMissingInput, "missing input for template placeholder %q", name)
			}
			out.WriteString(val)
			i = i + 1 + end + 1
			continue
		}
		out.WriteByte(c)
		i++
	}
	return out.String(), nil
}

func lookup(vars map[string]any, name string) (string, bool) {
	v, ok := vars[name]
	if !ok {
		return "", false
	}
	return fmt.Sprint(v), true
}
