package guard

import (
	"path/filepath"
	"strings"

	"github.com/jorge-barreto/skillctl/internal/engineerr"
)

// ResolveWithin resolves candidate (absolute or relative to base) to its
// canonical absolute form and requires it to lie within base. Symlinks are
// not followed — containment is checked lexically against the cleaned
// absolute path, which is sufficient for the templated paths skills
// declare (working directories, rollback targets) and avoids a syscall on
// every step dispatch.
func ResolveWithin(base, candidate string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	absBase = filepath.Clean(absBase)

	var absCandidate string
	if filepath.IsAbs(candidate) {
		absCandidate = filepath.Clean(candidate)
	} else {
		absCandidate = filepath.Clean(filepath.Join(absBase, candidate))
	}

	if absCandidate != absBase && !strings.HasPrefix(absCandidate, absBase+string(filepath.Separator)) {
		return "", engineerr.New(engineerr.KindPathEscape, "path %q escapes base %q", candidate, base)
	}
	return absCandidate, nil
}
