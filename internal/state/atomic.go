// Package state persists skill logs and workflow state under the
// outputs/ directory layout fixed by spec.md §6: outputs/skill_logs/ and
// outputs/workflow_state/, both written with a temp-file-then-rename so a
// crash mid-write never leaves a corrupt file on disk.
package state

import (
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path by first writing a sibling temp file
// then renaming it into place. Exported so other packages that persist
// their own file shapes (skill execution logs) get the same crash safety
// without duplicating it.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return writeFileAtomic(path, data, perm)
}

// writeFileAtomic is the unexported implementation used by this package's
// own Save* helpers.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
