package registry

import "fmt"

// SchemaValidatorMissingError is returned when a schema file is present on
// disk but no Validator was wired into the Loader. Per spec this aborts
// the whole registry load rather than silently skipping validation.
type SchemaValidatorMissingError struct {
	SchemaPath string
}

func (e *SchemaValidatorMissingError) Error() string {
	return fmt.Sprintf("registry: schema %q present but no schema validator is configured", e.SchemaPath)
}

// ValidationError wraps a single file's schema validation failure. Loading
// continues for other files; the caller surfaces these as warnings.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: schema validation failed: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
