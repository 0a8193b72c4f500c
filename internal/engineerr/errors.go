// Package engineerr centralizes the error taxonomy from spec.md §7 so
// every layer of the engine reports failures with a recognizable kind
// instead of ad-hoc strings.
package engineerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the named failure modes in spec.md §7.
type Kind string

const (
	KindSkillNotFound       Kind = "SkillNotFound"
	KindWorkflowNotFound    Kind = "WorkflowNotFound"
	KindInputInvalid        Kind = "InputInvalid"
	KindPrereqFailed        Kind = "PrereqFailed"
	KindMissingInput        Kind = "MissingInput"
	KindPathEscape          Kind = "PathEscape"
	KindTimeout             Kind = "Timeout"
	KindStepNonZero         Kind = "StepNonZero"
	KindUnknownStepType     Kind = "UnknownStepType"
	KindCallbackMissing     Kind = "CallbackMissing"
	KindVerificationFailed  Kind = "VerificationFailed"
	KindRollbackError       Kind = "RollbackError"
	KindSchemaValidatorMiss Kind = "SchemaValidatorMissing"
	KindCancelled           Kind = "Cancelled"
	KindInterrupted         Kind = "Interrupted"
)

// Error pairs a Kind with a human-readable message. Every engine-surfaced
// failure is one of these so callers can branch on Kind without parsing
// strings.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New constructs an Error with the given kind and formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is an *Error of the given kind, so callers can
// use errors.Is semantics without importing this package's exact type at
// every call site.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
