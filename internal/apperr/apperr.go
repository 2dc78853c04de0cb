// Package apperr defines the error taxonomy shared across the engine
// and its transport adapter: a small set of named kinds, each mapping
// to a stable code in the tool response envelope.
package apperr

import "fmt"

// Kind is one of the recognized error categories. Kinds are compared by
// value, never by string message.
type Kind string

const (
	KindValidation           Kind = "VALIDATION_ERROR"
	KindNotFound             Kind = "RESOURCE_NOT_FOUND"
	KindPrerequisiteNotMet   Kind = "PREREQUISITE_NOT_MET"
	KindCycleDetected        Kind = "CYCLE_DETECTED"
	KindCascadeDepthExceeded Kind = "CASCADE_DEPTH_EXCEEDED"
	KindStore                Kind = "STORE_ERROR"
	KindConfig               Kind = "CONFIG_ERROR"
	KindInternal             Kind = "INTERNAL_ERROR"
)

// Error is the engine's single error type: a kind, a human-readable
// message, and optional structured details (a cycle path, a
// suggestions list) the transport layer can pass through unmodified.
type Error struct {
	Kind    Kind
	Message string
	Details any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithDetails attaches structured details and returns the same error
// for chaining at the construction site.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// Validation, NotFound, PrerequisiteNotMet, CycleDetected and Store are
// constructors for the kinds the tool layer surfaces most often.
func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func PrerequisiteNotMet(reason string, suggestions []string) *Error {
	return New(KindPrerequisiteNotMet, reason).WithDetails(suggestions)
}

func CycleDetected(path any) *Error {
	return New(KindCycleDetected, "creating this dependency would introduce a cycle").WithDetails(path)
}

func Store(err error) *Error {
	return New(KindStore, err.Error())
}

func Internal(err error) *Error {
	return New(KindInternal, err.Error())
}

// Is reports whether err is an *Error of the given kind, unwrapping
// plain errors to false rather than panicking.
func Is(err error, kind Kind) bool {
	ae, ok := err.(*Error)
	return ok && ae.Kind == kind
}
