package gridfault

import (
	"fmt"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseConstruct Phase = "construct" // grid validation
	PhaseSlice     Phase = "slice"     // sub-view lookup
	PhaseSelect    Phase = "select"    // selection validate-and-map
	PhasePool      Phase = "pool"      // keyed get-or-create
	PhaseApply     Phase = "apply"     // applier transitions
	PhaseDispose   Phase = "dispose"   // explicit close
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNilPointer      Kind = "nil_pointer"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindNotDivisible    Kind = "not_divisible"
	KindIncompatible    Kind = "incompatible"
	KindInUse           Kind = "in_use"
	KindFactory         Kind = "factory"
)

// Error is the structured error type used by every sprite grid package
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Field  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Field != "" {
		b.WriteString(" at ")
		b.WriteString(e.Field)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Field sets the offending parameter name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// InvalidArgument creates an invalid argument error for a named parameter
func InvalidArgument(phase Phase, field string, value any, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Field:  field,
		Value:  value,
		Detail: detail,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, field string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Field:  field,
		Detail: "nil pointer",
	}
}

// OutOfBounds creates an out of bounds error for a coordinate pair
func OutOfBounds(phase Phase, value any, columns, rows int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Value:  value,
		Detail: fmt.Sprintf("%v outside grid of %d columns x %d rows", value, columns, rows),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
