package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // type registration
	PhaseEncode   Phase = "encode"   // Go value to wire tree
	PhaseDecode   Phase = "decode"   // wire tree to Go value
	PhasePatch    Phase = "patch"    // deferred reference resolution
	PhaseFormat   Phase = "format"   // wire tree to/from bytes
	PhaseCLI      Phase = "cli"      // command line tooling
)

// Kind categorizes the error
type Kind string

const (
	KindNameConflict        Kind = "name_conflict"
	KindFrozen              Kind = "frozen"
	KindUnknownValue        Kind = "unknown_value"
	KindInvalidData         Kind = "invalid_data"
	KindOutOfBounds         Kind = "out_of_bounds"
	KindUnresolvedReference Kind = "unresolved_reference"
	KindTypeMismatch        Kind = "type_mismatch"
	KindUnsupported         Kind = "unsupported"
	KindNotFound            Kind = "not_found"
	KindInvalidInput        Kind = "invalid_input"
)

// Error is the structured error type used throughout codablejson
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Tag    string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "/"))
	}

	if e.GoType != "" || e.Tag != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Tag != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", tag ")
			b.WriteString(e.Tag)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("tag ")
			b.WriteString(e.Tag)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Tag != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
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

// Path sets the wire path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Tag sets the wire tag name
func (b *Builder) Tag(name string) *Builder {
	b.err.Tag = name
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

// Convenience constructors for common error patterns

// NameConflict creates an error for a second, different type registered under a taken name
func NameConflict(name string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindNameConflict,
		Tag:    name,
		Detail: fmt.Sprintf("other type with name %q already registered", name),
	}
}

// Frozen creates an error for registration attempts on a read-only registry
func Frozen(name string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindFrozen,
		Tag:    name,
		Detail: "cannot register types on the default coder, create one with codablejson.New",
	}
}

// UnknownValue creates an error for a value no registered type can encode
func UnknownValue(path []string, value any, goType string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnknownValue,
		Path:   path,
		GoType: goType,
		Detail: "no matching type found",
		Value:  value,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, tag string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Tag:    tag,
	}
}

// UnresolvedReference creates an error for a reference id with no decoded target
func UnresolvedReference(path []string, id int) *Error {
	return &Error{
		Phase:  PhasePatch,
		Kind:   KindUnresolvedReference,
		Path:   path,
		Detail: fmt.Sprintf("no node carries reference id %d", id),
		Value:  id,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
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

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(format string, cause error) *Error {
	return &Error{
		Phase:  PhaseFormat,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", format),
		Cause:  cause,
	}
}
