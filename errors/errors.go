package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDefine   Phase = "define"   // layout resolution
	PhaseParse    Phase = "parse"    // definition file parsing
	PhaseGenerate Phase = "generate" // Go source generation
	PhaseHost     Phase = "host"     // host module registration
	PhaseLookup   Phase = "lookup"   // registry and field lookups
)

// Kind categorizes the error
type Kind string

const (
	KindOverflow       Kind = "overflow"
	KindZeroWidth      Kind = "zero_width"
	KindDuplicateField Kind = "duplicate_field"
	KindUnsupported    Kind = "unsupported"
	KindTypeMismatch   Kind = "type_mismatch"
	KindInvalidInput   Kind = "invalid_input"
	KindInvalidData    Kind = "invalid_data"
	KindFieldUnknown   Kind = "field_unknown"
	KindNotFound       Kind = "not_found"
	KindRegistration   Kind = "registration"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Base   string
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
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.Base != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Base != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", base ")
			b.WriteString(e.Base)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("base ")
			b.WriteString(e.Base)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Base != "" {
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

// Path sets the definition path, usually bitfield then field name
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Base sets the base type name
func (b *Builder) Base(t string) *Builder {
	b.err.Base = t
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

// CapacityExceeded creates an error for a layout that does not fit its base
func CapacityExceeded(path []string, base string, used, capacity int) *Error {
	return &Error{
		Phase:  PhaseDefine,
		Kind:   KindOverflow,
		Path:   path,
		Base:   base,
		Detail: fmt.Sprintf("%d bits declared, capacity is %d", used, capacity),
		Value:  used,
	}
}

// ZeroWidth creates an error for a field declared with a non-positive width
func ZeroWidth(path []string, width int) *Error {
	return &Error{
		Phase:  PhaseDefine,
		Kind:   KindZeroWidth,
		Path:   path,
		Detail: fmt.Sprintf("width %d is not positive", width),
		Value:  width,
	}
}

// DuplicateField creates an error for a field name declared twice
func DuplicateField(path []string, name string, first int) *Error {
	return &Error{
		Phase:  PhaseDefine,
		Kind:   KindDuplicateField,
		Path:   path,
		Detail: fmt.Sprintf("field %q already declared at position %d", name, first),
		Value:  name,
	}
}

// UnsupportedBase creates an error for an unrecognized base type
func UnsupportedBase(phase Phase, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Base:   name,
		Detail: "not a supported unsigned base type",
		Value:  name,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, base string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Base:   base,
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

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   path,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Path:   path,
		Detail: detail,
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

// Registration creates a registration error
func Registration(phase Phase, name string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s", name),
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
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
