package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse   Phase = "parse"   // module decoding and index space construction
	PhaseBind    Phase = "bind"    // import binding policy
	PhaseDeclare Phase = "declare" // backend symbol declaration
	PhaseQuery   Phase = "query"   // declaration lookups
)

// Kind categorizes the error
type Kind string

const (
	KindUnresolvedImport Kind = "unresolved_import"
	KindDeclaration      Kind = "declaration"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindInvalidModule    Kind = "invalid_module"
	KindInvalidData      Kind = "invalid_data"
	KindConflict         Kind = "conflict"
	KindInternal         Kind = "internal"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Entity string // "function" or "table"
	Module string // import module name
	Field  string // import field name
	Symbol string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Entity != "" {
		b.WriteByte(' ')
		b.WriteString(e.Entity)
	}

	if e.Module != "" || e.Field != "" {
		fmt.Fprintf(&b, " import %q.%q", e.Module, e.Field)
	}

	if e.Symbol != "" {
		fmt.Fprintf(&b, " symbol %q", e.Symbol)
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

// Entity sets the entity kind
func (b *Builder) Entity(entity string) *Builder {
	b.err.Entity = entity
	return b
}

// Import sets the import pair
func (b *Builder) Import(module, field string) *Builder {
	b.err.Module = module
	b.err.Field = field
	return b
}

// Symbol sets the backend symbol name
func (b *Builder) Symbol(symbol string) *Builder {
	b.err.Symbol = symbol
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

// UnresolvedImport reports an import pair with no binding.
func UnresolvedImport(module, field string, cause error) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindUnresolvedImport,
		Entity: "function",
		Module: module,
		Field:  field,
		Detail: "no binding for import",
		Cause:  cause,
	}
}

// DeclarationFailed reports a symbol the backend refused to declare.
func DeclarationFailed(entity, symbol string, cause error) *Error {
	return &Error{
		Phase:  PhaseDeclare,
		Kind:   KindDeclaration,
		Entity: entity,
		Symbol: symbol,
		Cause:  cause,
	}
}

// OutOfBounds creates an out of bounds error for an entity index
func OutOfBounds(entity string, index uint32, count int) *Error {
	return &Error{
		Phase:  PhaseQuery,
		Kind:   KindOutOfBounds,
		Entity: entity,
		Detail: fmt.Sprintf("index %d out of bounds (count %d)", index, count),
		Value:  index,
	}
}

// InvalidModule reports parsed module data that cannot be assigned index spaces.
func InvalidModule(format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidModule,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Internal reports a broken internal invariant.
func Internal(phase Phase, format string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: fmt.Sprintf(format, args...),
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

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsUnresolvedImport reports whether err is an unresolved import binding.
func IsUnresolvedImport(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindUnresolvedImport
}

// IsDeclarationFailure reports whether err is a rejected backend declaration.
func IsDeclarationFailure(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindDeclaration
}

// IsOutOfBounds reports whether err is an index out of bounds.
func IsOutOfBounds(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindOutOfBounds
}
