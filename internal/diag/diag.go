// Package diag defines the Diagnostic type shared by every compiler phase:
// each diagnostic carries a source file, a resolved span, a severity, and a
// message, using a single Kind enum shared across lexer/parser/type errors
// instead of being scoped to one phase.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/naml-lang/namlc/internal/source"
)

// Severity distinguishes blocking errors from advisory warnings. Only
// errors block codegen.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Kind names the category of diagnostic, spanning all phases.
type Kind string

const (
	// Lex errors
	KindUnterminatedString  Kind = "unterminated_string"
	KindUnterminatedComment Kind = "unterminated_comment"
	KindInvalidByte         Kind = "invalid_byte"

	// Parse errors
	KindExpectedToken  Kind = "expected_token"
	KindExpectedItem   Kind = "expected_item"
	KindInvalidConstruct Kind = "invalid_construct"

	// Type errors
	KindUndefinedVariable Kind = "undefined_variable"
	KindUndefinedMethod   Kind = "undefined_method"
	KindUndefinedField    Kind = "undefined_field"
	KindUndefinedType     Kind = "undefined_type"
	KindArityMismatch     Kind = "arity_mismatch"
	KindTypeArgMismatch   Kind = "type_arg_mismatch"
	KindTypeMismatch      Kind = "type_mismatch"
	KindInvalidBinaryOp   Kind = "invalid_binary_op"
	KindNonCallable       Kind = "non_callable"
	KindNonIndexable      Kind = "non_indexable"
	KindNonIterable       Kind = "non_iterable"
	KindBreakOutsideLoop  Kind = "break_outside_loop"
	KindAmbiguousMethod   Kind = "ambiguous_method"
	KindCustom            Kind = "custom"

	// Internal invariant violations (compiler-bug diagnostics)
	KindInternal Kind = "internal"
)

// Diagnostic is the unit every phase collects and continues past where
// possible.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Span     source.Span
	Message  string
}

func (d Diagnostic) Error() string { return d.Message }

// List accumulates diagnostics for one compile() invocation and renders
// them in source order.
type List struct {
	mu    sync.Mutex
	items []Diagnostic
	files *source.Map
}

// NewList creates an empty list that resolves spans against files.
func NewList(files *source.Map) *List {
	return &List{files: files}
}

// Add is safe to call from multiple goroutines at once, since the driver
// parses files concurrently and every goroutine reports into the same list.
func (l *List) Add(sev Severity, kind Kind, sp source.Span, format string, args ...interface{}) {
	d := Diagnostic{
		Severity: sev,
		Kind:     kind,
		Span:     sp,
		Message:  fmt.Sprintf(format, args...),
	}
	l.mu.Lock()
	l.items = append(l.items, d)
	l.mu.Unlock()
}

func (l *List) Errorf(kind Kind, sp source.Span, format string, args ...interface{}) {
	l.Add(Error, kind, sp, format, args...)
}

func (l *List) Warnf(kind Kind, sp source.Span, format string, args ...interface{}) {
	l.Add(Warning, kind, sp, format, args...)
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
// Only errors block codegen; warnings do not.
func (l *List) HasErrors() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Items returns diagnostics sorted into source order (file, then offset).
func (l *List) Items() []Diagnostic {
	l.mu.Lock()
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	l.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Span.File != out[j].Span.File {
			return out[i].Span.File < out[j].Span.File
		}
		return out[i].Span.Start < out[j].Span.Start
	})
	return out
}

// Format renders one diagnostic as "path:line:col: severity[kind]: message".
func (l *List) Format(d Diagnostic) string {
	loc := "?"
	if l.files != nil {
		loc = l.files.Describe(d.Span)
	}
	return fmt.Sprintf("%s: %s[%s]: %s", loc, d.Severity, d.Kind, d.Message)
}
