package types

import (
	"errors"
	"fmt"
)

// DiagnosticKind classifies a diagnostic by the phase or rule that raised it.
type DiagnosticKind int

const (
	KindLexical DiagnosticKind = iota
	KindSyntax
	KindExpression
	KindReference
	KindRedeclaration
	KindType
)

func (k DiagnosticKind) String() string {
	switch k {
	case KindLexical:
		return "Lexical"
	case KindSyntax:
		return "Syntax"
	case KindExpression:
		return "Expression"
	case KindReference:
		return "Reference"
	case KindRedeclaration:
		return "Redeclaration"
	case KindType:
		return "Type"
	default:
		return "Unknown"
	}
}

// MarshalText lets diagnostics serialize their kind by name.
func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Diagnostic is a single fatal error raised by the parser or evaluator.
// Line is 0 when no source position is known.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Message string         `json:"message" yaml:"message"`
	Line    uint           `json:"line,omitempty" yaml:"line,omitempty"`
}

// Error implements the error interface: "<Kind> error: <message> (line N)".
func (d *Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s error: %s (line %d)", d.Kind, d.Message, d.Line)
	}
	return fmt.Sprintf("%s error: %s", d.Kind, d.Message)
}

// AtLine sets the line if none is recorded yet and returns d.
func (d *Diagnostic) AtLine(line uint) *Diagnostic {
	if d.Line == 0 {
		d.Line = line
	}
	return d
}

// HasKind reports whether the diagnostic has the given kind.
func (d *Diagnostic) HasKind(kind DiagnosticKind) bool {
	return d.Kind == kind
}

// AsDiagnostic extracts a *Diagnostic from err's chain.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// Common diagnostic constructors.

// NewLexicalError creates a Lexical diagnostic.
func NewLexicalError(msg string) *Diagnostic {
	return &Diagnostic{Kind: KindLexical, Message: msg}
}

// NewSyntaxError creates a Syntax diagnostic.
func NewSyntaxError(msg string) *Diagnostic {
	return &Diagnostic{Kind: KindSyntax, Message: msg}
}

// NewExpressionError creates an Expression diagnostic.
func NewExpressionError(msg string) *Diagnostic {
	return &Diagnostic{Kind: KindExpression, Message: msg}
}

// NewReferenceError creates a Reference diagnostic for an unbound name.
func NewReferenceError(name string) *Diagnostic {
	return &Diagnostic{Kind: KindReference, Message: fmt.Sprintf("'%s' is not defined", name)}
}

// NewRedeclarationError creates a Redeclaration diagnostic.
func NewRedeclarationError(name string) *Diagnostic {
	return &Diagnostic{Kind: KindRedeclaration, Message: fmt.Sprintf("'%s' is already declared in this scope", name)}
}

// NewTypeError creates a Type diagnostic.
func NewTypeError(msg string) *Diagnostic {
	return &Diagnostic{Kind: KindType, Message: msg}
}

// NewStepLimitError creates the Expression diagnostic raised when a program
// runs longer than its step budget.
func NewStepLimitError(max int) *Diagnostic {
	return &Diagnostic{Kind: KindExpression, Message: fmt.Sprintf("step limit exceeded (max %d)", max)}
}

// NewCallDepthError creates the Expression diagnostic raised on runaway
// recursion.
func NewCallDepthError(max int) *Diagnostic {
	return &Diagnostic{Kind: KindExpression, Message: fmt.Sprintf("call depth limit exceeded (max %d)", max)}
}
