package rsx

import (
	"fmt"

	"github.com/rsxlab/rsx/token"
)

// ErrKind classifies a Diagnostic.
type ErrKind int

const (
	ErrUnterminatedOpenTag ErrKind = iota
	ErrMismatchedCloseTag
	ErrUnexpectedCloseTag
	ErrInvalidNodeName
	ErrMissingAttrValue
	ErrInvalidExpr
	ErrUnterminatedFragment
	ErrTopLevelCount
	ErrTopLevelKind
	ErrUnexpectedEOI
)

func (k ErrKind) String() string {
	switch k {
	case ErrUnterminatedOpenTag:
		return "unterminated open tag"
	case ErrMismatchedCloseTag:
		return "mismatched close tag"
	case ErrUnexpectedCloseTag:
		return "unexpected close tag"
	case ErrInvalidNodeName:
		return "invalid node name"
	case ErrMissingAttrValue:
		return "missing attribute value"
	case ErrInvalidExpr:
		return "invalid embedded expression"
	case ErrUnterminatedFragment:
		return "unterminated fragment"
	case ErrTopLevelCount:
		return "top level cardinality violation"
	case ErrTopLevelKind:
		return "top level kind violation"
	case ErrUnexpectedEOI:
		return "unexpected end of input"
	}
	return "unknown"
}

// SpanLabel is a secondary location attached to a Diagnostic.
type SpanLabel struct {
	Span  token.Span
	Label string
}

// Diagnostic is a structured, recoverable parse error with a primary
// span and optional secondary spans. It implements error so single
// diagnostics can travel as plain errors in strict mode.
type Diagnostic struct {
	Kind      ErrKind
	Message   string
	Span      token.Span
	Secondary []SpanLabel
}

func (d Diagnostic) Error() string {
	if d.Span.Line == 0 {
		return d.Message
	}
	return fmt.Sprintf("%d:%d: %s", d.Span.Line, d.Span.Column, d.Message)
}
