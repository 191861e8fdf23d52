package rsx

import (
	"strings"

	"github.com/rsxlab/rsx/token"
)

// NodeName is the name of a tag or attribute key. It is a closed sum
// over *PathName, *PunctName and *DynamicName.
type NodeName interface {
	String() string
	NameSpan() token.Span
	nodeName()
}

// PathName is a plain identifier like div, or a dot-joined segment
// sequence like some.path.
type PathName struct {
	Segments []string
	span     token.Span
}

func (n *PathName) nodeName()            {}
func (n *PathName) NameSpan() token.Span { return n.span }

func (n *PathName) String() string {
	return strings.Join(n.Segments, ".")
}

// PunctName is a name whose identifiers are joined by separator
// punctuation, e.g. data-foo or on:click. Each pair keeps its own
// separator so mixed names like a-b:c survive round-tripping.
type PunctName struct {
	Idents []string
	Seps   []byte // Seps[i] joins Idents[i] and Idents[i+1]
	span   token.Span
}

func (n *PunctName) nodeName()            {}
func (n *PunctName) NameSpan() token.Span { return n.span }

func (n *PunctName) String() string {
	var b strings.Builder
	for i, id := range n.Idents {
		if i > 0 {
			b.WriteByte(n.Seps[i-1])
		}
		b.WriteString(id)
	}
	return b.String()
}

// DynamicName is a name computed by a code block, e.g. <{expr} />.
type DynamicName struct {
	Block *Block
}

func (n *DynamicName) nodeName()            {}
func (n *DynamicName) NameSpan() token.Span { return n.Block.Span() }

func (n *DynamicName) String() string {
	if p := n.Block.Valid(); p != nil {
		return "{" + p.Source + "}"
	}
	if p, ok := n.Block.Payload.(*InvalidPayload); ok {
		return "{" + token.Stringify(p.Tokens) + "}"
	}
	return "{}"
}

// NamesEqual reports whether two names render to the same text. Dynamic
// names compare by their source text, matching the open/close tag pair
// <{expr}>...</{expr}>.
func NamesEqual(a, b NodeName) bool {
	if a == nil || b == nil {
		return false
	}
	return a.String() == b.String()
}
