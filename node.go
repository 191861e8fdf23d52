// Package rsx parses an embedded tag/markup language from a token tree
// into a node tree: elements, fragments, comments, doctype
// declarations, quoted text, raw unquoted text, and code blocks whose
// payload is an expr-lang expression.
//
// The parser is recoverable: instead of giving up at the first invalid
// token it records diagnostics and keeps producing a best-effort tree,
// so tooling can still inspect the parts that did parse.
package rsx

import (
	"github.com/rsxlab/rsx/token"
)

// NodeType identifies the variant of a Node.
type NodeType int

const (
	TypeElement NodeType = iota
	TypeText
	TypeComment
	TypeDoctype
	TypeBlock
	TypeFragment
	TypeRawText
)

func (t NodeType) String() string {
	switch t {
	case TypeElement:
		return "element"
	case TypeText:
		return "text"
	case TypeComment:
		return "comment"
	case TypeDoctype:
		return "doctype"
	case TypeBlock:
		return "block"
	case TypeFragment:
		return "fragment"
	case TypeRawText:
		return "raw-text"
	}
	return "unknown"
}

// Node is one node of the parsed tree. It is a closed sum over
// *Element, *Fragment, *Text, *RawText, *Comment, *Doctype and *Block.
// Nodes are owned exclusively by their parent container and are
// immutable after the parse, except for the Flatten transform.
type Node interface {
	Type() NodeType
	Span() token.Span
	node()
}

// Element is a named tag with optional children and an optional close
// tag. A nil CloseTag on a non-self-closing element means the close tag
// was missing and a diagnostic was recorded.
type Element struct {
	OpenTag  OpenTag
	Children []Node
	CloseTag *CloseTag
}

func (e *Element) Type() NodeType { return TypeElement }
func (e *Element) node()          {}

func (e *Element) Span() token.Span {
	s := e.OpenTag.Span
	for _, c := range e.Children {
		s = s.Join(c.Span())
	}
	if e.CloseTag != nil {
		s = s.Join(e.CloseTag.Span)
	}
	return s
}

func (e *Element) Name() NodeName { return e.OpenTag.Name }
func (e *Element) Attrs() []Attr  { return e.OpenTag.Attrs }

// Fragment is an anonymous grouping node: <> ... </>.
type Fragment struct {
	Open     FragmentOpen
	Children []Node
	Close    *FragmentClose
}

func (f *Fragment) Type() NodeType { return TypeFragment }
func (f *Fragment) node()          {}

func (f *Fragment) Span() token.Span {
	s := f.Open.Span
	for _, c := range f.Children {
		s = s.Join(c.Span())
	}
	if f.Close != nil {
		s = s.Join(f.Close.Span)
	}
	return s
}

// Text is a quoted text node. Unquoted runs are RawText.
type Text struct {
	Raw   string // the literal as written, quotes included
	Value string // unquoted value
	span  token.Span
}

func (t *Text) Type() NodeType   { return TypeText }
func (t *Text) node()            {}
func (t *Text) Span() token.Span { return t.span }

// Comment is a <!-- "comment" --> node.
type Comment struct {
	Value string
	span  token.Span
}

func (c *Comment) Type() NodeType   { return TypeComment }
func (c *Comment) node()            {}
func (c *Comment) Span() token.Span { return c.span }

// Doctype is a <!DOCTYPE html> declaration; the keyword is matched
// case-insensitively and Value holds the declared name.
type Doctype struct {
	Value string
	span  token.Span
}

func (d *Doctype) Type() NodeType   { return TypeDoctype }
func (d *Doctype) node()            {}
func (d *Doctype) Span() token.Span { return d.span }

// Block is a braced code block whose payload is a host-language
// expression.
type Block struct {
	Payload BlockPayload
	span    token.Span
}

func (b *Block) Type() NodeType   { return TypeBlock }
func (b *Block) node()            {}
func (b *Block) Span() token.Span { return b.span }

// Valid returns the compiled payload, or nil if the block was kept in
// its raw recovered form.
func (b *Block) Valid() *ValidPayload {
	if p, ok := b.Payload.(*ValidPayload); ok {
		return p
	}
	return nil
}

// children returns the mutable child list of a container node, or nil.
func children(n Node) []Node {
	switch n := n.(type) {
	case *Element:
		return n.Children
	case *Fragment:
		return n.Children
	}
	return nil
}

func setChildren(n Node, cs []Node) {
	switch n := n.(type) {
	case *Element:
		n.Children = cs
	case *Fragment:
		n.Children = cs
	}
}

// Flatten converts a node list into its pre-order flattening: every
// container node is followed by its (recursively flattened) children,
// and container child lists are emptied.
func Flatten(nodes []Node) []Node {
	var out []Node
	for _, n := range nodes {
		cs := children(n)
		setChildren(n, nil)
		out = append(out, n)
		out = append(out, Flatten(cs)...)
	}
	return out
}
