package rsx

import (
	"github.com/expr-lang/expr/vm"
	"github.com/rsxlab/rsx/token"
)

// Attr is one attribute of an open tag: either a keyed attribute with
// an optional value, or a bare code block computing the attribute.
type Attr interface {
	AttrSpan() token.Span
	attr()
}

// KeyedAttr is a key or key=value attribute.
type KeyedAttr struct {
	Key   NodeName
	Value *AttrValue // nil for value-less attributes
	span  token.Span
}

func (a *KeyedAttr) attr()                {}
func (a *KeyedAttr) AttrSpan() token.Span { return a.span }

// DynAttr is an attribute computed from a bare code block, e.g.
// <div {attrs} />.
type DynAttr struct {
	Block *Block
}

func (a *DynAttr) attr()                {}
func (a *DynAttr) AttrSpan() token.Span { return a.Block.Span() }

// AttrValue is the value of a keyed attribute: a host expression, or a
// braced code block. Program is nil when the value failed to compile
// and the parse recovered; the raw tokens are kept either way.
type AttrValue struct {
	Tokens  []token.Token
	Block   *Block // non-nil when the value was written as a block
	Program *vm.Program
	Raw     string
	Span    token.Span
}

// StringValue returns the unquoted text of a plain string-literal
// value, or false for any other value form.
func (v *AttrValue) StringValue() (string, bool) {
	if v == nil || v.Block != nil || len(v.Tokens) != 1 || !v.Tokens[0].IsString() {
		return "", false
	}
	s, err := v.Tokens[0].StringValue()
	if err != nil {
		return "", false
	}
	return s, true
}
