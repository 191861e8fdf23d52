// Package token defines the lexical token tree consumed by the rsx
// parser: identifiers, punctuation, literals, and delimited groups with
// nested token trees. It also provides the lexer that builds the tree
// from source text and an immutable, cheaply-forkable cursor over it.
package token

import (
	"strconv"
	"strings"
)

// Kind classifies a single token.
type Kind int

const (
	Ident Kind = iota
	Punct
	Literal
	Group
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "ident"
	case Punct:
		return "punct"
	case Literal:
		return "literal"
	case Group:
		return "group"
	}
	return "unknown"
}

// Delim identifies the delimiter pair of a Group token.
type Delim byte

const (
	Brace   Delim = '{'
	Paren   Delim = '('
	Bracket Delim = '['
)

func (d Delim) open() byte {
	return byte(d)
}

func (d Delim) close() byte {
	switch d {
	case Brace:
		return '}'
	case Paren:
		return ')'
	case Bracket:
		return ']'
	}
	return 0
}

// Token is one node of the token tree. Group tokens carry their nested
// tokens in Tokens; the Span of a group covers both delimiters.
type Token struct {
	Kind   Kind
	Text   string  // ident text, punct rune, or raw literal (quotes included)
	Delim  Delim   // set for Kind == Group
	Tokens []Token // group interior
	Span   Span
}

// IsPunct reports whether the token is the given punctuation rune.
func (t Token) IsPunct(ch byte) bool {
	return t.Kind == Punct && len(t.Text) == 1 && t.Text[0] == ch
}

// IsIdent reports whether the token is an identifier; if name is
// non-empty the identifier text must match it.
func (t Token) IsIdent(name string) bool {
	return t.Kind == Ident && (name == "" || t.Text == name)
}

// IsGroup reports whether the token is a group with the given delimiter.
func (t Token) IsGroup(d Delim) bool {
	return t.Kind == Group && t.Delim == d
}

// IsString reports whether the token is a quoted string literal.
func (t Token) IsString() bool {
	return t.Kind == Literal && len(t.Text) > 0 && t.Text[0] == '"'
}

// StringValue returns the unquoted value of a string literal token.
func (t Token) StringValue() (string, error) {
	return strconv.Unquote(t.Text)
}

// String returns the canonical text of the token. Whitespace inside
// groups is normalized.
func (t Token) String() string {
	switch t.Kind {
	case Group:
		var b strings.Builder
		b.WriteByte(t.Delim.open())
		b.WriteString(Stringify(t.Tokens))
		b.WriteByte(t.Delim.close())
		return b.String()
	default:
		return t.Text
	}
}

// Stringify renders a token run as canonical, whitespace-normalized
// text: tokens separated by single spaces, except that no space is
// emitted around punctuation that glues names together.
func Stringify(toks []Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && !glues(toks[i-1]) && !glues(t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.String())
	}
	return b.String()
}

// glues reports whether the token binds tightly to its neighbors when
// re-stringified.
func glues(t Token) bool {
	if t.Kind != Punct {
		return false
	}
	switch t.Text {
	case ".", "-", ":", "=", "/", "!", "<", ">":
		return true
	}
	return false
}
