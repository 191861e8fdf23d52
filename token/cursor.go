package token

import "unicode/utf8"

// Cursor is an immutable position into one nesting level of a token
// tree. Forking is copying the value; committing a speculative fork is
// reassigning the caller's cursor variable.
type Cursor struct {
	toks []Token
	pos  int
}

// NewCursor returns a cursor at the start of the token run.
func NewCursor(toks []Token) Cursor {
	return Cursor{toks: toks}
}

// Empty reports whether all tokens have been consumed.
func (c Cursor) Empty() bool {
	return c.pos >= len(c.toks)
}

// Len returns the number of unconsumed tokens.
func (c Cursor) Len() int {
	return len(c.toks) - c.pos
}

// Peek returns the k-th unconsumed token (k = 0 is the next token).
func (c Cursor) Peek(k int) (Token, bool) {
	if c.pos+k >= len(c.toks) {
		return Token{}, false
	}
	return c.toks[c.pos+k], true
}

// Next returns the next token and the advanced cursor.
func (c Cursor) Next() (Token, Cursor) {
	if c.Empty() {
		return Token{}, c
	}
	t := c.toks[c.pos]
	return t, Cursor{toks: c.toks, pos: c.pos + 1}
}

// Fork returns a copy of the cursor for speculative parsing.
func (c Cursor) Fork() Cursor {
	return c
}

// Pos returns the index of the next token; equal positions on cursors
// from the same run mean no progress was made.
func (c Cursor) Pos() int {
	return c.pos
}

// Rest returns the unconsumed tokens.
func (c Cursor) Rest() []Token {
	return c.toks[c.pos:]
}

// Span returns the span of the next token, or the span just past the
// last token when the cursor is exhausted.
func (c Cursor) Span() Span {
	if !c.Empty() {
		return c.toks[c.pos].Span
	}
	if len(c.toks) == 0 {
		return Span{}
	}
	last := c.toks[len(c.toks)-1]
	width := last.Span.Length
	if last.Text != "" {
		// columns count runes, not bytes
		width = utf8.RuneCountInString(last.Text)
	}
	return Span{Offset: last.Span.End(), Line: last.Span.Line, Column: last.Span.Column + width}
}
