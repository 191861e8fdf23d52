package rsx

import (
	"github.com/rsxlab/rsx/token"
)

// OpenTag is the <name attr=x attr_flag> part of an element, possibly
// self-closed.
type OpenTag struct {
	Name        NodeName
	Attrs       []Attr
	SelfClosing bool
	Span        token.Span // covers < through > (or />)
	EndSpan     token.Span // span of the closing > alone
}

// CloseTag is the </name> part of an element.
type CloseTag struct {
	Name NodeName
	Span token.Span
}

// FragmentOpen is the <> marker.
type FragmentOpen struct {
	Span token.Span
}

// FragmentClose is the </> marker.
type FragmentClose struct {
	Span token.Span
}

// peekPunct reports whether the k-th lookahead token is the given
// punctuation rune.
func peekPunct(cur token.Cursor, k int, ch byte) bool {
	t, ok := cur.Peek(k)
	return ok && t.IsPunct(ch)
}

// peekCloseTagStart reports whether the cursor is at a close-tag-start
// marker `</`.
func peekCloseTagStart(cur token.Cursor) bool {
	return peekPunct(cur, 0, '<') && peekPunct(cur, 1, '/')
}

// punct consumes one expected punctuation token. On mismatch the cursor
// is returned unchanged.
func punct(cur token.Cursor, ch byte) (token.Span, token.Cursor, bool) {
	t, ok := cur.Peek(0)
	if !ok || !t.IsPunct(ch) {
		return token.Span{}, cur, false
	}
	_, next := cur.Next()
	return t.Span, next, true
}

// openTagEnd speculatively matches `>` or `/>`. The returned cursor is
// advanced past the marker only on success.
func openTagEnd(cur token.Cursor) (selfClosing bool, end token.Span, next token.Cursor, ok bool) {
	fork := cur.Fork()
	slash, fork, hasSlash := punct(fork, '/')
	gt, fork, hasGt := punct(fork, '>')
	if !hasGt {
		return false, token.Span{}, cur, false
	}
	end = gt
	if hasSlash {
		end = slash.Join(gt)
	}
	return hasSlash, end, fork, true
}

// closeTagStart consumes the `</` marker.
func closeTagStart(cur token.Cursor) (token.Span, token.Cursor, bool) {
	lt, cur2, ok := punct(cur, '<')
	if !ok {
		return token.Span{}, cur, false
	}
	sl, cur3, ok := punct(cur2, '/')
	if !ok {
		return token.Span{}, cur, false
	}
	return lt.Join(sl), cur3, true
}
