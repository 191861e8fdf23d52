package rsx

import (
	"strings"

	"github.com/rsxlab/rsx/token"
)

// RawText is an un-delimited run of tokens treated as verbatim content.
// The bounding spans of the tokens immediately before and after the run
// are backfilled by the parent once all siblings are known; they enable
// whitespace-exact text recovery.
type RawText struct {
	Tokens []token.Token

	spanBefore, spanAfter token.Span
	hasBounds             bool
}

func (r *RawText) Type() NodeType { return TypeRawText }
func (r *RawText) node()          {}

func (r *RawText) Span() token.Span {
	if len(r.Tokens) == 0 {
		return token.Span{}
	}
	return r.Tokens[0].Span.Join(r.Tokens[len(r.Tokens)-1].Span)
}

func (r *RawText) IsEmpty() bool {
	return len(r.Tokens) == 0
}

func (r *RawText) setBounds(before, after token.Span) {
	r.spanBefore = before
	r.spanAfter = after
	r.hasBounds = true
}

// Bounds returns the boundary spans, if the parent assigned them.
func (r *RawText) Bounds() (before, after token.Span, ok bool) {
	return r.spanBefore, r.spanAfter, r.hasBounds
}

// StringBest returns the best string representation available:
//  1. the verbatim source between the bounding spans, whitespace intact
//  2. the source text of the run's own span, surrounding whitespace lost
//  3. the canonical re-stringification of the tokens
//
// Tiers 1 and 2 need a non-nil source.
func (r *RawText) StringBest(src token.Source) string {
	if s, ok := r.sourceText(src, true); ok {
		return s
	}
	if s, ok := r.sourceText(src, false); ok {
		return s
	}
	return token.Stringify(r.Tokens)
}

func (r *RawText) sourceText(src token.Source, withBounds bool) (string, bool) {
	if src == nil {
		return "", false
	}
	if withBounds {
		if !r.hasBounds {
			return "", false
		}
		full, ok := src.Text(r.spanBefore.Join(r.spanAfter))
		if !ok {
			return "", false
		}
		before, ok := src.Text(r.spanBefore)
		if !ok {
			return "", false
		}
		after, ok := src.Text(r.spanAfter)
		if !ok || !strings.HasPrefix(full, before) || !strings.HasSuffix(full, after) {
			return "", false
		}
		return full[len(before) : len(full)-len(after)], true
	}
	return src.Text(r.Span())
}

// setRawTextBounds assigns boundary spans to RawText children using a
// sliding window over (previous boundary, node, next boundary).
// openEnd is the span of the parent's open-tag end; closeStart, when
// known, is the span of the close-tag start.
func setRawTextBounds(openEnd token.Span, closeStart *token.Span, nodes []Node) []Node {
	spans := make([]token.Span, 0, len(nodes)+2)
	spans = append(spans, openEnd)
	for _, n := range nodes {
		spans = append(spans, n.Span())
	}
	if closeStart != nil {
		spans = append(spans, *closeStart)
	}
	for i, n := range nodes {
		if i+2 >= len(spans) {
			break
		}
		if r, ok := n.(*RawText); ok {
			r.setBounds(spans[i], spans[i+2])
		}
	}
	return nodes
}
