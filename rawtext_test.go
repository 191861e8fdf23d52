package rsx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rsxlab/rsx/token"
)

func rawChild(t *testing.T, n Node, i int) *RawText {
	t.Helper()
	el, ok := n.(*Element)
	require.True(t, ok)
	r, ok := el.Children[i].(*RawText)
	require.True(t, ok)
	return r
}

func TestRawTextVerbatim(t *testing.T) {
	src := `<div>  hello   world  </div>`
	nodes, err := ParseString(src, nil)
	require.NoError(t, err)

	r := rawChild(t, nodes[0], 0)
	_, _, ok := r.Bounds()
	require.True(t, ok)
	require.Equal(t, "  hello   world  ", r.StringBest(token.SourceText(src)))
}

func TestRawTextOwnSpan(t *testing.T) {
	// a top-level raw text run has no bounding spans, so recovery falls
	// back to the run's own span: inner spacing survives, surrounding
	// whitespace does not
	src := `  hello   world  `
	nodes, err := ParseString(src, nil)
	require.NoError(t, err)

	r, ok := nodes[0].(*RawText)
	require.True(t, ok)
	_, _, bounded := r.Bounds()
	require.False(t, bounded)
	require.Equal(t, "hello   world", r.StringBest(token.SourceText(src)))
}

func TestRawTextStringify(t *testing.T) {
	// without source text only the canonical form is left
	toks, err := token.Tokenize(`<div>hello   world</div>`)
	require.NoError(t, err)
	res := ParseRecoverable(toks, nil)
	require.Equal(t, StateOk, res.State())

	r := rawChild(t, res.Nodes[0], 0)
	require.Equal(t, "hello world", r.StringBest(nil))
}

func TestRawTextBoundsBetweenSiblings(t *testing.T) {
	src := `<div>a {x} b</div>`
	nodes, err := ParseString(src, nil)
	require.NoError(t, err)

	require.Equal(t, "a ", rawChild(t, nodes[0], 0).StringBest(token.SourceText(src)))
	require.Equal(t, " b", rawChild(t, nodes[0], 2).StringBest(token.SourceText(src)))
}

func TestRawTextElement(t *testing.T) {
	src := `<script>if (x) { y = 1 }</script>`
	nodes, err := ParseString(src, Defaults())
	require.NoError(t, err)

	el := nodes[0].(*Element)
	require.Len(t, el.Children, 1)
	require.Equal(t, "if (x) { y = 1 }", rawChild(t, nodes[0], 0).StringBest(token.SourceText(src)))
	require.NotNil(t, el.CloseTag)
}

func TestRawTextElementEmpty(t *testing.T) {
	nodes, err := ParseString(`<script></script>`, Defaults())
	require.NoError(t, err)
	require.Empty(t, nodes[0].(*Element).Children)
}

func TestRawTextUnclosedBounds(t *testing.T) {
	// a missing close tag leaves the trailing run without an upper
	// bound; it degrades to its own span instead of failing
	src := `<div>tail text`
	res := ParseStringRecoverable(src, nil)
	require.Equal(t, StatePartial, res.State())

	r := rawChild(t, res.Nodes[0], 0)
	_, _, bounded := r.Bounds()
	require.False(t, bounded)
	require.Equal(t, "tail text", r.StringBest(token.SourceText(src)))
}
