package rsx

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/rsxlab/rsx/token"
)

// dump renders a node tree in the compact form used by the tests below:
// one node per line, children indented under their parent.
func dump(nodes []Node, src token.Source) string {
	var b strings.Builder
	for _, n := range nodes {
		dumpLevel(&b, n, 0, src)
	}
	return b.String()
}

func dumpLevel(w *strings.Builder, n Node, level int, src token.Source) {
	w.WriteString("| ")
	for i := 0; i < level; i++ {
		w.WriteString("  ")
	}
	switch t := n.(type) {
	case *Element:
		fmt.Fprintf(w, "<%s%s", t.Name(), dumpAttrs(t.Attrs()))
		if t.OpenTag.SelfClosing {
			w.WriteString("/")
		}
		w.WriteString(">\n")
		for _, c := range t.Children {
			dumpLevel(w, c, level+1, src)
		}
	case *Fragment:
		w.WriteString("<>\n")
		for _, c := range t.Children {
			dumpLevel(w, c, level+1, src)
		}
	case *Text:
		fmt.Fprintf(w, "%q\n", t.Value)
	case *RawText:
		fmt.Fprintf(w, "`%s`\n", t.StringBest(src))
	case *Comment:
		fmt.Fprintf(w, "<!-- %s -->\n", t.Value)
	case *Doctype:
		fmt.Fprintf(w, "<!DOCTYPE %s>\n", t.Value)
	case *Block:
		fmt.Fprintf(w, "%s\n", blockText(t))
	}
}

func dumpAttrs(attrs []Attr) string {
	var b strings.Builder
	for _, a := range attrs {
		b.WriteByte(' ')
		switch at := a.(type) {
		case *KeyedAttr:
			b.WriteString(at.Key.String())
			if at.Value != nil {
				b.WriteByte('=')
				if at.Value.Block != nil {
					b.WriteString(blockText(at.Value.Block))
				} else {
					b.WriteString(at.Value.Raw)
				}
			}
		case *DynAttr:
			b.WriteString(blockText(at.Block))
		}
	}
	return b.String()
}

func TestParseString(t *testing.T) {
	tests := []struct {
		name string
		src  string
		cfg  *Config
		want string
	}{
		{"empty", "", nil, ""},
		{"element", `<foo></foo>`, nil, "| <foo>\n"},
		{"attributes", `<foo bar="moo" baz="42"></foo>`, nil,
			"| <foo bar=\"moo\" baz=\"42\">\n"},
		{"flag attribute", `<input disabled></input>`, nil,
			"| <input disabled>\n"},
		{"self closed", `<br/>`, nil, "| <br/>\n"},
		{"void element", `<br>`, Defaults(), "| <br>\n"},
		{"nested", `<div><p>"hi"</p></div>`, nil,
			"| <div>\n|   <p>\n|     \"hi\"\n"},
		{"fragment", `<>"hi"</>`, nil, "| <>\n|   \"hi\"\n"},
		{"doctype", `<!DOCTYPE html>`, nil, "| <!DOCTYPE html>\n"},
		{"doctype case", `<!doctype html>`, nil, "| <!DOCTYPE html>\n"},
		{"comment", `<!-- "note" -->`, nil, "| <!-- note -->\n"},
		{"block", `{x + 1}`, nil, "| {x + 1}\n"},
		{"empty block", `{}`, nil, "| {}\n"},
		{"dynamic name", `<{tag}/>`, nil, "| <{tag}/>\n"},
		{"path name", `<some.path/>`, nil, "| <some.path/>\n"},
		{"punct name", `<data-foo/>`, nil, "| <data-foo/>\n"},
		{"colon name", `<on:click/>`, nil, "| <on:click/>\n"},
		{"mixed separator name", `<a-b:c></a-b:c>`, nil, "| <a-b:c>\n"},
		{"block attr value", `<a href={base.url}/>`, nil,
			"| <a href={base.url}/>\n"},
		{"dyn attr", `<div {attrs}></div>`, nil, "| <div {attrs}>\n"},
		{"expr path value", `<a href=base.url></a>`, nil,
			"| <a href=base.url>\n"},
		{"raw text", `<div> hello world </div>`, nil,
			"| <div>\n|   ` hello world `\n"},
		{"mixed raw text", `<div>hello {x} world</div>`, nil,
			"| <div>\n|   `hello `\n|   {x}\n|   ` world`\n"},
		{"raw text element", `<script>if (x) { y = 1 }</script>`, Defaults(),
			"| <script>\n|   `if (x) { y = 1 }`\n"},
		{"siblings", `<a></a><b></b>`, nil, "| <a>\n| <b>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := ParseString(tt.src, tt.cfg)
			require.NoError(t, err)
			got := dump(nodes, token.SourceText(tt.src))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseStringStrict(t *testing.T) {
	nodes, err := ParseString(`<div>"hi"</div>`, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	_, err = ParseString(`<div><a></b></div>`, nil)
	require.Error(t, err)
	var d Diagnostic
	require.ErrorAs(t, err, &d)
	require.Equal(t, ErrMismatchedCloseTag, d.Kind)
}

func TestFlatTree(t *testing.T) {
	res := ParseStringRecoverable(`<a><b>"x"<e/></b><c/></a><d/>"y"`, &Config{FlatTree: true})
	require.Equal(t, StateOk, res.State())

	var types []NodeType
	for _, n := range res.Nodes {
		types = append(types, n.Type())
		require.Empty(t, children(n), "flattened containers must have no children")
	}
	want := []NodeType{
		TypeElement, TypeElement, TypeText, TypeElement,
		TypeElement, TypeElement, TypeText,
	}
	require.Equal(t, want, types)
}

func TestTopLevelCount(t *testing.T) {
	two := 2
	cfg := &Config{TopLevelCount: &two}

	res := ParseStringRecoverable(`<a></a><b></b>`, cfg)
	require.Equal(t, StateOk, res.State())

	res = ParseStringRecoverable(`<a></a>`, cfg)
	require.Equal(t, StatePartial, res.State())
	require.Equal(t, ErrTopLevelCount, res.Diags[0].Kind)
	require.Len(t, res.Nodes, 1, "the parsed node survives the count violation")
}

func TestTopLevelKind(t *testing.T) {
	kind := TypeElement
	cfg := &Config{TopLevelKind: &kind}

	res := ParseStringRecoverable(`<a></a><b></b>`, cfg)
	require.Equal(t, StateOk, res.State())

	res = ParseStringRecoverable(`<a></a>"text"`, cfg)
	require.Equal(t, StatePartial, res.State())
	require.Equal(t, ErrTopLevelKind, res.Diags[0].Kind)
}

func TestTransformBlock(t *testing.T) {
	cfg := &Config{
		TransformBlock: func(toks []token.Token) ([]token.Token, bool) {
			// rewrite every block to the constant 1
			one, err := token.Tokenize("1")
			require.NoError(t, err)
			return one, true
		},
	}
	res := ParseStringRecoverable(`{some garbage here}`, cfg)
	require.Equal(t, StateOk, res.State())
	b := res.Nodes[0].(*Block)
	require.NotNil(t, b.Valid())
	require.Equal(t, "1", b.Valid().Source)
}

func TestBlockEval(t *testing.T) {
	nodes, err := ParseString(`{x + 1}`, nil)
	require.NoError(t, err)
	v, err := nodes[0].(*Block).Valid().Eval(map[string]any{"x": 41})
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestNamesEqual(t *testing.T) {
	nodes, err := ParseString(`<{tag}></{tag}>`, nil)
	require.NoError(t, err)
	el := nodes[0].(*Element)
	require.NotNil(t, el.CloseTag)
	require.True(t, NamesEqual(el.Name(), el.CloseTag.Name))
}
