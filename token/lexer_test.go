package token

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// dump renders the token run in a compact debug form: kind(text) with
// group interiors in brackets.
func dump(toks []Token) string {
	s := ""
	for i, t := range toks {
		if i > 0 {
			s += " "
		}
		switch t.Kind {
		case Group:
			s += string(t.Delim.open()) + dump(t.Tokens) + string(t.Delim.close())
		case Ident:
			s += t.Text
		case Punct:
			s += "p`" + t.Text + "`"
		case Literal:
			s += "l`" + t.Text + "`"
		}
	}
	return s
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{
			name: "empty",
			src:  "",
			want: "",
		},
		{
			name: "idents and punct",
			src:  "<div>",
			want: "p`<` div p`>`",
		},
		{
			name: "string literal keeps quotes",
			src:  `"hello world"`,
			want: "l`\"hello world\"`",
		},
		{
			name: "numbers",
			src:  "42 3.14 1.x",
			want: "l`42` l`3.14` l`1` p`.` x",
		},
		{
			name: "brace group",
			src:  "<div>{x + 1}</div>",
			want: "p`<` div p`>` {x p`+` l`1`} p`<` p`/` div p`>`",
		},
		{
			name: "nested groups",
			src:  "{f(a[0])}",
			want: "{f (a [l`0`])}",
		},
		{
			name: "dashed name",
			src:  "data-foo",
			want: "data p`-` foo",
		},
		{
			name: "escapes in strings",
			src:  `"a\"b"`,
			want: "l`\"a\\\"b\"`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.src)
			require.NoError(t, err)
			if diff := cmp.Diff(dump(toks), tt.want); diff != "" {
				t.Errorf("Tokenize() diff (-got +want):\n%s", diff)
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name, src, wantErr string
	}{
		{"unterminated string", `"abc`, "unterminated string"},
		{"unclosed brace", "{a", `unclosed delimiter "{"`},
		{"stray close", "a}", `unexpected closing delimiter "}"`},
		{"mismatched close", "{a)", `unexpected closing delimiter ")"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.src)
			require.Error(t, err)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTokenizeSpans(t *testing.T) {
	src := "<div>\n  {x}\n</div>"
	toks, err := Tokenize(src)
	require.NoError(t, err)

	// the brace group is the 4th token: < div > {x}
	g := toks[3]
	require.True(t, g.IsGroup(Brace))
	require.Equal(t, 2, g.Span.Line)
	require.Equal(t, 3, g.Span.Column)

	text, ok := SourceText(src).Text(g.Span)
	require.True(t, ok)
	require.Equal(t, "{x}", text)
}

func TestSpanJoin(t *testing.T) {
	a := Span{Offset: 2, Line: 1, Column: 3, Length: 3}
	b := Span{Offset: 8, Line: 2, Column: 1, Length: 4}

	j := a.Join(b)
	require.Equal(t, 2, j.Offset)
	require.Equal(t, 10, j.Length)
	require.Equal(t, j, b.Join(a))
	require.Equal(t, a, a.Join(Span{}))
}

func TestStringify(t *testing.T) {
	toks, err := Tokenize(`some raw text with 42 {x} end`)
	require.NoError(t, err)
	require.Equal(t, "some raw text with 42 {x} end", Stringify(toks))

	toks, err = Tokenize("a\n\n   b")
	require.NoError(t, err)
	require.Equal(t, "a b", Stringify(toks))
}
