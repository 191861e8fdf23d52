package rsx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rsxlab/rsx/token"
)

// A parser runs one recursive-descent pass over a token tree and
// accumulates diagnostics. All sub-parsers return false only after a
// diagnostic was recorded; the returned cursor reflects whatever
// progress was made, so callers can keep going.
type parser struct {
	cfg   *Config
	src   token.Source // optional, enables verbatim text recovery
	diags []Diagnostic
	depth int
	fail  bool // terminal failure, the whole parse yields no tree
}

// Parse parses a token run in strict mode: the first diagnostic aborts
// the whole parse and is returned as the sole error.
func Parse(toks []token.Token, cfg *Config) ([]Node, error) {
	res := parseTokens(toks, nil, cfg)
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Nodes, nil
}

// ParseRecoverable parses a token run, recording diagnostics and
// continuing, and returns whatever tree could be built alongside the
// full diagnostic list.
func ParseRecoverable(toks []token.Token, cfg *Config) Result {
	return parseTokens(toks, nil, cfg)
}

// ParseString tokenizes source text and parses it in strict mode. The
// source text stays available to the parse, so raw text recovers exact
// whitespace.
func ParseString(src string, cfg *Config) ([]Node, error) {
	toks, err := token.Tokenize(src)
	if err != nil {
		return nil, err
	}
	res := parseTokens(toks, token.SourceText(src), cfg)
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Nodes, nil
}

// ParseStringRecoverable tokenizes source text and parses it in
// recoverable mode. Lex errors produce a failed result.
func ParseStringRecoverable(src string, cfg *Config) Result {
	toks, err := token.Tokenize(src)
	if err != nil {
		d := Diagnostic{Kind: ErrUnexpectedEOI, Message: err.Error()}
		var le *token.LexError
		if errors.As(err, &le) {
			d = Diagnostic{Kind: ErrUnexpectedEOI, Message: le.Msg, Span: le.Span}
		}
		return Result{Diags: []Diagnostic{d}, failed: true}
	}
	return parseTokens(toks, token.SourceText(src), cfg)
}

func parseTokens(toks []token.Token, src token.Source, cfg *Config) Result {
	if cfg == nil {
		cfg = &Config{}
	}
	p := &parser{cfg: cfg, src: src}
	cur := token.NewCursor(toks)

	var nodes []Node
	top := 0
	for !cur.Empty() {
		before := cur.Pos()
		n, next, ok := p.parseNode(cur)
		if p.fail {
			return Result{Diags: p.diags, failed: true}
		}
		if ok {
			nodes = append(nodes, n)
			top++
		}
		cur = next
		if cur.Pos() == before && !p.skipOne(&cur) {
			p.errorf(ErrUnexpectedEOI, cur.Span(), "unexpected end of input")
			break
		}
	}

	// constraints are checked after the full sequence is built so they
	// never suppress already-parsed nodes
	if cfg.TopLevelKind != nil {
		for _, n := range nodes {
			if n.Type() != *cfg.TopLevelKind {
				p.errorf(ErrTopLevelKind, n.Span(), "top level nodes need to be of type %s", *cfg.TopLevelKind)
			}
		}
	}
	if cfg.TopLevelCount != nil && top != *cfg.TopLevelCount {
		p.errorf(ErrTopLevelCount, cur.Span(), "saw %d top level nodes but exactly %d are required", top, *cfg.TopLevelCount)
	}

	if cfg.FlatTree {
		nodes = Flatten(nodes)
	}
	return Result{
		Nodes:  nodes,
		Diags:  p.diags,
		failed: nodes == nil && len(p.diags) > 0,
	}
}

func (p *parser) diag(d Diagnostic) {
	p.diags = append(p.diags, d)
}

func (p *parser) errorf(kind ErrKind, span token.Span, format string, args ...any) {
	p.diag(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span})
}

// expected records a generic expectation failure at the cursor.
func (p *parser) expected(cur token.Cursor, what string) {
	if cur.Empty() {
		p.errorf(ErrUnexpectedEOI, cur.Span(), "unexpected end of input, expected %s", what)
		return
	}
	t, _ := cur.Peek(0)
	p.errorf(ErrInvalidNodeName, t.Span, "expected %s", what)
}

// skipOne applies the token-skip recovery heuristic: consume exactly
// one non-< punctuation token to force progress in a stuck loop.
func (p *parser) skipOne(cur *token.Cursor) bool {
	t, ok := cur.Peek(0)
	if !ok || t.Kind != token.Punct || t.IsPunct('<') {
		return false
	}
	_, *cur = cur.Next()
	return true
}

// construct is the lookahead classification of the next node.
type construct int

const (
	conEOF construct = iota
	conText
	conRawText
	conBlock
	conElement
	conFragment
	conComment
	conDoctype
	conCloseTag
)

// classify inspects up to 3 tokens of lookahead to pick the sub-parser.
func classify(cur token.Cursor) construct {
	t0, ok := cur.Peek(0)
	if !ok {
		return conEOF
	}
	switch {
	case t0.IsGroup(token.Brace):
		return conBlock
	case t0.IsString():
		return conText
	case t0.IsPunct('<'):
		t1, ok := cur.Peek(1)
		if !ok {
			return conElement
		}
		switch {
		case t1.IsPunct('!'):
			// <!-- starts a comment, <!IDENT a doctype
			if t2, ok := cur.Peek(2); ok && t2.IsPunct('-') {
				return conComment
			}
			return conDoctype
		case t1.IsPunct('>'):
			return conFragment
		case t1.IsPunct('/'):
			return conCloseTag
		default:
			return conElement
		}
	default:
		return conRawText
	}
}

func (p *parser) parseNode(cur token.Cursor) (Node, token.Cursor, bool) {
	if p.depth >= p.cfg.maxDepth() {
		p.errorf(ErrUnexpectedEOI, cur.Span(), "markup nesting exceeds maximum depth %d", p.cfg.maxDepth())
		return nil, cur, false
	}
	p.depth++
	defer func() { p.depth-- }()

	switch classify(cur) {
	case conBlock:
		b, next, ok := p.parseBlock(cur)
		if !ok {
			return nil, next, false
		}
		return b, next, true
	case conText:
		return p.parseText(cur)
	case conComment:
		return p.parseComment(cur)
	case conDoctype:
		return p.parseDoctype(cur)
	case conFragment:
		return p.parseFragment(cur)
	case conElement:
		return p.parseElement(cur)
	case conCloseTag:
		start, next, _ := closeTagStart(cur)
		p.errorf(ErrUnexpectedCloseTag, start, "close tag has no corresponding open tag")
		// skip through the closing caret to make progress
		for !next.Empty() {
			var t token.Token
			t, next = next.Next()
			if t.IsPunct('>') {
				break
			}
		}
		return nil, next, false
	default:
		return p.parseRawTextNode(cur)
	}
}

func (p *parser) parseText(cur token.Cursor) (Node, token.Cursor, bool) {
	t, next := cur.Next()
	val, err := t.StringValue()
	if err != nil {
		p.errorf(ErrInvalidExpr, t.Span, "malformed string literal: %v", err)
		return nil, next, false
	}
	return &Text{Raw: t.Text, Value: val, span: t.Span}, next, true
}

// parseRawTextNode accumulates tokens until the next structural
// boundary: a tag, a block, or a quoted literal.
func (p *parser) parseRawTextNode(cur token.Cursor) (Node, token.Cursor, bool) {
	var toks []token.Token
	for !cur.Empty() {
		t, _ := cur.Peek(0)
		if t.IsPunct('<') || t.IsGroup(token.Brace) || t.IsString() {
			break
		}
		_, next := cur.Next()
		toks = append(toks, t)
		cur = next
	}
	return &RawText{Tokens: toks}, cur, true
}

func (p *parser) parseComment(cur token.Cursor) (Node, token.Cursor, bool) {
	start := cur.Span()
	rest := cur
	for _, ch := range []byte{'<', '!', '-', '-'} {
		var ok bool
		if _, rest, ok = punct(rest, ch); !ok {
			p.expected(rest, "comment start marker <!--")
			return nil, rest, false
		}
	}
	lit, ok := rest.Peek(0)
	if !ok || !lit.IsString() {
		p.expected(rest, "quoted comment text")
		return nil, rest, false
	}
	_, rest = rest.Next()
	var end token.Span
	for _, ch := range []byte{'-', '-', '>'} {
		var ok bool
		if end, rest, ok = punct(rest, ch); !ok {
			p.expected(rest, "comment end marker -->")
			return nil, rest, false
		}
	}
	val, _ := lit.StringValue()
	return &Comment{Value: val, span: start.Join(end)}, rest, true
}

func (p *parser) parseDoctype(cur token.Cursor) (Node, token.Cursor, bool) {
	start := cur.Span()
	rest := cur
	for _, ch := range []byte{'<', '!'} {
		var ok bool
		if _, rest, ok = punct(rest, ch); !ok {
			p.expected(rest, "doctype start marker <!")
			return nil, rest, false
		}
	}
	kw, ok := rest.Peek(0)
	if !ok || !kw.IsIdent("") || !strings.EqualFold(kw.Text, "doctype") {
		p.expected(rest, "doctype keyword")
		return nil, rest, false
	}
	_, rest = rest.Next()
	name, ok := rest.Peek(0)
	if !ok || !name.IsIdent("") {
		p.expected(rest, "doctype name")
		return nil, rest, false
	}
	_, rest = rest.Next()
	end, rest, ok := punct(rest, '>')
	if !ok {
		p.expected(rest, "closing caret >")
		return nil, rest, false
	}
	return &Doctype{Value: name.Text, span: start.Join(end)}, rest, true
}

func (p *parser) parseBlock(cur token.Cursor) (*Block, token.Cursor, bool) {
	g, next := cur.Next()
	inner := g.Tokens
	transformed := false
	if p.cfg.TransformBlock != nil {
		if out, ok := p.cfg.TransformBlock(inner); ok {
			inner = out
			transformed = true
		}
	}
	if len(inner) == 0 {
		return &Block{Payload: &ValidPayload{}, span: g.Span}, next, true
	}
	// transformed tokens carry spans of whatever source they came from,
	// so only untouched interiors may be sliced out of the input
	src := token.Stringify(inner)
	if !transformed {
		src = p.exprSource(inner)
	}
	prog, err := compileExpr(src)
	if err != nil {
		p.errorf(ErrInvalidExpr, g.Span, "invalid embedded expression: %v", err)
		if p.cfg.RecoverInvalidBlocks {
			return &Block{
				Payload: &InvalidPayload{Tokens: g.Tokens, GroupSpan: g.Span},
				span:    g.Span,
			}, next, true
		}
		// without block recovery an invalid expression is terminal:
		// the whole parse fails and no tree is produced
		p.fail = true
		return nil, next, false
	}
	return &Block{Payload: &ValidPayload{Program: prog, Source: src}, span: g.Span}, next, true
}

func (p *parser) parseElement(cur token.Cursor) (Node, token.Cursor, bool) {
	open, cur, ok := p.parseOpenTag(cur)
	if !ok {
		return nil, cur, false
	}
	el := &Element{OpenTag: open}
	if p.fail {
		return el, cur, true
	}
	name := open.Name.String()

	if open.SelfClosing || p.cfg.selfClosing(name) {
		return el, cur, true
	}

	if p.cfg.rawText(name) {
		raw := p.collectRawText(&cur)
		if !raw.IsEmpty() {
			el.Children = []Node{raw}
		}
		if cur.Empty() {
			p.errorf(ErrUnterminatedOpenTag, open.Name.NameSpan(),
				"open tag has no corresponding close tag and is not self-closing")
		} else {
			el.CloseTag = p.requireCloseTag(&cur, open)
		}
		el.Children = setRawTextBounds(open.EndSpan, closeSpan(el.CloseTag), el.Children)
		return el, cur, true
	}

	var kids []Node
	for {
		if cur.Empty() {
			p.errorf(ErrUnterminatedOpenTag, open.Name.NameSpan(),
				"open tag has no corresponding close tag and is not self-closing")
			el.Children = setRawTextBounds(open.EndSpan, nil, kids)
			return el, cur, true
		}
		if peekCloseTagStart(cur) {
			break
		}
		before := cur.Pos()
		n, next, ok := p.parseNode(cur)
		if ok {
			kids = append(kids, n)
		}
		cur = next
		if p.fail {
			el.Children = kids
			return el, cur, true
		}
		if cur.Pos() == before && !p.skipOne(&cur) {
			p.errorf(ErrUnexpectedEOI, cur.Span(), "unexpected end of input in element body")
			break
		}
	}
	if peekCloseTagStart(cur) {
		el.CloseTag = p.requireCloseTag(&cur, open)
	}
	el.Children = setRawTextBounds(open.EndSpan, closeSpan(el.CloseTag), kids)
	return el, cur, true
}

func closeSpan(ct *CloseTag) *token.Span {
	if ct == nil {
		return nil
	}
	return &ct.Span
}

// requireCloseTag parses the close tag at the cursor and checks its
// name against the open tag. A mismatch is recorded but the close tag
// found is still attached.
func (p *parser) requireCloseTag(cur *token.Cursor, open OpenTag) *CloseTag {
	ct, next, ok := p.parseCloseTag(*cur)
	*cur = next
	if !ok {
		return nil
	}
	if !NamesEqual(ct.Name, open.Name) {
		p.diag(Diagnostic{
			Kind:    ErrMismatchedCloseTag,
			Message: fmt.Sprintf("wrong close tag: expected </%s>, found </%s>", open.Name, ct.Name),
			Span:    ct.Span,
			Secondary: []SpanLabel{
				{Span: open.Span, Label: "open tag defined here"},
			},
		})
	}
	return ct
}

func (p *parser) parseCloseTag(cur token.Cursor) (*CloseTag, token.Cursor, bool) {
	start, rest, ok := closeTagStart(cur)
	if !ok {
		p.expected(cur, "close tag start </")
		return nil, cur, false
	}
	name, rest, ok := p.parseNodeName(rest)
	if !ok {
		return nil, rest, false
	}
	end, rest, ok := punct(rest, '>')
	if !ok {
		p.expected(rest, "closing caret >")
		return nil, rest, false
	}
	return &CloseTag{Name: name, Span: start.Join(end)}, rest, true
}

// collectRawText captures everything up to the next close-tag-start as
// one verbatim run; used for raw-text element bodies.
func (p *parser) collectRawText(cur *token.Cursor) *RawText {
	var toks []token.Token
	for !cur.Empty() && !peekCloseTagStart(*cur) {
		var t token.Token
		t, *cur = cur.Next()
		toks = append(toks, t)
	}
	return &RawText{Tokens: toks}
}

func (p *parser) parseFragment(cur token.Cursor) (Node, token.Cursor, bool) {
	lt, cur, _ := punct(cur, '<')
	gt, cur, _ := punct(cur, '>')
	frag := &Fragment{Open: FragmentOpen{Span: lt.Join(gt)}}

	var kids []Node
	for {
		if cur.Empty() {
			p.errorf(ErrUnterminatedFragment, frag.Open.Span, "unterminated fragment")
			frag.Children = setRawTextBounds(frag.Open.Span, nil, kids)
			return frag, cur, true
		}
		if peekCloseTagStart(cur) {
			break
		}
		before := cur.Pos()
		n, next, ok := p.parseNode(cur)
		if ok {
			kids = append(kids, n)
		}
		cur = next
		if p.fail {
			frag.Children = kids
			return frag, cur, true
		}
		if cur.Pos() == before && !p.skipOne(&cur) {
			p.errorf(ErrUnexpectedEOI, cur.Span(), "unexpected end of input in fragment body")
			break
		}
	}
	if peekCloseTagStart(cur) {
		frag.Close, cur = p.parseFragmentClose(cur)
	}
	var cs *token.Span
	if frag.Close != nil {
		cs = &frag.Close.Span
	}
	frag.Children = setRawTextBounds(frag.Open.Span, cs, kids)
	return frag, cur, true
}

func (p *parser) parseFragmentClose(cur token.Cursor) (*FragmentClose, token.Cursor) {
	start, rest, _ := closeTagStart(cur)
	if t, ok := rest.Peek(0); ok && t.IsIdent("") {
		p.errorf(ErrMismatchedCloseTag, t.Span, "expected fragment closing, found element closing tag")
		_, rest = rest.Next()
	}
	end, rest, ok := punct(rest, '>')
	if !ok {
		p.expected(rest, "closing caret >")
		return nil, rest
	}
	return &FragmentClose{Span: start.Join(end)}, rest
}
