package rsx

import (
	"github.com/expr-lang/expr/vm"
	"github.com/rsxlab/rsx/token"
)

// parseOpenTag parses < name attrs... > in two phases: first every
// token up to the tag end marker is collected, then the collected run
// is parsed as an attribute list. Collecting first means a broken
// attribute can never eat the closing caret.
func (p *parser) parseOpenTag(cur token.Cursor) (OpenTag, token.Cursor, bool) {
	lt, cur, ok := punct(cur, '<')
	if !ok {
		p.expected(cur, "open tag start <")
		return OpenTag{}, cur, false
	}
	name, cur, ok := p.parseNodeName(cur)
	if !ok {
		return OpenTag{}, cur, false
	}

	var attrToks []token.Token
	var selfClosing bool
	var end token.Span
	for {
		if sc, e, next, ok := openTagEnd(cur); ok {
			selfClosing, end, cur = sc, e, next
			break
		}
		if cur.Empty() {
			p.errorf(ErrUnterminatedOpenTag, name.NameSpan(), "expected closing caret >")
			return OpenTag{}, cur, false
		}
		var t token.Token
		t, cur = cur.Next()
		attrToks = append(attrToks, t)
	}

	return OpenTag{
		Name:        name,
		Attrs:       p.parseAttrs(attrToks),
		SelfClosing: selfClosing,
		Span:        lt.Join(end),
		EndSpan:     end,
	}, cur, true
}

// parseNodeName parses a tag or attribute-key name: a braced block, a
// dot path, a punct-joined sequence, or a plain identifier.
func (p *parser) parseNodeName(cur token.Cursor) (NodeName, token.Cursor, bool) {
	t0, ok := cur.Peek(0)
	if !ok {
		p.errorf(ErrUnexpectedEOI, cur.Span(), "unexpected end of input, expected a name")
		return nil, cur, false
	}
	if t0.IsGroup(token.Brace) {
		b, next, ok := p.parseBlock(cur)
		if !ok {
			return nil, next, false
		}
		return &DynamicName{Block: b}, next, true
	}
	if !t0.IsIdent("") {
		p.errorf(ErrInvalidNodeName, t0.Span, "invalid tag name or attribute key")
		return nil, cur, false
	}
	_, cur = cur.Next()
	segs := []string{t0.Text}
	span := t0.Span

	switch nameSep(cur) {
	case 0:
		return &PathName{Segments: segs, span: span}, cur, true
	case '.':
		for nameSep(cur) == '.' {
			_, cur = cur.Next() // separator
			var id token.Token
			id, cur = cur.Next()
			segs = append(segs, id.Text)
			span = span.Join(id.Span)
		}
		return &PathName{Segments: segs, span: span}, cur, true
	}
	// - and : may mix within one name; each pair records its own
	// separator
	var seps []byte
	for {
		ch := nameSep(cur)
		if ch == 0 || ch == '.' {
			break
		}
		_, cur = cur.Next()
		var id token.Token
		id, cur = cur.Next()
		seps = append(seps, ch)
		segs = append(segs, id.Text)
		span = span.Join(id.Span)
	}
	return &PunctName{Idents: segs, Seps: seps, span: span}, cur, true
}

// nameSep returns the separator punct continuing a name at the cursor,
// or 0 when the name ends here. A separator only counts when an
// identifier follows it.
func nameSep(cur token.Cursor) byte {
	t0, ok := cur.Peek(0)
	if !ok || t0.Kind != token.Punct {
		return 0
	}
	t1, ok := cur.Peek(1)
	if !ok || !t1.IsIdent("") {
		return 0
	}
	switch t0.Text {
	case ".", "-", ":":
		return t0.Text[0]
	}
	return 0
}

// parseAttrs is phase two of open-tag parsing: the collected token run
// is walked attribute by attribute, with the token-skip heuristic
// keeping the loop moving past garbage.
func (p *parser) parseAttrs(toks []token.Token) []Attr {
	cur := token.NewCursor(toks)
	var attrs []Attr
	for !cur.Empty() {
		before := cur.Pos()
		a, next, ok := p.parseAttr(cur)
		if ok {
			attrs = append(attrs, a)
		}
		cur = next
		if p.fail {
			break
		}
		if cur.Pos() == before {
			// the run is bounded by the tag end, so skipping any token
			// is safe here
			_, cur = cur.Next()
		}
	}
	return attrs
}

func (p *parser) parseAttr(cur token.Cursor) (Attr, token.Cursor, bool) {
	if t0, ok := cur.Peek(0); ok && t0.IsGroup(token.Brace) {
		b, next, ok := p.parseBlock(cur)
		if !ok {
			return nil, next, false
		}
		return &DynAttr{Block: b}, next, true
	}
	key, cur, ok := p.parseNodeName(cur)
	if !ok {
		return nil, cur, false
	}
	eq, rest, hasEq := punct(cur, '=')
	if !hasEq {
		return &KeyedAttr{Key: key, span: key.NameSpan()}, cur, true
	}
	if rest.Empty() {
		p.errorf(ErrMissingAttrValue, key.NameSpan().Join(eq), "missing attribute value")
		return &KeyedAttr{Key: key, span: key.NameSpan().Join(eq)}, rest, true
	}
	val, rest := p.parseAttrValue(rest)
	return &KeyedAttr{Key: key, Value: val, span: key.NameSpan().Join(val.Span)}, rest, true
}

// parseAttrValue parses the right-hand side of key=. A braced block is
// taken whole; otherwise the value is a single literal or a dot path,
// compiled as a host expression.
func (p *parser) parseAttrValue(cur token.Cursor) (*AttrValue, token.Cursor) {
	t0, _ := cur.Peek(0)
	if t0.IsGroup(token.Brace) {
		b, next, ok := p.parseBlock(cur)
		if !ok {
			return &AttrValue{
				Tokens: []token.Token{t0},
				Raw:    token.Stringify([]token.Token{t0}),
				Span:   t0.Span,
			}, next
		}
		var prog *vm.Program
		var raw string
		if v := b.Valid(); v != nil {
			prog, raw = v.Program, v.Source
		} else {
			raw = token.Stringify(t0.Tokens)
		}
		return &AttrValue{
			Tokens:  []token.Token{t0},
			Block:   b,
			Program: prog,
			Raw:     raw,
			Span:    t0.Span,
		}, next
	}

	var toks []token.Token
	var t token.Token
	t, cur = cur.Next()
	toks = append(toks, t)
	span := t.Span
	if t.IsIdent("") {
		for peekPunct(cur, 0, '.') {
			id, ok := cur.Peek(1)
			if !ok || !id.IsIdent("") {
				break
			}
			var dot token.Token
			dot, cur = cur.Next()
			_, cur = cur.Next()
			toks = append(toks, dot, id)
			span = span.Join(id.Span)
		}
	}

	src := p.exprSource(toks)
	prog, err := compileExpr(src)
	if err != nil {
		p.errorf(ErrInvalidExpr, span, "invalid attribute value: %v", err)
		prog = nil
	}
	return &AttrValue{Tokens: toks, Program: prog, Raw: src, Span: span}, cur
}
