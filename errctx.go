package rsx

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"github.com/rsxlab/rsx/token"
)

// ErrorContext renders a small markup excerpt around the diagnostic's
// span: the offending node with up to two siblings either side, wrapped
// in its parent tag. Returns "" when the span matches no parsed node.
func ErrorContext(nodes []Node, d Diagnostic, src token.Source) string {
	if d.Span.IsZero() {
		return ""
	}
	c := &contextBuilder{src: src, want: d.Span}
	root := &etree.Element{}
	c.addNodes(root, nodes)
	if c.target == nil {
		return ""
	}
	doc := &etree.Element{}
	c.addPrevSiblings(doc, c.target)
	c.addExcerpt(doc, c.target)
	c.addNextSiblings(doc, c.target)
	doc = c.wrapParent(doc, c.target)
	return renderContext(doc)
}

type contextBuilder struct {
	src    token.Source
	want   token.Span
	target etree.Token
}

// addNodes converts the parsed tree into an etree, remembering the
// deepest token whose source span covers the wanted span.
func (c *contextBuilder) addNodes(parent *etree.Element, nodes []Node) {
	for _, n := range nodes {
		c.addNode(parent, n)
	}
}

func (c *contextBuilder) addNode(parent *etree.Element, n Node) {
	switch t := n.(type) {
	case *Element:
		el := parent.CreateElement(t.Name().String())
		for _, a := range t.Attrs() {
			switch at := a.(type) {
			case *KeyedAttr:
				el.CreateAttr(at.Key.String(), attrText(at.Value))
			case *DynAttr:
				el.CreateAttr(blockText(at.Block), "")
			}
		}
		c.mark(el, n.Span())
		c.addNodes(el, t.Children)
	case *Fragment:
		// fragments have no tag of their own; splice the children
		c.addNodes(parent, t.Children)
	case *Text:
		c.mark(parent.CreateText(t.Value), n.Span())
	case *RawText:
		c.mark(parent.CreateText(t.StringBest(c.src)), n.Span())
	case *Comment:
		c.mark(parent.CreateComment(t.Value), n.Span())
	case *Doctype:
		c.mark(parent.CreateText("<!DOCTYPE "+t.Value+">"), n.Span())
	case *Block:
		c.mark(parent.CreateText(blockText(t)), n.Span())
	}
}

func (c *contextBuilder) mark(t etree.Token, span token.Span) {
	if span.Covers(c.want.Offset) {
		c.target = t
	}
}

func (c *contextBuilder) addPrevSiblings(doc *etree.Element, t etree.Token) {
	if t.Parent() == nil {
		return
	}
	siblings, i := t.Parent().Child, t.Index()

	var picked []etree.Token
	ellipsis := false
	for j, n := i-1, 0; j >= 0; j-- {
		// skip whitespace-only text nodes
		if cd, ok := siblings[j].(*etree.CharData); ok && cd.IsWhitespace() {
			continue
		}
		if n == 2 {
			ellipsis = true
			break
		}
		picked = append(picked, siblings[j])
		n++
	}
	if ellipsis {
		doc.AddChild(etree.NewText("..."))
	}
	for j := len(picked) - 1; j >= 0; j-- {
		c.addExcerpt(doc, picked[j])
	}
}

func (c *contextBuilder) addNextSiblings(doc *etree.Element, t etree.Token) {
	if t.Parent() == nil {
		return
	}
	siblings, i := t.Parent().Child, t.Index()

	for j, n := i+1, 0; j < len(siblings); j++ {
		if cd, ok := siblings[j].(*etree.CharData); ok && cd.IsWhitespace() {
			continue
		}
		if n == 2 {
			doc.AddChild(etree.NewText("..."))
			break
		}
		c.addExcerpt(doc, siblings[j])
		n++
	}
}

// addExcerpt copies a shallow rendition of the token into doc: elements
// keep their tag and attributes but collapse nested elements to "...".
func (c *contextBuilder) addExcerpt(doc *etree.Element, t etree.Token) {
	switch el := t.(type) {
	case *etree.Element:
		clone := etree.NewElement(el.FullTag())
		clone.Attr = make([]etree.Attr, len(el.Attr))
		copy(clone.Attr, el.Attr)
		if len(el.ChildElements()) > 0 {
			clone.AddChild(etree.NewText("..."))
		} else {
			clone.SetText(el.Text())
		}
		doc.AddChild(clone)
	case *etree.CharData:
		if !el.IsWhitespace() {
			doc.AddChild(etree.NewText(el.Data))
		}
	case *etree.Comment:
		doc.AddChild(etree.NewComment(el.Data))
	}
}

func (c *contextBuilder) wrapParent(doc *etree.Element, t etree.Token) *etree.Element {
	parent := t.Parent()
	if parent == nil || parent.Tag == "" {
		return doc // do not wrap the root
	}

	doc.Space = parent.Space
	doc.Tag = parent.Tag
	doc.Attr = make([]etree.Attr, len(parent.Attr))
	copy(doc.Attr, parent.Attr)

	wrapper := &etree.Element{}
	wrapper.AddChild(doc)
	return wrapper
}

func renderContext(doc *etree.Element) string {
	dst := &html.Node{Type: html.DocumentNode}

	var walk func(*html.Node, *etree.Element)
	walk = func(dst *html.Node, src *etree.Element) {
		for _, ch := range src.Child {
			switch t := ch.(type) {
			case *etree.Element:
				n := &html.Node{Type: html.ElementNode, Data: t.FullTag()}
				for _, a := range t.Attr {
					n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Value})
				}
				dst.AppendChild(n)
				walk(n, t)
			case *etree.CharData:
				dst.AppendChild(&html.Node{Type: html.TextNode, Data: t.Data})
			case *etree.Comment:
				dst.AppendChild(&html.Node{Type: html.CommentNode, Data: t.Data})
			}
		}
	}
	walk(dst, doc)

	var buf strings.Builder
	_ = html.Render(&buf, dst)
	return buf.String()
}

func attrText(v *AttrValue) string {
	if v == nil {
		return ""
	}
	if s, ok := v.StringValue(); ok {
		return s
	}
	return v.Raw
}

func blockText(b *Block) string {
	if v := b.Valid(); v != nil {
		return "{" + v.Source + "}"
	}
	if p, ok := b.Payload.(*InvalidPayload); ok {
		return "{" + token.Stringify(p.Tokens) + "}"
	}
	return "{}"
}
