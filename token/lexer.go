package token

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const eof rune = -1

// LexError is a tokenization failure with the offending location.
type LexError struct {
	Msg  string
	Span Span
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Span.Line, e.Span.Column, e.Msg)
}

// Tokenize converts source text into a token tree. Identifiers, numbers
// and quoted strings become single tokens; every other non-space rune
// is one punctuation token; {} () [] open delimited groups holding
// nested token trees.
func Tokenize(src string) ([]Token, error) {
	l := &lexer{
		input:      src,
		lineStarts: lineStarts(src),
	}
	for state := lexAny; state != nil; {
		state = state(l)
	}
	if l.err != nil {
		return nil, l.err
	}
	if len(l.frames) > 0 {
		f := l.frames[len(l.frames)-1]
		return nil, &LexError{
			Msg:  fmt.Sprintf("unclosed delimiter %q", string(f.delim.open())),
			Span: f.open,
		}
	}
	return l.toks, nil
}

// lexer holds the state of the scanner.
type lexer struct {
	input      string
	start      int // start position of this item
	pos        int // current position in the input
	width      int // width of last rune read from input
	lineStarts []int
	frames     []frame // open delimited groups
	toks       []Token // tokens at the current nesting level
	err        *LexError
}

// frame is one open delimiter group.
type frame struct {
	delim Delim
	open  Span
	toks  []Token
}

// stateFn represents the state of the scanner as a function that
// returns the next state.
type stateFn func(*lexer) stateFn

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

// backup steps back one rune. Can be called only once per call of next.
func (l *lexer) backup() {
	l.pos -= l.width
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

func (l *lexer) span() Span {
	line, col := l.position(l.start)
	return Span{Offset: l.start, Line: line, Column: col, Length: l.pos - l.start}
}

func (l *lexer) emit(kind Kind) {
	l.push(Token{Kind: kind, Text: l.input[l.start:l.pos], Span: l.span()})
	l.start = l.pos
}

func (l *lexer) push(t Token) {
	if n := len(l.frames); n > 0 {
		l.frames[n-1].toks = append(l.frames[n-1].toks, t)
		return
	}
	l.toks = append(l.toks, t)
}

func (l *lexer) errorf(format string, args ...any) stateFn {
	l.err = &LexError{Msg: fmt.Sprintf(format, args...), Span: l.span()}
	return nil
}

func (l *lexer) position(offset int) (line, col int) {
	i := sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > offset
	}) - 1
	return i + 1, utf8.RuneCountInString(l.input[l.lineStarts[i]:offset]) + 1
}

func lineStarts(src string) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lexAny(l *lexer) stateFn {
	switch r := l.next(); {
	case r == eof:
		return nil
	case isSpace(r):
		l.ignore()
		return lexAny
	case r == '"':
		return lexString
	case isDigit(r):
		l.backup()
		return lexNumber
	case isAlpha(r):
		l.backup()
		return lexIdent
	case r == '{' || r == '(' || r == '[':
		l.frames = append(l.frames, frame{delim: Delim(byte(r)), open: l.span()})
		l.ignore()
		return lexAny
	case r == '}' || r == ')' || r == ']':
		return l.closeGroup(byte(r))
	default:
		l.emit(Punct)
		return lexAny
	}
}

func (l *lexer) closeGroup(ch byte) stateFn {
	n := len(l.frames)
	if n == 0 || l.frames[n-1].delim.close() != ch {
		return l.errorf("unexpected closing delimiter %q", string(ch))
	}
	f := l.frames[n-1]
	l.frames = l.frames[:n-1]
	l.push(Token{
		Kind:   Group,
		Delim:  f.delim,
		Tokens: f.toks,
		Span:   f.open.Join(l.span()),
	})
	l.ignore()
	return lexAny
}

func lexIdent(l *lexer) stateFn {
	for {
		switch r := l.next(); {
		case isAlpha(r) || isDigit(r):
			// absorb
		default:
			l.backup()
			l.emit(Ident)
			return lexAny
		}
	}
}

func lexNumber(l *lexer) stateFn {
	for r := l.next(); isDigit(r); r = l.next() {
	}
	l.backup()
	// fractional part, but only when a digit follows the dot so that
	// path-like names such as a.b keep the dot as punctuation
	if strings.HasPrefix(l.input[l.pos:], ".") {
		if r, _ := utf8.DecodeRuneInString(l.input[l.pos+1:]); isDigit(r) {
			l.next()
			for r := l.next(); isDigit(r); r = l.next() {
			}
			l.backup()
		}
	}
	l.emit(Literal)
	return lexAny
}

func lexString(l *lexer) stateFn {
	for {
		switch r := l.next(); r {
		case eof, '\n':
			return l.errorf("unterminated string")
		case '\\':
			l.next()
		case '"':
			l.emit(Literal)
			return lexAny
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isAlpha(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return unicode.IsDigit(r)
}
