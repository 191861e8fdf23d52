package token

// Span represents a source location in the lexed input.
type Span struct {
	Offset int // byte offset in the input
	Line   int // 1-based line number
	Column int // 1-based column number (in runes, not bytes)
	Length int // length in bytes
}

// IsZero returns true if the span is uninitialized.
func (s Span) IsZero() bool {
	return s.Offset == 0 && s.Line == 0 && s.Column == 0 && s.Length == 0
}

// End returns the end offset of the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// Join returns the smallest span covering both s and o. Joining with a
// zero span returns the other span unchanged.
func (s Span) Join(o Span) Span {
	if s.IsZero() {
		return o
	}
	if o.IsZero() {
		return s
	}
	first, last := s, o
	if o.Offset < s.Offset {
		first, last = o, s
	}
	end := first.End()
	if last.End() > end {
		end = last.End()
	}
	return Span{
		Offset: first.Offset,
		Line:   first.Line,
		Column: first.Column,
		Length: end - first.Offset,
	}
}

// Covers reports whether the byte offset falls within the span.
func (s Span) Covers(offset int) bool {
	return offset >= s.Offset && offset < s.End()
}

// Source provides access to the original input text for span slicing.
// It is an optional capability: a nil Source disables verbatim text
// recovery and callers fall back to canonical re-stringification.
type Source interface {
	// Text returns the verbatim input covered by the span, or false if
	// the span is out of range.
	Text(s Span) (string, bool)
}

// SourceText is a Source backed by the full input string.
type SourceText string

func (src SourceText) Text(s Span) (string, bool) {
	if s.IsZero() && s.Length == 0 {
		return "", false
	}
	if s.Offset < 0 || s.End() > len(src) {
		return "", false
	}
	return string(src[s.Offset:s.End()]), true
}
