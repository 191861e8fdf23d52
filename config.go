package rsx

import (
	"github.com/rsxlab/rsx/token"
)

const defaultMaxDepth = 128

// TransformBlockFn intercepts the interior tokens of a code block
// before they are handed to the host expression parser. Returning
// false leaves the tokens unchanged.
type TransformBlockFn func(toks []token.Token) ([]token.Token, bool)

// Config is the parse policy. The zero value is a usable default:
// nested tree, no top-level constraints, no special element names,
// blocks must be valid expressions.
type Config struct {
	// FlatTree returns the pre-order flattening instead of a nested tree.
	FlatTree bool

	// TopLevelCount requires an exact number of top-level nodes.
	TopLevelCount *int

	// TopLevelKind requires every top-level node to be of one type.
	TopLevelKind *NodeType

	// SelfClosingNames are element names that never have children,
	// regardless of a trailing / in the input.
	SelfClosingNames map[string]struct{}

	// RawTextNames are element names whose body is captured verbatim as
	// a single RawText child instead of being parsed as markup.
	RawTextNames map[string]struct{}

	// RecoverInvalidBlocks keeps the raw tokens of a block whose
	// expression failed to parse, recording a diagnostic instead of
	// aborting.
	RecoverInvalidBlocks bool

	// TransformBlock rewrites block interiors before expression parsing.
	TransformBlock TransformBlockFn

	// MaxDepth bounds markup nesting; deeper input produces a
	// diagnostic instead of unbounded recursion. Zero means the default
	// of 128.
	MaxDepth int
}

// Names builds a name set from a list of element names.
func Names(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// Defaults returns a config with the HTML-ish element sets: void
// elements self-close, script and style bodies are raw text.
func Defaults() *Config {
	return &Config{
		SelfClosingNames: Names(
			"area", "base", "br", "col", "embed", "hr", "img", "input",
			"link", "meta", "param", "source", "track", "wbr",
		),
		RawTextNames:         Names("script", "style", "textarea", "title"),
		RecoverInvalidBlocks: true,
	}
}

func (c *Config) selfClosing(name string) bool {
	_, ok := c.SelfClosingNames[name]
	return ok
}

func (c *Config) rawText(name string) bool {
	_, ok := c.RawTextNames[name]
	return ok
}

func (c *Config) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return defaultMaxDepth
}
