package rsx

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rsxlab/rsx/token"
)

// BlockPayload is the payload of a Block node: a successfully compiled
// host expression, or the raw token run kept after a recovered failure.
type BlockPayload interface {
	payload()
}

// ValidPayload wraps a compiled expr-lang program together with the
// expression source text.
type ValidPayload struct {
	Program *vm.Program
	Source  string
}

func (*ValidPayload) payload() {}

// Eval runs the compiled expression against the given environment. An
// empty block has no program and evaluates to nil.
func (p *ValidPayload) Eval(env map[string]any) (any, error) {
	if p.Program == nil {
		return nil, nil
	}
	var m vm.VM
	return m.Run(p.Program, env)
}

// InvalidPayload keeps the raw interior tokens of a block that failed
// expression parsing, plus the span of the delimiting group.
type InvalidPayload struct {
	Tokens    []token.Token
	GroupSpan token.Span
}

func (*InvalidPayload) payload() {}

// exprSource recovers the host-expression source text for a token run:
// the verbatim input slice when source text is available, the canonical
// re-stringification otherwise.
func (p *parser) exprSource(toks []token.Token) string {
	if p.src != nil && len(toks) > 0 {
		span := toks[0].Span.Join(toks[len(toks)-1].Span)
		if s, ok := p.src.Text(span); ok {
			return s
		}
	}
	return token.Stringify(toks)
}

// compileExpr parses and compiles one host expression.
func compileExpr(src string) (*vm.Program, error) {
	return expr.Compile(src, expr.AllowUndefinedVariables())
}
