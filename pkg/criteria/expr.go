package criteria

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprPredicate evaluates a compiled expr-lang program with the candidate
// bound as `value`. It satisfies String, Body, and Count, so a single $expr
// criterion works for any field position.
type exprPredicate struct {
	prog *vm.Program
	src  string
}

// Expression is a predicate backed by an expr-lang program. It can stand in
// any criteria position.
type Expression interface {
	String
	Body
	Count
}

// Expr compiles an expr-lang boolean expression into a predicate.
// The candidate is available as `value`, e.g. `value startsWith "/api"`
// or `value % 2 == 0` for counts.
func Expr(src string) (Expression, error) {
	prog, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", src, err)
	}
	return exprPredicate{prog: prog, src: src}, nil
}

func (p exprPredicate) eval(candidate any) bool {
	out, err := expr.Run(p.prog, map[string]any{"value": candidate})
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

func (p exprPredicate) MatchString(s string) bool { return p.eval(s) }

func (p exprPredicate) MatchCount(n int) bool { return p.eval(n) }

func (p exprPredicate) MatchBody(text string, binary []byte) bool {
	if binary != nil {
		return false
	}
	return p.eval(text)
}

func (p exprPredicate) String() string { return fmt.Sprintf("$expr(%q)", p.src) }
