package filter

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/signadot/tony-format/yq/debug"
	"github.com/signadot/tony-format/yq/ir"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Expr evaluates an expr-lang program once per document, with the
// document bound to doc. The program's result replaces the document.
type Expr struct {
	prg *vm.Program
}

func NewExpr(code string) (*Expr, error) {
	prg, err := expr.Compile(code, exprOpts()...)
	if err != nil {
		return nil, err
	}
	return &Expr{prg: prg}, nil
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.AllowUndefinedVariables(),
		expr.Function("getenv", func(params ...any) (any, error) {
			return os.Getenv(params[0].(string)), nil
		},
			new(func(string) string)),
	}
}

func (x *Expr) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	return eachDocument(in, out, func(doc *ir.Node) (*ir.Node, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := expr.Run(x.prg, map[string]any{"doc": toAny(doc)})
		if err != nil {
			return nil, err
		}
		if debug.Filter() {
			debug.Logf("expr returned %T", res)
		}
		node, err := fromAny(res)
		if err != nil {
			return nil, fmt.Errorf("expr result: %w", err)
		}
		return reorder(doc, node), nil
	})
}
