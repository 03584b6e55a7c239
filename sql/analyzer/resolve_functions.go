package analyzer

import (
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function/aggregation"
	"github.com/corvusql/corvus/sql/transform"
)

// errNotWindowable is returned when an OVER spec is attached to a function
// that is neither a window function nor an aggregate.
var errNotWindowable = errors.NewKind("function %q cannot be used with an OVER clause")

// resolveFunctions replaces UnresolvedFunction nodes with instances built
// by the catalog's function registry. A function carrying an OVER spec
// becomes a window aggregation.
func resolveFunctions(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("resolve_functions")
	defer span.Finish()

	return transform.NodeExprs(n, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		uf, ok := e.(*expression.UnresolvedFunction)
		if !ok {
			return e, transform.SameTree, nil
		}
		if !sql.ExpressionsResolved(uf.Arguments...) {
			return e, transform.SameTree, nil
		}

		fn, err := a.Catalog.Function(uf.Name())
		if err != nil {
			return nil, transform.SameTree, err
		}

		instance, err := fn.NewInstance(uf.Arguments)
		if err != nil {
			return nil, transform.SameTree, err
		}

		a.Log("resolved function %s", uf.Name())

		if uf.Window == nil {
			return instance, transform.NewTree, nil
		}

		// with an OVER spec the instance must be window-capable; plain
		// aggregates are wrapped
		switch fe := instance.(type) {
		case sql.WindowAggregation:
			return fe.WithWindow(uf.Window), transform.NewTree, nil
		case sql.Aggregation:
			return aggregation.NewWindowedFunction(fe, uf.Window), transform.NewTree, nil
		default:
			return nil, transform.SameTree, errNotWindowable.New(uf.Name())
		}
	})
}
