package analyzer

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// resolveSubqueries analyzes the bodies of derived tables and subquery
// expressions. Derived tables are closed over their own relations only;
// subquery expressions additionally see the enclosing query's columns
// through the scope, and record the outer columns they bind as their
// correlated set.
func resolveSubqueries(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("resolve_subqueries")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		if sa, ok := n.(*plan.SubqueryAlias); ok {
			if sa.Child.Resolved() {
				return n, transform.SameTree, nil
			}
			a.Log("analyzing derived table %q", sa.Name())
			body, err := a.analyzeNested(ctx, sa.Child, nil)
			if err != nil {
				return nil, transform.SameTree, err
			}
			nn, err := sa.WithChildren(body)
			if err != nil {
				return nil, transform.SameTree, err
			}
			return nn, transform.NewTree, nil
		}

		return transform.OneNodeExprsWithNode(n, func(outer sql.Node, e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
			switch e := e.(type) {
			case *plan.Subquery:
				sq, same, err := a.analyzeSubquery(ctx, e, outer, scope)
				if err != nil || same {
					return e, same, err
				}
				// value position: exactly one output column
				if cols := sq.Query.Schema(); len(cols) != 1 {
					return nil, transform.SameTree, plan.ErrScalarSubqueryColumns.New(len(cols))
				}
				return sq, transform.NewTree, nil
			case *plan.ExistsSubquery:
				sq, same, err := a.analyzeSubquery(ctx, e.Query, outer, scope)
				if err != nil || same {
					return e, same, err
				}
				return plan.NewExistsSubquery(sq), transform.NewTree, nil
			case *plan.InSubquery:
				sq, same, err := a.analyzeSubquery(ctx, e.Query, outer, scope)
				if err != nil || same {
					return e, same, err
				}
				if cols := sq.Query.Schema(); len(cols) != 1 {
					return nil, transform.SameTree, plan.ErrScalarSubqueryColumns.New(len(cols))
				}
				return plan.NewInSubquery(e.Left, sq), transform.NewTree, nil
			}
			return e, transform.SameTree, nil
		})
	})
}

// analyzeSubquery runs the nested analysis of one subquery expression with
// the containing node prepended to the scope.
func (a *Analyzer) analyzeSubquery(ctx *sql.Context, sq *plan.Subquery, outer sql.Node, scope *Scope) (*plan.Subquery, transform.TreeIdentity, error) {
	if sq.Query.Resolved() {
		return sq, transform.SameTree, nil
	}

	a.Log("analyzing subquery expression")
	body, err := a.analyzeNested(ctx, sq.Query, scope.NewScopeFromSubqueryExpression(outer))
	if err != nil {
		return nil, transform.SameTree, err
	}
	return sq.WithQuery(body).WithCorrelated(correlatedColumns(body)), transform.NewTree, nil
}

// correlatedColumns collects the column ids of the outer references bound
// inside the analyzed subquery body.
func correlatedColumns(n sql.Node) []sql.ColumnId {
	seen := map[sql.ColumnId]bool{}
	var ids []sql.ColumnId
	transform.Inspect(n, func(n sql.Node) bool {
		if ne, ok := n.(sql.Expressioner); ok {
			for _, e := range ne.Expressions() {
				transform.InspectExpr(e, func(e sql.Expression) bool {
					if ref, ok := e.(*expression.OuterReference); ok && !seen[ref.Id()] {
						seen[ref.Id()] = true
						ids = append(ids, ref.Id())
					}
					return false
				})
			}
		}
		return true
	})
	return ids
}
