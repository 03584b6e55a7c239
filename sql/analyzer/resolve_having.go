package analyzer

import (
	"fmt"
	"strings"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// resolveHaving rewrites a Having over a GroupBy into a Filter. Aggregate
// subexpressions of the condition that the GroupBy does not already output
// are pushed into it as hidden outputs, the condition is rewritten to
// reference them by name, and a Project restores the original shape on
// top. A Having with no aggregation below becomes a plain Filter.
func resolveHaving(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("resolve_having")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		having, ok := n.(*plan.Having)
		if !ok {
			return n, transform.SameTree, nil
		}

		g, ok := having.Child.(*plan.GroupBy)
		if !ok {
			// HAVING without GROUP BY filters the child rows directly;
			// stray aggregates are caught by validation
			return plan.NewFilter(having.Cond, having.Child), transform.NewTree, nil
		}

		selected := make([]sql.Expression, len(g.SelectedExprs))
		copy(selected, g.SelectedExprs)
		hidden := 0

		cond, _, err := transform.Expr(having.Cond, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
			if !isAggregateExpr(e) {
				// a grouping column absent from the select list is carried
				// through as a hidden output so the filter can see it
				if name, ok := unqualifiedName(e); ok &&
					!a.inSelectList(selected, name) && a.inGroupingExprs(g.GroupByExprs, name) {
					selected = append(selected, expression.NewUnresolvedColumn(name))
					return e, transform.NewTree, nil
				}
				return e, transform.SameTree, nil
			}

			if name, ok := findSelectedAggregate(a, selected, e); ok {
				return expression.NewUnresolvedColumn(name), transform.NewTree, nil
			}

			name := fmt.Sprintf("__having_%d", hidden)
			hidden++
			selected = append(selected, expression.NewAlias(name, e))
			return expression.NewUnresolvedColumn(name), transform.NewTree, nil
		})
		if err != nil {
			return nil, transform.SameTree, err
		}

		filter := plan.NewFilter(cond,
			plan.NewGroupByGroupingSets(selected, g.GroupByExprs, g.GroupingSets, g.Child))

		if len(selected) == len(g.SelectedExprs) {
			return filter, transform.NewTree, nil
		}

		// hide the extra outputs again
		projections := make([]sql.Expression, len(g.SelectedExprs))
		for i, e := range g.SelectedExprs {
			col := transform.ExpressionToColumn(e)
			if col.Source != "" {
				projections[i] = expression.NewUnresolvedQualifiedColumn(col.Source, col.Name)
			} else {
				projections[i] = expression.NewUnresolvedColumn(col.Name)
			}
		}
		a.Log("pushed %d aggregate expression(s) from HAVING into GroupBy", len(selected)-len(g.SelectedExprs))
		return plan.NewProject(projections, filter), transform.NewTree, nil
	})
}

// isAggregateExpr reports whether e is an aggregate call, resolved or not.
func isAggregateExpr(e sql.Expression) bool {
	switch e := e.(type) {
	case sql.Aggregation:
		return true
	case *expression.UnresolvedFunction:
		return e.IsAggregate && e.Window == nil
	}
	return false
}

// inSelectList reports whether the select list already outputs name.
func (a *Analyzer) inSelectList(selected []sql.Expression, name string) bool {
	for _, sel := range selected {
		if a.nameMatches(transform.ExpressionToColumn(sel).Name, name) {
			return true
		}
	}
	return false
}

// inGroupingExprs reports whether name is one of the grouping columns.
func (a *Analyzer) inGroupingExprs(grouping []sql.Expression, name string) bool {
	for _, e := range grouping {
		switch e := e.(type) {
		case *expression.UnresolvedColumn:
			if a.nameMatches(e.Name(), name) {
				return true
			}
		case *expression.GetField:
			if a.nameMatches(e.Name(), name) {
				return true
			}
		}
	}
	return false
}

// findSelectedAggregate looks for an output of the select list that already
// computes e, returning the name the output is visible under.
func findSelectedAggregate(a *Analyzer, selected []sql.Expression, e sql.Expression) (string, bool) {
	target := strings.ToLower(e.String())
	for _, sel := range selected {
		if alias, ok := sel.(*expression.Alias); ok {
			if strings.ToLower(alias.Canonical()) == target {
				return alias.Name(), true
			}
			continue
		}
		if isAggregateExpr(sel) && strings.ToLower(sel.String()) == target {
			return transform.ExpressionToColumn(sel).Name, true
		}
	}
	return "", false
}
