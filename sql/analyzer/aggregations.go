package analyzer

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// globalAggregates turns a Project whose projections contain aggregate
// calls into a GroupBy with no grouping keys, producing exactly one row.
func globalAggregates(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("global_aggregates")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		project, ok := n.(*plan.Project)
		if !ok {
			return n, transform.SameTree, nil
		}

		hasAgg := false
		for _, e := range project.Projections {
			if containsAggregation(e) {
				hasAgg = true
				break
			}
		}
		if !hasAgg {
			return n, transform.SameTree, nil
		}

		a.Log("project contains aggregation, converting to global GroupBy")
		return plan.NewGroupBy(project.Projections, nil, project.Child), transform.NewTree, nil
	})
}

// flattenAggregations splits GroupBy outputs that compute on top of
// aggregates, for example sum(a) + 1 or sum(a) / count(a). The aggregate
// calls become direct GroupBy outputs and an outer Project recombines
// them, so the aggregation layer only ever evaluates plain aggregate
// calls and grouping expressions.
func flattenAggregations(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("flatten_aggregations")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		g, ok := n.(*plan.GroupBy)
		if !ok || !g.Resolved() {
			return n, transform.SameTree, nil
		}

		if !needsFlattening(g.SelectedExprs) {
			return n, transform.SameTree, nil
		}

		var aggregates []sql.Expression
		projections := make([]sql.Expression, len(g.SelectedExprs))

		for i, sel := range g.SelectedExprs {
			name := transform.ExpressionToColumn(sel).Name
			e := sel
			outerName := ""
			if alias, ok := sel.(*expression.Alias); ok {
				e = alias.Child
				outerName = alias.Name()
			}

			// plain aggregates and grouping expressions pass through
			if _, ok := e.(sql.Aggregation); ok || !containsAggregation(e) {
				idx := len(aggregates)
				aggregates = append(aggregates, sel)
				col := transform.ExpressionToColumn(sel)
				projections[i] = expression.NewGetFieldWithTable(
					idx, sel.Type(), col.Source, col.Name, sel.IsNullable()).WithId(col.Id)
				continue
			}

			// composite: pull each aggregate call out, keep the arithmetic
			// in the outer projection
			flat, _, err := transform.Expr(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
				agg, ok := e.(sql.Aggregation)
				if !ok {
					return e, transform.SameTree, nil
				}
				idx := len(aggregates)
				hiddenName := fmt.Sprintf("__agg_%d", idx)
				aggregates = append(aggregates, expression.NewAlias(hiddenName, agg))
				return expression.NewGetField(
					idx, agg.Type(), hiddenName, agg.IsNullable()), transform.NewTree, nil
			})
			if err != nil {
				return nil, transform.SameTree, err
			}
			if outerName == "" {
				outerName = name
			}
			wrapped := expression.NewAlias(outerName, flat)
			if alias, ok := sel.(*expression.Alias); ok && alias.Id() != 0 {
				wrapped = wrapped.WithId(alias.Id())
			}
			projections[i] = wrapped
		}

		a.Log("flattened composite aggregate expressions in GroupBy")
		return plan.NewProject(projections,
			plan.NewGroupByGroupingSets(aggregates, g.GroupByExprs, g.GroupingSets, g.Child)), transform.NewTree, nil
	})
}

// needsFlattening reports whether any output computes on top of an
// aggregate rather than being one.
func needsFlattening(selected []sql.Expression) bool {
	for _, sel := range selected {
		e := sel
		if alias, ok := sel.(*expression.Alias); ok {
			e = alias.Child
		}
		if _, ok := e.(sql.Aggregation); ok {
			continue
		}
		if containsAggregation(e) {
			return true
		}
	}
	return false
}
