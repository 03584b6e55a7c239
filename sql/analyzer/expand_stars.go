package analyzer

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// expandStars replaces star expressions with the concrete columns of the
// child schema at the point of resolution.
func expandStars(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("expand_stars")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		switch n := n.(type) {
		case *plan.Project:
			if !n.Child.Resolved() {
				return n, transform.SameTree, nil
			}
			expanded, same, err := expandStarsInList(a, n.Projections, n.Child.Schema())
			if err != nil || same {
				return n, same, err
			}
			return plan.NewProject(expanded, n.Child), transform.NewTree, nil
		case *plan.GroupBy:
			if !n.Child.Resolved() {
				return n, transform.SameTree, nil
			}
			expanded, same, err := expandStarsInList(a, n.SelectedExprs, n.Child.Schema())
			if err != nil || same {
				return n, same, err
			}
			if len(n.GroupingSets) > 0 {
				return plan.NewGroupByGroupingSets(expanded, n.GroupByExprs, n.GroupingSets, n.Child), transform.NewTree, nil
			}
			return plan.NewGroupBy(expanded, n.GroupByExprs, n.Child), transform.NewTree, nil
		}
		return n, transform.SameTree, nil
	})
}

func expandStarsInList(a *Analyzer, exprs []sql.Expression, schema sql.Schema) ([]sql.Expression, transform.TreeIdentity, error) {
	var expanded []sql.Expression
	same := transform.SameTree
	for _, e := range exprs {
		star, ok := e.(*expression.Star)
		if !ok {
			expanded = append(expanded, e)
			continue
		}

		same = transform.NewTree
		matched := false
		for i, col := range schema {
			if star.Table != "" && !a.nameMatches(col.Source, star.Table) {
				continue
			}
			matched = true
			expanded = append(expanded,
				expression.NewGetFieldWithTable(i, col.Type, col.Source, col.Name, col.Nullable).WithId(col.Id))
		}
		if !matched && star.Table != "" {
			return nil, transform.SameTree, sql.ErrTableNotFound.New(star.Table)
		}
	}
	return expanded, same, nil
}
