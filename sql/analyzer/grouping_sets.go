package analyzer

import (
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

var (
	errGroupingSetColumn = errors.NewKind("grouping set expression %s is not one of the grouping expressions")
	errGroupingArgument  = errors.NewKind("argument %s of grouping() is not a grouping expression")
)

// lowerGroupingSets rewrites a GroupBy carrying grouping sets into a
// GroupBy over an Expand. The Expand replicates each input row once per
// set, nulling the grouping columns absent from that set and tagging the
// replica with a grouping id whose bits record which columns were nulled.
// grouping() calls are bound to bit extractions over that id.
func lowerGroupingSets(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("lower_grouping_sets")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		g, ok := n.(*plan.GroupBy)
		if !ok || len(g.GroupingSets) == 0 || !g.Resolved() {
			return n, transform.SameTree, nil
		}
		return a.lowerOneGroupingSets(ctx, g)
	})
}

func (a *Analyzer) lowerOneGroupingSets(ctx *sql.Context, g *plan.GroupBy) (sql.Node, transform.TreeIdentity, error) {
	groupCols := g.GroupByExprs
	if len(groupCols) == 0 {
		groupCols = unionOfSets(g.GroupingSets)
	}
	nCols := len(groupCols)
	childSchema := g.Child.Schema()

	// expand output: child columns, one fresh column per grouping
	// expression, then the grouping id
	outSchema := childSchema.Copy()
	groupFields := make([]*expression.GetField, nCols)
	for j, e := range groupCols {
		col := transform.ExpressionToColumn(e)
		nc := &sql.Column{
			Name:     col.Name,
			Type:     e.Type(),
			Nullable: true,
			Id:       ctx.NewColumnId(),
		}
		outSchema = append(outSchema, nc)
		groupFields[j] = expression.NewGetField(
			len(childSchema)+j, nc.Type, nc.Name, true).WithId(nc.Id)
	}
	gidCol := &sql.Column{
		Name: plan.GroupingSetsColumn,
		Type: sql.Int64,
		Id:   ctx.NewColumnId(),
	}
	outSchema = append(outSchema, gidCol)
	gidField := expression.NewGetField(len(outSchema)-1, sql.Int64, gidCol.Name, false).WithId(gidCol.Id)

	// one projection list per set
	projections := make([][]sql.Expression, len(g.GroupingSets))
	for s, set := range g.GroupingSets {
		member := make([]bool, nCols)
		for _, e := range set {
			j := indexOfExpr(groupCols, e)
			if j < 0 {
				return nil, transform.SameTree, errGroupingSetColumn.New(e)
			}
			member[j] = true
		}

		var gid int64
		list := make([]sql.Expression, 0, len(outSchema))
		for i, col := range childSchema {
			list = append(list, expression.NewGetFieldWithTable(
				i, col.Type, col.Source, col.Name, col.Nullable).WithId(col.Id))
		}
		for j, e := range groupCols {
			if member[j] {
				list = append(list, e)
			} else {
				list = append(list, expression.NewLiteral(nil, e.Type()))
				gid |= 1 << uint(nCols-1-j)
			}
		}
		list = append(list, expression.NewLiteral(gid, sql.Int64))
		projections[s] = list
	}

	expand := plan.NewExpand(projections, outSchema, g.Child)

	// the aggregation above groups by the expanded copies plus the id, so
	// rows from different sets never collapse into one group
	grouping := make([]sql.Expression, 0, nCols+1)
	for _, gf := range groupFields {
		grouping = append(grouping, gf)
	}
	grouping = append(grouping, gidField)

	selected := make([]sql.Expression, len(g.SelectedExprs))
	for i, sel := range g.SelectedExprs {
		rewritten, err := a.rewriteForExpand(sel, groupCols, groupFields, gidField, true)
		if err != nil {
			return nil, transform.SameTree, err
		}
		selected[i] = rewritten
	}

	a.Log("lowered %d grouping sets into Expand", len(g.GroupingSets))
	return plan.NewGroupBy(selected, grouping, expand), transform.NewTree, nil
}

// rewriteForExpand redirects grouping expression occurrences to the
// expanded copies and binds grouping() calls to the grouping id. Aggregate
// arguments keep referencing the original child columns, which Expand
// passes through unchanged. Top-level grouping columns keep their output
// identity under an alias.
func (a *Analyzer) rewriteForExpand(
	e sql.Expression,
	groupCols []sql.Expression,
	groupFields []*expression.GetField,
	gidField *expression.GetField,
	topLevel bool,
) (sql.Expression, error) {
	if alias, ok := e.(*expression.Alias); ok && topLevel {
		inner, err := a.rewriteForExpand(alias.Child, groupCols, groupFields, gidField, false)
		if err != nil {
			return nil, err
		}
		return expression.NewAlias(alias.Name(), inner).WithId(alias.Id()), nil
	}

	if _, ok := e.(sql.Aggregation); ok {
		return e, nil
	}
	if _, ok := e.(sql.WindowAggregation); ok {
		return e, nil
	}

	if grouping, ok := e.(*function.Grouping); ok && !grouping.Bound() {
		j := indexOfExpr(groupCols, grouping.Child)
		if j < 0 {
			return nil, errGroupingArgument.New(grouping.Child)
		}
		return grouping.WithGroupingId(gidField, len(groupCols)-1-j), nil
	}

	if j := indexOfExpr(groupCols, e); j >= 0 {
		if topLevel {
			// preserve the column's visible name and identity
			col := transform.ExpressionToColumn(e)
			id := col.Id
			if id == 0 {
				id = groupFields[j].Id()
			}
			return expression.NewAlias(col.Name, groupFields[j]).WithId(id), nil
		}
		return groupFields[j], nil
	}

	children := e.Children()
	if len(children) == 0 {
		return e, nil
	}
	newChildren := make([]sql.Expression, len(children))
	changed := false
	for i, child := range children {
		nc, err := a.rewriteForExpand(child, groupCols, groupFields, gidField, false)
		if err != nil {
			return nil, err
		}
		newChildren[i] = nc
		if nc != child {
			changed = true
		}
	}
	if !changed {
		return e, nil
	}
	return e.WithChildren(newChildren...)
}

// indexOfExpr finds e among the grouping expressions, matching by column
// id when both sides are column references and by string form otherwise.
func indexOfExpr(exprs []sql.Expression, e sql.Expression) int {
	for i, cand := range exprs {
		if gf1, ok := cand.(*expression.GetField); ok {
			if gf2, ok := e.(*expression.GetField); ok && gf1.Id() != 0 && gf2.Id() != 0 {
				if gf1.Id() == gf2.Id() {
					return i
				}
				continue
			}
		}
		if cand.String() == e.String() {
			return i
		}
	}
	return -1
}

func unionOfSets(sets [][]sql.Expression) []sql.Expression {
	var union []sql.Expression
	for _, set := range sets {
		for _, e := range set {
			if indexOfExpr(union, e) < 0 {
				union = append(union, e)
			}
		}
	}
	return union
}
