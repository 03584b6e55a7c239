package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function"
	"github.com/corvusql/corvus/sql/expression/function/aggregation"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

func TestLowerGroupingSets(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// GROUP BY s GROUPING SETS ((s), ())
	node := plan.NewGroupByGroupingSets(
		[]sql.Expression{
			expression.NewUnresolvedColumn("s"),
			expression.NewAlias("n", aggregation.NewCount(expression.NewUnresolvedColumn("i"))),
		},
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		[][]sql.Expression{
			{expression.NewUnresolvedColumn("s")},
			{},
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	g, ok := analyzed.(*plan.GroupBy)
	require.True(ok)
	require.Empty(g.GroupingSets)

	// grouping keys are the expanded copy of s plus the grouping id
	require.Len(g.GroupByExprs, 2)

	schema := g.Schema()
	require.Len(schema, 2)
	require.Equal("s", schema[0].Name)
	require.Equal("n", schema[1].Name)

	expand, ok := g.Child.(*plan.Expand)
	require.True(ok)
	require.Len(expand.Projections, 2)

	out := expand.OutputSchema
	require.Equal(plan.GroupingSetsColumn, out[len(out)-1].Name)

	// set (s) keeps the column and carries id 0; set () nulls it out and
	// flips the column's bit
	childWidth := len(out) - 2
	first := expand.Projections[0]
	require.Equal(int64(0), first[len(first)-1].(*expression.Literal).Value())

	second := expand.Projections[1]
	require.Equal(int64(1), second[len(second)-1].(*expression.Literal).Value())
	lit, ok := second[childWidth].(*expression.Literal)
	require.True(ok)
	require.Nil(lit.Value())
}

func TestLowerGroupingSetsBindsGrouping(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewGroupByGroupingSets(
		[]sql.Expression{
			expression.NewUnresolvedColumn("s"),
			expression.NewAlias("g", unresolvedFn("grouping", expression.NewUnresolvedColumn("s"))),
			expression.NewAlias("n", aggregation.NewCount(expression.NewUnresolvedColumn("i"))),
		},
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		[][]sql.Expression{
			{expression.NewUnresolvedColumn("s")},
			{},
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	g, ok := analyzed.(*plan.GroupBy)
	require.True(ok)

	var grouping *function.Grouping
	for _, sel := range g.SelectedExprs {
		transform.InspectExpr(sel, func(e sql.Expression) bool {
			if gr, ok := e.(*function.Grouping); ok {
				grouping = gr
			}
			return false
		})
	}
	require.NotNil(grouping)
	require.True(grouping.Bound())
}

func TestLowerGroupingSetsUnknownSetColumn(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// the set names a column that is not a grouping expression
	node := plan.NewGroupByGroupingSets(
		[]sql.Expression{
			expression.NewAlias("n", aggregation.NewCount(expression.NewUnresolvedColumn("i"))),
		},
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		[][]sql.Expression{
			{expression.NewUnresolvedColumn("i")},
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(errGroupingSetColumn.Is(err))
}

func TestLowerGroupingSetsBadGroupingArgument(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewGroupByGroupingSets(
		[]sql.Expression{
			expression.NewAlias("g", unresolvedFn("grouping", expression.NewUnresolvedColumn("i"))),
		},
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		[][]sql.Expression{
			{expression.NewUnresolvedColumn("s")},
			{},
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(errGroupingArgument.Is(err))
}

func TestExpandStarPreservesGroupingSets(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewGroupByGroupingSets(
		[]sql.Expression{
			expression.NewStar(),
			expression.NewAlias("n", aggregation.NewCount(colI())),
		},
		[]sql.Expression{colS()},
		[][]sql.Expression{
			{colS()},
			{},
		},
		testTable("t"),
	)

	out, identity, err := expandStars(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	g, ok := out.(*plan.GroupBy)
	require.True(ok)
	require.Len(g.SelectedExprs, 3)
	require.Len(g.GroupingSets, 2)
}
