package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function/aggregation"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

func TestFlattenCompositeAggregate(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// sum(i) + 1 computes on top of an aggregate and must be split
	node := plan.NewGroupBy(
		[]sql.Expression{
			expression.NewUnresolvedColumn("s"),
			expression.NewAlias("x", expression.NewPlus(
				aggregation.NewSum(expression.NewUnresolvedColumn("i")),
				expression.NewLiteral(int64(1), sql.Int64),
			)),
		},
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	project, ok := analyzed.(*plan.Project)
	require.True(ok)

	schema := project.Schema()
	require.Len(schema, 2)
	require.Equal("s", schema[0].Name)
	require.Equal("x", schema[1].Name)
	require.NotEqual(sql.ColumnId(0), schema[1].Id)

	g, ok := project.Child.(*plan.GroupBy)
	require.True(ok)
	require.Len(g.SelectedExprs, 2)
	require.Equal("__agg_1", transform.ExpressionToColumn(g.SelectedExprs[1]).Name)

	// the aggregation layer only evaluates plain aggregates
	for _, sel := range g.SelectedExprs {
		e := sel
		if alias, ok := sel.(*expression.Alias); ok {
			e = alias.Child
		}
		if _, ok := e.(sql.Aggregation); ok {
			continue
		}
		require.False(containsAggregation(e))
	}

	// the outer projection recombines the aggregate output
	outer, ok := project.Projections[1].(*expression.Alias)
	require.True(ok)
	_, ok = outer.Child.(*expression.Arithmetic)
	require.True(ok)
}

func TestFlattenKeepsPlainAggregates(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewGroupBy(
		[]sql.Expression{
			expression.NewUnresolvedColumn("s"),
			expression.NewAlias("n", aggregation.NewCount(expression.NewUnresolvedColumn("i"))),
		},
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)

	// nothing to flatten: the plan stays a single GroupBy
	g, ok := analyzed.(*plan.GroupBy)
	require.True(ok)
	require.Len(g.SelectedExprs, 2)
	require.False(g.IsGlobal())
}

func TestGlobalAggregateWithArithmetic(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// a projection with avg(i) * 2 becomes a global aggregate, then the
	// composite output is flattened
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("x", expression.NewMult(
				aggregation.NewAvg(expression.NewUnresolvedColumn("i")),
				expression.NewLiteral(float64(2), sql.Float64),
			)),
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)

	project, ok := analyzed.(*plan.Project)
	require.True(ok)

	g, ok := project.Child.(*plan.GroupBy)
	require.True(ok)
	require.True(g.IsGlobal())
	require.Len(g.SelectedExprs, 1)
	require.Equal("__agg_0", transform.ExpressionToColumn(g.SelectedExprs[0]).Name)
}
