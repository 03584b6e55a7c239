package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function/aggregation"
	"github.com/corvusql/corvus/sql/plan"
)

func TestResolveSortOrdinal(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewSort(
		sql.SortFields{{
			Column: expression.NewLiteral(int64(2), sql.Int64),
			Order:  sql.Descending,
		}},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)

	sort, ok := analyzed.(*plan.Sort)
	require.True(ok)

	gf, ok := sort.SortFields[0].Column.(*expression.GetField)
	require.True(ok)
	require.Equal(1, gf.Index())
	require.Equal("s", gf.Name())
	require.Equal(sql.Descending, sort.SortFields[0].Order)
}

func TestResolveSortOrdinalOutOfRange(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewSort(
		sql.SortFields{{
			Column: expression.NewLiteral(int64(5), sql.Int64),
			Order:  sql.Ascending,
		}},
		plan.NewUnresolvedTable("mytable", ""),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(sql.ErrOrdinalOutOfRange.Is(err))
}

func TestResolveSortByProjectionAlias(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewSort(
		sql.SortFields{{
			Column: expression.NewUnresolvedColumn("total"),
			Order:  sql.Ascending,
		}},
		plan.NewProject(
			[]sql.Expression{
				expression.NewAlias("total", expression.NewPlus(
					expression.NewUnresolvedColumn("i"),
					expression.NewUnresolvedColumn("i"),
				)),
			},
			plan.NewUnresolvedTable("mytable", ""),
		),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	sort, ok := analyzed.(*plan.Sort)
	require.True(ok)

	gf, ok := sort.SortFields[0].Column.(*expression.GetField)
	require.True(ok)
	require.Equal("total", gf.Name())
	require.Equal(0, gf.Index())
}

func TestResolveGroupByOrdinal(t *testing.T) {
	require := require.New(t)

	a := NewBuilder(testCatalog()).
		WithConfig(Config{GroupByOrdinal: true}).
		Build()
	ctx := testContext()

	node := plan.NewGroupBy(
		[]sql.Expression{
			expression.NewUnresolvedColumn("s"),
			expression.NewAlias("n", aggregation.NewCount(expression.NewUnresolvedColumn("i"))),
		},
		[]sql.Expression{expression.NewLiteral(int64(1), sql.Int64)},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)

	g, ok := analyzed.(*plan.GroupBy)
	require.True(ok)
	require.Len(g.GroupByExprs, 1)

	gf, ok := g.GroupByExprs[0].(*expression.GetField)
	require.True(ok)
	require.Equal("s", gf.Name())
}

func TestResolveGroupByOrdinalOutOfRange(t *testing.T) {
	require := require.New(t)

	a := NewBuilder(testCatalog()).
		WithConfig(Config{GroupByOrdinal: true}).
		Build()
	ctx := testContext()

	node := plan.NewGroupBy(
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		[]sql.Expression{expression.NewLiteral(int64(3), sql.Int64)},
		plan.NewUnresolvedTable("mytable", ""),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(sql.ErrOrdinalOutOfRange.Is(err))
}

func TestResolveGroupByAlias(t *testing.T) {
	require := require.New(t)

	a := NewBuilder(testCatalog()).
		WithConfig(Config{GroupByAlias: true}).
		Build()
	ctx := testContext()

	node := plan.NewGroupBy(
		[]sql.Expression{
			expression.NewAlias("up", unresolvedFn("upper", expression.NewUnresolvedColumn("s"))),
			expression.NewAlias("n", aggregation.NewCount(expression.NewUnresolvedColumn("i"))),
		},
		[]sql.Expression{expression.NewUnresolvedColumn("up")},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	g, ok := analyzed.(*plan.GroupBy)
	require.True(ok)
	require.Len(g.GroupByExprs, 1)
	// the alias reference was replaced by the aliased expression
	_, isCol := g.GroupByExprs[0].(*expression.GetField)
	require.False(isCol)
}

func TestResolveGroupByAliasAnsiMode(t *testing.T) {
	require := require.New(t)

	a := NewBuilder(testCatalog()).
		WithConfig(Config{GroupByAlias: true, AnsiMode: true}).
		Build()
	ctx := testContext()

	node := plan.NewGroupBy(
		[]sql.Expression{
			expression.NewAlias("up", unresolvedFn("upper", expression.NewUnresolvedColumn("s"))),
		},
		[]sql.Expression{expression.NewUnresolvedColumn("up")},
		plan.NewUnresolvedTable("mytable", ""),
	)

	// under ANSI semantics the alias is not visible in grouping position
	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(sql.ErrColumnNotFound.Is(err))
}

// unresolvedFn builds an unresolved single-argument function call.
func unresolvedFn(name string, arg sql.Expression) sql.Expression {
	return expression.NewUnresolvedFunction(name, false, nil, arg)
}
