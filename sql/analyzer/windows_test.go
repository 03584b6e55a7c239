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

func rowNumberOver(def *sql.WindowDef) sql.Expression {
	return aggregation.NewRowNumber().(*aggregation.RowNumber).WithWindow(def)
}

func rankOver(def *sql.WindowDef) sql.Expression {
	return aggregation.NewRank().(*aggregation.Rank).WithWindow(def)
}

func TestExtractWindowFromProject(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// row_number() OVER (PARTITION BY s ORDER BY i)
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewUnresolvedColumn("s"),
			expression.NewAlias("rn", rowNumberOver(sql.NewWindowDef(
				[]sql.Expression{expression.NewUnresolvedColumn("s")},
				sql.SortFields{{
					Column: expression.NewUnresolvedColumn("i"),
					Order:  sql.Ascending,
				}},
				nil,
			))),
		},
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
	require.Equal("rn", schema[1].Name)

	// the projection reads the computed column instead of the window call
	alias, ok := project.Projections[1].(*expression.Alias)
	require.True(ok)
	gf, ok := alias.Child.(*expression.GetField)
	require.True(ok)
	require.Equal("__window_0", gf.Name())

	w, ok := project.Child.(*plan.Window)
	require.True(ok)
	require.Len(w.SelectExprs, 3)

	slot, ok := w.SelectExprs[2].(*expression.Alias)
	require.True(ok)
	require.Equal("__window_0", slot.Name())

	// an ordered window without an explicit frame got the default one
	wa, ok := slot.Child.(sql.WindowAggregation)
	require.True(ok)
	require.NotNil(wa.Window().Frame)
}

func TestExtractWindowsStackBySpecification(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	partitioned := sql.NewWindowDef(
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		nil, nil,
	)
	ordered := sql.NewWindowDef(
		nil,
		sql.SortFields{{
			Column: expression.NewUnresolvedColumn("i"),
			Order:  sql.Ascending,
		}},
		nil,
	)

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("a", rowNumberOver(partitioned)),
			expression.NewAlias("b", rankOver(partitioned)),
			expression.NewAlias("c", rowNumberOver(ordered)),
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	project, ok := analyzed.(*plan.Project)
	require.True(ok)
	require.Len(project.Projections, 3)

	// one window node per specification: the two partitioned calls share
	// one node, the ordered call gets its own on top
	outer, ok := project.Child.(*plan.Window)
	require.True(ok)
	require.Len(outer.SelectExprs, 5)

	inner, ok := outer.Child.(*plan.Window)
	require.True(ok)
	require.Len(inner.SelectExprs, 4)

	_, ok = inner.Child.(*plan.ResolvedTable)
	require.True(ok)
}

func TestWindowInFilterRejected(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		plan.NewFilter(
			expression.NewGreaterThan(
				rowNumberOver(sql.NewWindowDef(
					nil,
					sql.SortFields{{
						Column: expression.NewUnresolvedColumn("i"),
						Order:  sql.Ascending,
					}},
					nil,
				)),
				expression.NewLiteral(int64(1), sql.Int64),
			),
			plan.NewUnresolvedTable("mytable", ""),
		),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(errWindowInFilter.Is(err))
}

func TestExtractWindowsFromGroupBy(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// rank() OVER (ORDER BY sum(i)) where sum(i) is not itself selected:
	// the sum becomes a hidden aggregate output the window orders by
	node := plan.NewGroupBy(
		[]sql.Expression{
			expression.NewUnresolvedColumn("s"),
			expression.NewAlias("n", aggregation.NewCount(expression.NewUnresolvedColumn("i"))),
			expression.NewAlias("r", rankOver(sql.NewWindowDef(
				nil,
				sql.SortFields{{
					Column: aggregation.NewSum(expression.NewUnresolvedColumn("i")),
					Order:  sql.Descending,
				}},
				nil,
			))),
		},
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	project, ok := analyzed.(*plan.Project)
	require.True(ok)
	require.Len(project.Projections, 3)

	schema := project.Schema()
	require.Equal("s", schema[0].Name)
	require.Equal("n", schema[1].Name)
	require.Equal("r", schema[2].Name)

	w, ok := project.Child.(*plan.Window)
	require.True(ok)

	g, ok := w.Child.(*plan.GroupBy)
	require.True(ok)
	require.Len(g.SelectedExprs, 3)
	require.Equal("__group_0", transform.ExpressionToColumn(g.SelectedExprs[2]).Name)
}
