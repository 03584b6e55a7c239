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

func TestValidateGroupingWithoutSets(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// grouping() without grouping sets has nothing to bind to
	node := plan.NewGroupBy(
		[]sql.Expression{
			expression.NewAlias("g", unresolvedFn("grouping", expression.NewUnresolvedColumn("s"))),
			expression.NewAlias("n", aggregation.NewCount(expression.NewUnresolvedColumn("i"))),
		},
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		plan.NewUnresolvedTable("mytable", ""),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(errGroupingMisused.Is(err))
}

func TestValidateWindowInSortKey(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewSort(
		sql.SortFields{{
			Column: rowNumberOver(sql.NewWindowDef(
				nil,
				sql.SortFields{{Column: colI(), Order: sql.Ascending}},
				nil,
			)),
			Order: sql.Ascending,
		}},
		testTable("t"),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(errWindowMisplaced.Is(err))
}

func TestValidateUnorderableSortKey(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	mapType := sql.Map(sql.Text, sql.Int64)
	table := resolvedTestTable("t", sql.Schema{
		{Name: "m", Type: mapType, Source: "t", Id: 1},
	})
	node := plan.NewSort(
		sql.SortFields{{
			Column: expression.NewGetFieldWithTable(0, mapType, "t", "m", false).WithId(1),
			Order:  sql.Ascending,
		}},
		table,
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(sql.ErrUnorderableType.Is(err))
}

func TestValidateUniqueIdsInSchema(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// both projections claim column id 1
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("a", colI()).WithId(1),
			expression.NewAlias("b", colI()).WithId(1),
		},
		testTable("t"),
	)

	_, _, err := validateUniqueIds(ctx, a, node, nil)
	require.Error(err)
	require.True(errDuplicateColumnId.Is(err))
}

func TestValidateUniqueIdsAcrossSiblings(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// sibling join sides sharing ids indicate missed deduplication
	node := plan.NewCrossJoin(testTable("t"), testTable("u"))

	_, _, err := validateUniqueIds(ctx, a, node, nil)
	require.Error(err)
	require.True(errDuplicateColumnId.Is(err))

	// distinct ids pass
	other := resolvedTestTable("u", sql.Schema{
		{Name: "a", Type: sql.Int64, Source: "u", Id: 3},
	})
	_, identity, err := validateUniqueIds(ctx, a, plan.NewCrossJoin(testTable("t"), other), nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}
