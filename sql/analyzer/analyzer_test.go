package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusql/corvus/memory"
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function"
	"github.com/corvusql/corvus/sql/expression/function/aggregation"
	"github.com/corvusql/corvus/sql/plan"
)

func testCatalog() *sql.Catalog {
	catalog := sql.NewCatalog()
	catalog.FunctionRegistry = function.NewRegistry()

	db := memory.NewDatabase("mydb")
	db.AddTable("mytable", memory.NewTable("mytable", sql.Schema{
		{Name: "i", Type: sql.Int64, Source: "mytable"},
		{Name: "s", Type: sql.Text, Source: "mytable"},
	}))
	db.AddTable("other", memory.NewTable("other", sql.Schema{
		{Name: "i", Type: sql.Int64, Source: "other"},
		{Name: "f", Type: sql.Float64, Source: "other"},
	}))
	db.AddTable("arrays", memory.NewTable("arrays", sql.Schema{
		{Name: "i", Type: sql.Int64, Source: "arrays"},
		{Name: "tags", Type: sql.Array(sql.Text), Source: "arrays"},
	}))
	catalog.AddDatabase(db)
	return catalog
}

// resolvedTestTable builds a ResolvedTable fixture whose schema already
// carries column ids, for tests that exercise a rule directly.
func resolvedTestTable(name string, schema sql.Schema) *plan.ResolvedTable {
	return plan.NewResolvedTable(memory.NewTable(name, schema), schema)
}

func testContext() *sql.Context {
	return sql.NewContext(
		context.Background(),
		sql.WithSession(sql.NewSession(1, "mydb")),
	)
}

func TestAnalyzeResolvesColumns(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedColumn("i")},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	project, ok := analyzed.(*plan.Project)
	require.True(ok)

	gf, ok := project.Projections[0].(*expression.GetField)
	require.True(ok)
	require.Equal(0, gf.Index())
	require.Equal("i", gf.Name())
	require.Equal("mytable", gf.Table())
	require.NotEqual(sql.ColumnId(0), gf.Id())

	schema := analyzed.Schema()
	require.Len(schema, 1)
	require.Equal("i", schema[0].Name)
	require.Equal(sql.Int64, schema[0].Type)
}

func TestAnalyzeErasesIdentityProjection(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{expression.NewStar()},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)

	// the star expands to exactly the child columns, so the projection
	// folds away entirely
	_, ok := analyzed.(*plan.ResolvedTable)
	require.True(ok)
	require.Len(analyzed.Schema(), 2)
}

func TestAnalyzeMissingTable(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	_, err := a.Analyze(ctx, plan.NewUnresolvedTable("nonexistent", ""), nil)
	require.Error(err)
	require.True(sql.ErrTableNotFound.Is(err))
}

func TestAnalyzeMissingColumn(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedColumn("missing")},
		plan.NewUnresolvedTable("mytable", ""),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(sql.ErrColumnNotFound.Is(err))
}

func TestAnalyzeAmbiguousColumn(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// both mytable and other have a column named i
	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedColumn("i")},
		plan.NewCrossJoin(
			plan.NewUnresolvedTable("mytable", ""),
			plan.NewUnresolvedTable("other", ""),
		),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(sql.ErrAmbiguousColumnName.Is(err))
}

func TestAnalyzeSelfJoinDistinctIds(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewUnresolvedQualifiedColumn("mytable", "i"),
			expression.NewUnresolvedQualifiedColumn("m2", "i"),
		},
		plan.NewCrossJoin(
			plan.NewUnresolvedTable("mytable", ""),
			plan.NewTableAlias("m2", plan.NewUnresolvedTable("mytable", "")),
		),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	var join *plan.Join
	for _, child := range analyzed.Children() {
		if j, ok := child.(*plan.Join); ok {
			join = j
		}
	}
	require.NotNil(join)

	seen := map[sql.ColumnId]bool{}
	for _, col := range join.Left.Schema() {
		require.NotEqual(sql.ColumnId(0), col.Id)
		seen[col.Id] = true
	}
	for _, col := range join.Right.Schema() {
		require.NotEqual(sql.ColumnId(0), col.Id)
		require.False(seen[col.Id], "column id %d appears on both join sides", col.Id)
	}

	// the two projected columns reference different instances
	project := analyzed.(*plan.Project)
	left := project.Projections[0].(*expression.GetField)
	right := project.Projections[1].(*expression.GetField)
	require.NotEqual(left.Id(), right.Id())
}

func TestAnalyzeMisusedAlias(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("a", expression.NewUnresolvedColumn("i")),
			expression.NewUnresolvedColumn("a"),
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(sql.ErrMisusedAlias.Is(err))
}

func TestAnalyzeAliasGetsOutputId(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("twice", expression.NewPlus(
				expression.NewUnresolvedColumn("i"),
				expression.NewUnresolvedColumn("i"),
			)),
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)

	schema := analyzed.Schema()
	require.Len(schema, 1)
	require.Equal("twice", schema[0].Name)
	require.NotEqual(sql.ColumnId(0), schema[0].Id)
}

func TestAnalyzeGlobalAggregate(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("n", aggregation.NewCount(expression.NewUnresolvedColumn("i"))),
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)

	g, ok := analyzed.(*plan.GroupBy)
	require.True(ok)
	require.True(g.IsGlobal())
	require.Len(g.SelectedExprs, 1)

	schema := analyzed.Schema()
	require.Equal("n", schema[0].Name)
	require.Equal(sql.Int64, schema[0].Type)
}

func TestAnalyzeDebugValidatesUniqueIds(t *testing.T) {
	require := require.New(t)

	a := NewBuilder(testCatalog()).WithDebug().Build()
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewUnresolvedQualifiedColumn("mytable", "i"),
			expression.NewUnresolvedQualifiedColumn("m2", "s"),
		},
		plan.NewCrossJoin(
			plan.NewUnresolvedTable("mytable", ""),
			plan.NewTableAlias("m2", plan.NewUnresolvedTable("mytable", "")),
		),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())
}

func TestAnalyzeResetsColumnIdsBetweenQueries(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedColumn("i")},
		plan.NewUnresolvedTable("mytable", ""),
	)

	first, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	second, err := a.Analyze(ctx, node, nil)
	require.NoError(err)

	// a fresh top-level analysis starts the id allocator over
	require.Equal(
		first.Schema()[0].Id,
		second.Schema()[0].Id,
	)
}
