package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

func colI() *expression.GetField {
	return expression.NewGetFieldWithTable(0, sql.Int64, "t", "i", false).WithId(1)
}

func colS() *expression.GetField {
	return expression.NewGetFieldWithTable(1, sql.Text, "t", "s", false).WithId(2)
}

func TestFoldConstants(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("x", expression.NewPlus(
				expression.NewLiteral(int64(1), sql.Int64),
				expression.NewLiteral(int64(2), sql.Int64),
			)),
			colI(),
		},
		testTable("t"),
	)

	out, identity, err := foldConstants(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	alias := out.(*plan.Project).Projections[0].(*expression.Alias)
	lit, ok := alias.Child.(*expression.Literal)
	require.True(ok)
	require.Equal(int64(3), lit.Value())

	// non-constant projections are untouched
	_, ok = out.(*plan.Project).Projections[1].(*expression.GetField)
	require.True(ok)
}

func TestFoldConstantsSkipsNonDeterministic(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("r", expression.NewPlus(
				function.NewRand(),
				expression.NewLiteral(float64(1), sql.Float64),
			)),
		},
		testTable("t"),
	)

	_, identity, err := foldConstants(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}

func TestSimplifyStructFieldAccess(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	st := expression.NewCreateStruct(
		[]string{"a", "b"},
		[]sql.Expression{colI(), expression.NewLiteral("z", sql.Text)},
	)
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("v", expression.NewGetStructField(st, "a")),
		},
		testTable("t"),
	)

	out, identity, err := simplifyStructOps(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	alias := out.(*plan.Project).Projections[0].(*expression.Alias)
	gf, ok := alias.Child.(*expression.GetField)
	require.True(ok)
	require.Equal("i", gf.Name())
}

func TestSimplifyWithFieldLastWriteWins(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	st := expression.NewCreateStruct(
		[]string{"a"},
		[]sql.Expression{expression.NewLiteral(int64(0), sql.Int64)},
	)
	e := expression.NewWithField(
		expression.NewWithField(st, "a", expression.NewLiteral(int64(1), sql.Int64)),
		"a", expression.NewLiteral(int64(2), sql.Int64),
	)
	node := plan.NewProject(
		[]sql.Expression{expression.NewAlias("v", e)},
		testTable("t"),
	)

	out, identity, err := simplifyStructOps(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	alias := out.(*plan.Project).Projections[0].(*expression.Alias)
	wf, ok := alias.Child.(*expression.WithField)
	require.True(ok)
	require.Equal(st, wf.Struct)
	require.Equal(int64(2), wf.Value.(*expression.Literal).Value())
}

func TestSimplifyElementAt(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	arr := expression.NewCreateArray([]sql.Expression{
		expression.NewLiteral("a", sql.Text),
		expression.NewLiteral("b", sql.Text),
	})
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("hit", expression.NewElementAt(
				arr, expression.NewLiteral(int64(2), sql.Int64))),
			expression.NewAlias("miss", expression.NewElementAt(
				arr, expression.NewLiteral(int64(5), sql.Int64))),
		},
		testTable("t"),
	)

	out, identity, err := simplifyStructOps(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	projections := out.(*plan.Project).Projections

	hit := projections[0].(*expression.Alias).Child.(*expression.Literal)
	require.Equal("b", hit.Value())

	// element positions are one-based; out of range folds to null
	miss := projections[1].(*expression.Alias).Child.(*expression.Literal)
	require.Nil(miss.Value())
}

func TestSimplifyMapLookup(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	m := expression.NewCreateMap([]sql.Expression{
		expression.NewLiteral("k", sql.Text), colI(),
		expression.NewLiteral("j", sql.Text), expression.NewLiteral(int64(7), sql.Int64),
	})
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("v", expression.NewElementAt(
				m, expression.NewLiteral("k", sql.Text))),
		},
		testTable("t"),
	)

	out, identity, err := simplifyStructOps(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	alias := out.(*plan.Project).Projections[0].(*expression.Alias)
	gf, ok := alias.Child.(*expression.GetField)
	require.True(ok)
	require.Equal("i", gf.Name())
}

func TestSimplifyMapDuplicateKeyLastWins(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// evaluation overwrites earlier entries with later ones
	m := expression.NewCreateMap([]sql.Expression{
		expression.NewLiteral("a", sql.Text), expression.NewLiteral(int64(1), sql.Int64),
		expression.NewLiteral("a", sql.Text), expression.NewLiteral(int64(2), sql.Int64),
	})
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("v", expression.NewElementAt(
				m, expression.NewLiteral("a", sql.Text))),
		},
		testTable("t"),
	)

	out, identity, err := simplifyStructOps(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	alias := out.(*plan.Project).Projections[0].(*expression.Alias)
	lit, ok := alias.Child.(*expression.Literal)
	require.True(ok)
	require.Equal(int64(2), lit.Value())
}

func TestSimplifyMapUnknownKeyNotCollapsed(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// the column key could evaluate to "a" and shadow the literal entry
	m := expression.NewCreateMap([]sql.Expression{
		expression.NewLiteral("a", sql.Text), expression.NewLiteral(int64(1), sql.Int64),
		colS(), colI(),
	})
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("v", expression.NewElementAt(
				m, expression.NewLiteral("a", sql.Text))),
		},
		testTable("t"),
	)

	_, identity, err := simplifyStructOps(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}

func TestSimplifySkipsGroupingKeys(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	key := expression.NewGetStructField(expression.NewCreateStruct(
		[]string{"a"}, []sql.Expression{colI()}), "a")
	node := plan.NewGroupBy(
		[]sql.Expression{key},
		[]sql.Expression{key},
		testTable("t"),
	)

	// collapsing a grouping key would break key/select-list matching
	_, identity, err := simplifyStructOps(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}

func TestCollapseJSONParseOfUnparse(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	e := function.NewFromJSONWithType(function.NewToJSON(colI()), sql.Int64, nil)
	node := plan.NewProject(
		[]sql.Expression{expression.NewAlias("v", e)},
		testTable("t"),
	)

	out, identity, err := collapseJSONRoundTrips(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	alias := out.(*plan.Project).Projections[0].(*expression.Alias)
	gf, ok := alias.Child.(*expression.GetField)
	require.True(ok)
	require.Equal("i", gf.Name())
}

func TestCollapseJSONUnparseOfParse(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	e := function.NewToJSON(function.NewFromJSONWithType(colS(), sql.Int64, nil))
	node := plan.NewProject(
		[]sql.Expression{expression.NewAlias("v", e)},
		testTable("t"),
	)

	out, identity, err := collapseJSONRoundTrips(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	alias := out.(*plan.Project).Projections[0].(*expression.Alias)
	gf, ok := alias.Child.(*expression.GetField)
	require.True(ok)
	require.Equal("s", gf.Name())
}

func TestCollapseJSONKeepsOptions(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	e := function.NewFromJSONWithType(function.NewToJSON(colI()), sql.Int64,
		map[string]string{"mode": "strict"})
	node := plan.NewProject(
		[]sql.Expression{expression.NewAlias("v", e)},
		testTable("t"),
	)

	_, identity, err := collapseJSONRoundTrips(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}

func TestEraseIdentityProjection(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	table := testTable("t")
	node := plan.NewProject([]sql.Expression{colI(), colS()}, table)

	out, identity, err := eraseProjection(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)
	require.Equal(table, out)
}

func TestEraseProjectionKeepsReorder(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject([]sql.Expression{
		expression.NewGetFieldWithTable(1, sql.Text, "t", "s", false).WithId(2),
		expression.NewGetFieldWithTable(0, sql.Int64, "t", "i", false).WithId(1),
	}, testTable("t"))

	_, identity, err := eraseProjection(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}

func TestEraseProjectionKeepsRename(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject([]sql.Expression{
		expression.NewAlias("n", colI()).WithId(1),
		colS(),
	}, testTable("t"))

	_, identity, err := eraseProjection(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}
