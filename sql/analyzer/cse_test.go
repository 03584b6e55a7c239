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

func TestCSEFactorsRepeatedExpression(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// i + i appears on its own and inside (i + i) * 2
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("a", expression.NewPlus(colI(), colI())),
			expression.NewAlias("b", expression.NewMult(
				expression.NewPlus(colI(), colI()),
				expression.NewLiteral(int64(2), sql.Int64),
			)),
		},
		testTable("t"),
	)

	out, identity, err := extractCommonSubexpressions(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	upper, ok := out.(*plan.Project)
	require.True(ok)
	require.Len(upper.Projections, 2)

	lower, ok := upper.Child.(*plan.Project)
	require.True(ok)

	// lower projection: the child columns plus the factored expression
	require.Len(lower.Projections, 3)
	shared, ok := lower.Projections[2].(*expression.Alias)
	require.True(ok)
	require.Equal("__common_0", shared.Name())
	require.NotEqual(sql.ColumnId(0), shared.Id())
	_, ok = shared.Child.(*expression.Arithmetic)
	require.True(ok)

	// both outputs now read the factored column
	aRef, ok := upper.Projections[0].(*expression.Alias).Child.(*expression.GetField)
	require.True(ok)
	require.Equal("__common_0", aRef.Name())
	require.Equal(shared.Id(), aRef.Id())

	b := upper.Projections[1].(*expression.Alias).Child.(*expression.Arithmetic)
	bRef, ok := b.Left.(*expression.GetField)
	require.True(ok)
	require.Equal("__common_0", bRef.Name())
}

func TestCSESingleOccurrenceNotFactored(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("a", expression.NewPlus(colI(), colI())),
			colS(),
		},
		testTable("t"),
	)

	_, identity, err := extractCommonSubexpressions(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}

func TestCSEBranchOnlyOccurrenceNotShared(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// one direct occurrence plus one in a single conditional branch: the
	// branch may never run, so the pair is not factored
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("a", expression.NewPlus(colI(), colI())),
			expression.NewAlias("b", function.NewIf(
				expression.NewIsNull(colS()),
				expression.NewPlus(colI(), colI()),
				expression.NewLiteral(int64(0), sql.Int64),
			)),
		},
		testTable("t"),
	)

	_, identity, err := extractCommonSubexpressions(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}

func TestCSESharedAcrossAllBranches(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// whichever branch runs evaluates i + i, so it pairs with the direct
	// occurrence
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("a", expression.NewPlus(colI(), colI())),
			expression.NewAlias("b", function.NewIf(
				expression.NewIsNull(colS()),
				expression.NewPlus(colI(), colI()),
				expression.NewMult(
					expression.NewPlus(colI(), colI()),
					expression.NewLiteral(int64(3), sql.Int64),
				),
			)),
		},
		testTable("t"),
	)

	out, identity, err := extractCommonSubexpressions(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	lower, ok := out.(*plan.Project).Child.(*plan.Project)
	require.True(ok)
	require.Len(lower.Projections, 3)
	require.Equal("__common_0", lower.Projections[2].(*expression.Alias).Name())
}

func TestCSENonDeterministicNotShared(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	r := func() sql.Expression {
		return expression.NewPlus(function.NewRand(), expression.NewLiteral(float64(1), sql.Float64))
	}
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("a", r()),
			expression.NewAlias("b", r()),
		},
		testTable("t"),
	)

	// two rand() calls must stay two draws
	_, identity, err := extractCommonSubexpressions(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}

func TestCSEIdempotent(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("a", expression.NewPlus(colI(), colI())),
			expression.NewAlias("b", expression.NewMult(
				expression.NewPlus(colI(), colI()),
				expression.NewLiteral(int64(2), sql.Int64),
			)),
		},
		testTable("t"),
	)

	out, identity, err := extractCommonSubexpressions(ctx, a, node, nil)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	_, identity, err = extractCommonSubexpressions(ctx, a, out, nil)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
}
