package hash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/hash"
)

func TestOfExpressionIgnoresAliases(t *testing.T) {
	require := require.New(t)

	e := expression.NewPlus(
		expression.NewGetFieldWithTable(0, sql.Int64, "t", "i", false).WithId(1),
		expression.NewLiteral(int64(1), sql.Int64),
	)

	plain := hash.OfExpression(e)
	aliased := hash.OfExpression(expression.NewAlias("x", e).WithId(7))
	require.Equal(plain, aliased)

	renamed := hash.OfExpression(expression.NewAlias("y", e).WithId(8))
	require.Equal(plain, renamed)
}

func TestOfExpressionDistinguishesExpressions(t *testing.T) {
	require := require.New(t)

	a := expression.NewPlus(
		expression.NewGetFieldWithTable(0, sql.Int64, "t", "i", false).WithId(1),
		expression.NewLiteral(int64(1), sql.Int64),
	)
	b := expression.NewPlus(
		expression.NewGetFieldWithTable(0, sql.Int64, "t", "i", false).WithId(1),
		expression.NewLiteral(int64(2), sql.Int64),
	)

	require.NotEqual(hash.OfExpression(a), hash.OfExpression(b))
}

func TestCanonical(t *testing.T) {
	require := require.New(t)

	gf := expression.NewGetFieldWithTable(0, sql.Int64, "t", "i", false).WithId(1)
	require.Equal(gf.String(), hash.Canonical(gf))

	alias := expression.NewAlias("x", gf)
	require.Equal(hash.Canonical(gf), hash.Canonical(alias))
	require.NotEqual(alias.String(), hash.Canonical(alias))
}

func TestOfIsStable(t *testing.T) {
	require := require.New(t)

	require.Equal(hash.Of("count(t.i)"), hash.Of("count(t.i)"))
	require.NotEqual(hash.Of("count(t.i)"), hash.Of("count(t.s)"))
}
