package transform_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusql/corvus/memory"
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

func testTable(name string) *plan.ResolvedTable {
	schema := sql.Schema{
		{Name: "i", Type: sql.Int64, Source: name, Id: 1},
		{Name: "s", Type: sql.Text, Source: name, Id: 2},
	}
	return plan.NewResolvedTable(memory.NewTable(name, schema), schema)
}

func colI() *expression.GetField {
	return expression.NewGetFieldWithTable(0, sql.Int64, "t", "i", false).WithId(1)
}

func TestNodeVisitsBottomUp(t *testing.T) {
	require := require.New(t)

	node := plan.NewProject(
		[]sql.Expression{colI()},
		plan.NewFilter(
			expression.NewGreaterThan(colI(), expression.NewLiteral(int64(0), sql.Int64)),
			testTable("t"),
		),
	)

	var order []string
	_, identity, err := transform.Node(node, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		order = append(order, fmt.Sprintf("%T", n))
		return n, transform.SameTree, nil
	})
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
	require.Equal([]string{"*plan.ResolvedTable", "*plan.Filter", "*plan.Project"}, order)
}

func TestNodeSameTreeKeepsNode(t *testing.T) {
	require := require.New(t)

	node := plan.NewProject([]sql.Expression{colI()}, testTable("t"))

	out, identity, err := transform.Node(node, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		return n, transform.SameTree, nil
	})
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
	require.Same(node, out)
}

func TestNodeRewritesAncestors(t *testing.T) {
	require := require.New(t)

	node := plan.NewProject(
		[]sql.Expression{colI()},
		plan.NewFilter(
			expression.NewGreaterThan(colI(), expression.NewLiteral(int64(0), sql.Int64)),
			testTable("t"),
		),
	)

	// wrapping the leaf rebuilds the whole spine above it
	out, identity, err := transform.Node(node, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		if rt, ok := n.(*plan.ResolvedTable); ok {
			return plan.NewLimit(10, rt), transform.NewTree, nil
		}
		return n, transform.SameTree, nil
	})
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	project, ok := out.(*plan.Project)
	require.True(ok)
	filter, ok := project.Child.(*plan.Filter)
	require.True(ok)
	limit, ok := filter.Child.(*plan.Limit)
	require.True(ok)
	require.Equal(int64(10), limit.Limit)
}

func TestNodeStopsAtOpaque(t *testing.T) {
	require := require.New(t)

	node := plan.NewProject(
		[]sql.Expression{expression.NewGetFieldWithTable(0, sql.Int64, "sq", "i", false).WithId(1)},
		plan.NewSubqueryAlias("sq",
			plan.NewProject([]sql.Expression{colI()}, testTable("t")),
		),
	)

	count := map[string]int{}
	visit := func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		count[fmt.Sprintf("%T", n)]++
		return n, transform.SameTree, nil
	}

	_, _, err := transform.Node(node, visit)
	require.NoError(err)

	// the subquery body is hidden behind the opaque alias
	require.Equal(1, count["*plan.Project"])
	require.Equal(1, count["*plan.SubqueryAlias"])
	require.Equal(0, count["*plan.ResolvedTable"])

	count = map[string]int{}
	_, _, err = transform.NodeWithOpaque(node, visit)
	require.NoError(err)
	require.Equal(2, count["*plan.Project"])
	require.Equal(1, count["*plan.ResolvedTable"])
}

func TestNodeExprs(t *testing.T) {
	require := require.New(t)

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("x", expression.NewPlus(
				colI(), expression.NewLiteral(int64(1), sql.Int64))),
		},
		plan.NewFilter(
			expression.NewGreaterThan(colI(), expression.NewLiteral(int64(1), sql.Int64)),
			testTable("t"),
		),
	)

	out, identity, err := transform.NodeExprs(node, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		if lit, ok := e.(*expression.Literal); ok && lit.Value() == int64(1) {
			return expression.NewLiteral(int64(2), sql.Int64), transform.NewTree, nil
		}
		return e, transform.SameTree, nil
	})
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	project := out.(*plan.Project)
	sum := project.Projections[0].(*expression.Alias).Child.(*expression.Arithmetic)
	require.Equal(int64(2), sum.Right.(*expression.Literal).Value())

	filter := project.Child.(*plan.Filter)
	cmp := filter.Expression.(*expression.GreaterThan)
	require.Equal(int64(2), cmp.Right().(*expression.Literal).Value())
}

func TestOneNodeExprsDoesNotRecurse(t *testing.T) {
	require := require.New(t)

	node := plan.NewProject(
		[]sql.Expression{expression.NewLiteral(int64(1), sql.Int64)},
		plan.NewFilter(
			expression.NewLiteral(true, sql.Boolean),
			testTable("t"),
		),
	)

	out, identity, err := transform.OneNodeExprsWithNode(node, func(_ sql.Node, e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		if _, ok := e.(*expression.Literal); ok {
			return expression.NewLiteral(int64(9), sql.Int64), transform.NewTree, nil
		}
		return e, transform.SameTree, nil
	})
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	project := out.(*plan.Project)
	require.Equal(int64(9), project.Projections[0].(*expression.Literal).Value())

	// the child's expressions are out of scope
	filter := project.Child.(*plan.Filter)
	require.Equal(true, filter.Expression.(*expression.Literal).Value())
}

func TestInspectExprStopsEarly(t *testing.T) {
	require := require.New(t)

	e := expression.NewPlus(
		expression.NewPlus(colI(), expression.NewLiteral(int64(1), sql.Int64)),
		expression.NewLiteral(int64(2), sql.Int64),
	)

	visited := 0
	found := transform.InspectExpr(e, func(e sql.Expression) bool {
		visited++
		_, ok := e.(*expression.GetField)
		return ok
	})
	require.True(found)

	total := 0
	transform.InspectExpr(e, func(sql.Expression) bool {
		total++
		return false
	})
	require.Less(visited, total)

	require.False(transform.InspectExpr(e, func(e sql.Expression) bool {
		_, ok := e.(*expression.Literal)
		return ok && e.(*expression.Literal).Value() == int64(99)
	}))
}

func TestExpressionToColumn(t *testing.T) {
	require := require.New(t)

	col := transform.ExpressionToColumn(colI())
	require.Equal("i", col.Name)
	require.Equal("t", col.Source)
	require.Equal(sql.ColumnId(1), col.Id)

	alias := expression.NewAlias("total", expression.NewPlus(colI(), colI())).WithId(7)
	col = transform.ExpressionToColumn(alias)
	require.Equal("total", col.Name)
	require.Equal(sql.ColumnId(7), col.Id)
}
