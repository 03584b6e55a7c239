package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

func testTable(name string) *plan.ResolvedTable {
	return resolvedTestTable(name, sql.Schema{
		{Name: "i", Type: sql.Int64, Source: name, Id: 1},
		{Name: "s", Type: sql.Text, Source: name, Id: 2},
	})
}

func TestBatchConverges(t *testing.T) {
	require := require.New(t)

	// wraps the plan in Limit nodes until it is three deep, then stops
	wrap := func(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
		depth := 0
		c := n
		for {
			l, ok := c.(*plan.Limit)
			if !ok {
				break
			}
			depth++
			c = l.Child
		}
		if depth >= 3 {
			return n, transform.SameTree, nil
		}
		return plan.NewLimit(10, n), transform.NewTree, nil
	}

	batch := &Batch{
		Desc:       "test",
		Iterations: 10,
		Rules:      []Rule{{"wrap", wrap}},
	}

	a := NewDefault(testCatalog())
	ctx := testContext()

	result, _, err := batch.Eval(ctx, a, testTable("mytable"), nil)
	require.NoError(err)

	depth := 0
	for {
		l, ok := result.(*plan.Limit)
		if !ok {
			break
		}
		depth++
		result = l.Child
	}
	require.Equal(3, depth)
}

func TestBatchMaxIterations(t *testing.T) {
	require := require.New(t)

	// never converges: every pass adds another Limit
	wrap := func(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
		return plan.NewLimit(10, n), transform.NewTree, nil
	}

	batch := &Batch{
		Desc:       "test",
		Iterations: 5,
		Rules:      []Rule{{"wrap", wrap}},
	}

	a := NewDefault(testCatalog())
	ctx := testContext()

	_, _, err := batch.Eval(ctx, a, testTable("mytable"), nil)
	require.Error(err)
	require.True(ErrMaxAnalysisIters.Is(err))
}

func TestBatchHashBackstop(t *testing.T) {
	require := require.New(t)

	// misbehaving rule: always reports a new tree, but the rebuilt plan is
	// structurally identical; the content hash must break the loop
	rebuild := func(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
		l, ok := n.(*plan.Limit)
		if !ok {
			return n, transform.SameTree, nil
		}
		return plan.NewLimit(l.Limit, l.Child), transform.NewTree, nil
	}

	batch := &Batch{
		Desc:       "test",
		Iterations: 10,
		Rules:      []Rule{{"rebuild", rebuild}},
	}

	a := NewDefault(testCatalog())
	ctx := testContext()

	result, _, err := batch.Eval(ctx, a, plan.NewLimit(10, testTable("mytable")), nil)
	require.NoError(err)
	_, ok := result.(*plan.Limit)
	require.True(ok)
}

func TestBatchSingleIteration(t *testing.T) {
	require := require.New(t)

	calls := 0
	wrap := func(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
		calls++
		return plan.NewLimit(10, n), transform.NewTree, nil
	}

	batch := &Batch{
		Desc:       "test",
		Iterations: 1,
		Rules:      []Rule{{"wrap", wrap}},
	}

	a := NewDefault(testCatalog())
	ctx := testContext()

	_, _, err := batch.Eval(ctx, a, testTable("mytable"), nil)
	require.NoError(err)
	require.Equal(1, calls)
}
