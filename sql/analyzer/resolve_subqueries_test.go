package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

func TestResolveDerivedTable(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedQualifiedColumn("t", "i")},
		plan.NewSubqueryAlias("t",
			plan.NewProject(
				[]sql.Expression{expression.NewUnresolvedColumn("i")},
				plan.NewUnresolvedTable("mytable", ""),
			),
		),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	schema := analyzed.Schema()
	require.Len(schema, 1)
	require.Equal("i", schema[0].Name)
	require.Equal("t", schema[0].Source)
}

func TestScalarSubquery(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewUnresolvedColumn("s"),
			expression.NewAlias("m", plan.NewSubquery(
				plan.NewProject(
					[]sql.Expression{expression.NewUnresolvedColumn("f")},
					plan.NewUnresolvedTable("other", ""),
				),
			)),
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	project, ok := analyzed.(*plan.Project)
	require.True(ok)

	alias, ok := project.Projections[1].(*expression.Alias)
	require.True(ok)
	sq, ok := alias.Child.(*plan.Subquery)
	require.True(ok)
	require.True(sq.Query.Resolved())
	require.Empty(sq.Correlated)
	require.Equal(sql.Float64, sq.Type())
}

func TestScalarSubqueryTooManyColumns(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewAlias("m", plan.NewSubquery(
				plan.NewProject(
					[]sql.Expression{
						expression.NewUnresolvedColumn("i"),
						expression.NewUnresolvedColumn("f"),
					},
					plan.NewUnresolvedTable("other", ""),
				),
			)),
		},
		plan.NewUnresolvedTable("mytable", ""),
	)

	_, err := a.Analyze(ctx, node, nil)
	require.Error(err)
	require.True(plan.ErrScalarSubqueryColumns.Is(err))
}

func TestCorrelatedExistsSubquery(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	// EXISTS (SELECT f FROM other WHERE other.i = mytable.i)
	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		plan.NewFilter(
			plan.NewExistsSubquery(plan.NewSubquery(
				plan.NewProject(
					[]sql.Expression{expression.NewUnresolvedColumn("f")},
					plan.NewFilter(
						expression.NewEquals(
							expression.NewUnresolvedQualifiedColumn("other", "i"),
							expression.NewUnresolvedQualifiedColumn("mytable", "i"),
						),
						plan.NewUnresolvedTable("other", ""),
					),
				),
			)),
			plan.NewUnresolvedTable("mytable", ""),
		),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	var exists *plan.ExistsSubquery
	transform.Inspect(analyzed, func(n sql.Node) bool {
		if ne, ok := n.(sql.Expressioner); ok {
			for _, e := range ne.Expressions() {
				transform.InspectExpr(e, func(e sql.Expression) bool {
					if ex, ok := e.(*plan.ExistsSubquery); ok {
						exists = ex
					}
					return false
				})
			}
		}
		return true
	})
	require.NotNil(exists)
	require.Len(exists.Query.Correlated, 1)

	// the outer reference binds to the enclosing scan's column identity
	var outerRef *expression.OuterReference
	transform.Inspect(exists.Query.Query, func(n sql.Node) bool {
		if ne, ok := n.(sql.Expressioner); ok {
			for _, e := range ne.Expressions() {
				transform.InspectExpr(e, func(e sql.Expression) bool {
					if ref, ok := e.(*expression.OuterReference); ok {
						outerRef = ref
					}
					return false
				})
			}
		}
		return true
	})
	require.NotNil(outerRef)
	require.Equal(exists.Query.Correlated[0], outerRef.Id())
}

func TestUncorrelatedInSubquery(t *testing.T) {
	require := require.New(t)

	a := NewDefault(testCatalog())
	ctx := testContext()

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedColumn("s")},
		plan.NewFilter(
			plan.NewInSubquery(
				expression.NewUnresolvedColumn("i"),
				plan.NewSubquery(
					plan.NewProject(
						[]sql.Expression{expression.NewUnresolvedColumn("i")},
						plan.NewUnresolvedTable("other", ""),
					),
				),
			),
			plan.NewUnresolvedTable("mytable", ""),
		),
	)

	analyzed, err := a.Analyze(ctx, node, nil)
	require.NoError(err)
	require.True(analyzed.Resolved())

	var in *plan.InSubquery
	transform.Inspect(analyzed, func(n sql.Node) bool {
		if ne, ok := n.(sql.Expressioner); ok {
			for _, e := range ne.Expressions() {
				transform.InspectExpr(e, func(e sql.Expression) bool {
					if is, ok := e.(*plan.InSubquery); ok {
						in = is
					}
					return false
				})
			}
		}
		return true
	})
	require.NotNil(in)
	require.Empty(in.Query.Correlated)
}
