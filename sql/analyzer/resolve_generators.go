package analyzer

import (
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

var (
	errMultipleGenerators = errors.NewKind("there can't be more than 1 instance of EXPLODE in a SELECT")
	errNestedGenerator    = errors.NewKind("EXPLODE cannot be nested inside another expression: %s")
	errExplodeNotArray    = errors.NewKind("argument of type %q given to EXPLODE, expecting array")
)

// resolveGenerators lifts EXPLODE calls out of projections into a Generate
// operator. The exploded column keeps its position; the operator emits one
// row per element of the array.
func resolveGenerators(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("resolve_generators")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		p, ok := n.(*plan.Project)
		if !ok {
			return n, transform.SameTree, nil
		}

		g, err := findGenerator(p.Projections)
		if err != nil {
			return nil, transform.SameTree, err
		}
		if g == nil {
			return n, transform.SameTree, nil
		}

		projections := make([]sql.Expression, len(p.Projections))
		copy(projections, p.Projections)
		projections[g.idx] = g.column

		a.Log("lifted generator %s into Generate", g.gen)
		return plan.NewGenerate(
			plan.NewProject(projections, p.Child),
			g.gen,
		), transform.NewTree, nil
	})
}

type generator struct {
	idx    int
	column sql.Expression
	gen    *function.Generate
}

// findGenerator locates the one EXPLODE of the projection, if any. More
// than one, a non-array argument, or an EXPLODE buried inside a larger
// expression is an error.
func findGenerator(exprs []sql.Expression) (*generator, error) {
	g := &generator{idx: -1}

	for i, e := range exprs {
		var explode *function.Explode
		column := e
		name := ""
		var id sql.ColumnId

		switch e := e.(type) {
		case *function.Explode:
			explode = e
			name = e.String()
			column = e.Child
		case *expression.Alias:
			if exp, ok := e.Child.(*function.Explode); ok {
				explode = exp
				name = e.Name()
				id = e.Id()
				column = expression.NewAlias(e.Name(), exp.Child).WithId(e.Id())
			}
		}

		if explode == nil {
			// an explode anywhere deeper cannot be lifted
			var nested sql.Expression
			transform.InspectExpr(e, func(e sql.Expression) bool {
				if _, ok := e.(*function.Explode); ok {
					nested = e
					return true
				}
				return false
			})
			if nested != nil {
				return nil, errNestedGenerator.New(e)
			}
			continue
		}

		if g.idx >= 0 {
			return nil, errMultipleGenerators.New()
		}
		if !sql.IsArray(explode.Child.Type()) {
			return nil, errExplodeNotArray.New(explode.Child.Type())
		}

		g.idx = i
		g.column = column
		g.gen = function.NewGenerate(
			expression.NewGetField(i, explode.Child.Type(), name, explode.Child.IsNullable()).WithId(id))
	}

	if g.idx < 0 {
		return nil, nil
	}
	return g, nil
}
