package plan

import (
	"strings"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/transform"
)

// Project is a projection: it computes one output column per projection
// expression.
type Project struct {
	UnaryNode
	// Projections are the output expressions, in output column order.
	Projections []sql.Expression
}

var _ sql.Node = (*Project)(nil)
var _ sql.Expressioner = (*Project)(nil)

// NewProject creates a new projection.
func NewProject(expressions []sql.Expression, child sql.Node) *Project {
	return &Project{
		UnaryNode:   UnaryNode{child},
		Projections: expressions,
	}
}

// Schema implements the Node interface.
func (p *Project) Schema() sql.Schema {
	return transform.SchemaWithIds(p.Projections)
}

// Resolved implements the Resolvable interface.
func (p *Project) Resolved() bool {
	return p.UnaryNode.Child.Resolved() &&
		sql.ExpressionsResolved(p.Projections...)
}

func (p *Project) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("Project(%s)", strings.Join(expressionsToStrings(p.Projections), ", "))
	pr.WriteChildren(p.Child.String())
	return pr.String()
}

// Expressions implements the Expressioner interface.
func (p *Project) Expressions() []sql.Expression {
	return p.Projections
}

// WithChildren implements the Node interface.
func (p *Project) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 1)
	}
	return NewProject(p.Projections, children[0]), nil
}

// WithExpressions implements the Expressioner interface.
func (p *Project) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(p.Projections) {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(exprs), len(p.Projections))
	}
	return NewProject(exprs, p.Child), nil
}
