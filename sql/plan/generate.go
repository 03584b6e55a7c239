package plan

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function"
)

// Generate runs a generator function over each input row, producing one
// output row per generated value alongside the other projected columns.
type Generate struct {
	UnaryNode
	Generator *function.Generate
}

var _ sql.Node = (*Generate)(nil)
var _ sql.Expressioner = (*Generate)(nil)

// NewGenerate creates a new generate node.
func NewGenerate(child sql.Node, generator *function.Generate) *Generate {
	return &Generate{UnaryNode{child}, generator}
}

// Schema implements the Node interface. The generated column keeps its
// position in the child schema, typed as the generator's element type.
func (g *Generate) Schema() sql.Schema {
	s := g.Child.Schema().Copy()
	idx := len(s) - 1
	if gf, ok := g.Generator.Child.(*expression.GetField); ok {
		idx = gf.Index()
	}
	s[idx].Type = g.Generator.Type()
	return s
}

// Resolved implements the Resolvable interface.
func (g *Generate) Resolved() bool {
	return g.Child.Resolved() && g.Generator.Resolved()
}

// WithChildren implements the Node interface.
func (g *Generate) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}
	return NewGenerate(children[0], g.Generator), nil
}

// Expressions implements the Expressioner interface.
func (g *Generate) Expressions() []sql.Expression {
	return []sql.Expression{g.Generator}
}

// WithExpressions implements the Expressioner interface.
func (g *Generate) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(exprs), 1)
	}

	gen, ok := exprs[0].(*function.Generate)
	if !ok {
		return nil, sql.ErrInvalidChildType.New(g, exprs[0], (*function.Generate)(nil))
	}

	return NewGenerate(g.Child, gen), nil
}

func (g *Generate) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("Generate(%s)", g.Generator)
	pr.WriteChildren(g.Child.String())
	return pr.String()
}
