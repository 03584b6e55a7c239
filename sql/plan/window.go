package plan

import (
	"strings"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/transform"
)

// Window computes a set of window functions sharing one window
// specification, alongside passthrough columns. The analyzer groups
// compatible window expressions into one Window node per specification.
type Window struct {
	UnaryNode
	SelectExprs []sql.Expression
}

var _ sql.Node = (*Window)(nil)
var _ sql.Expressioner = (*Window)(nil)

// NewWindow creates a new window node.
func NewWindow(selectExprs []sql.Expression, child sql.Node) *Window {
	return &Window{
		UnaryNode:   UnaryNode{child},
		SelectExprs: selectExprs,
	}
}

// Schema implements the Node interface.
func (w *Window) Schema() sql.Schema {
	return transform.SchemaWithIds(w.SelectExprs)
}

// Resolved implements the Resolvable interface.
func (w *Window) Resolved() bool {
	return w.UnaryNode.Child.Resolved() &&
		sql.ExpressionsResolved(w.SelectExprs...)
}

// WithChildren implements the Node interface.
func (w *Window) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(w, len(children), 1)
	}
	return NewWindow(w.SelectExprs, children[0]), nil
}

// Expressions implements the Expressioner interface.
func (w *Window) Expressions() []sql.Expression {
	return w.SelectExprs
}

// WithExpressions implements the Expressioner interface.
func (w *Window) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(w.SelectExprs) {
		return nil, sql.ErrInvalidChildrenNumber.New(w, len(exprs), len(w.SelectExprs))
	}
	return NewWindow(exprs, w.Child), nil
}

func (w *Window) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("Window(%s)", strings.Join(expressionsToStrings(w.SelectExprs), ", "))
	pr.WriteChildren(w.Child.String())
	return pr.String()
}
