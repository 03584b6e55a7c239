package plan

import (
	"github.com/corvusql/corvus/sql"
)

// Having is a filter over the output of a grouping. It only exists between
// parse and analysis; the analyzer rewrites it into a plain filter over the
// aggregate's output columns.
type Having struct {
	UnaryNode
	Cond sql.Expression
}

var _ sql.Node = (*Having)(nil)
var _ sql.Expressioner = (*Having)(nil)

// NewHaving creates a new having node.
func NewHaving(cond sql.Expression, child sql.Node) *Having {
	return &Having{UnaryNode{child}, cond}
}

// Resolved implements the sql.Node interface.
func (h *Having) Resolved() bool {
	return h.Cond.Resolved() && h.Child.Resolved()
}

// Expressions implements the sql.Expressioner interface.
func (h *Having) Expressions() []sql.Expression {
	return []sql.Expression{h.Cond}
}

// WithChildren implements the Node interface.
func (h *Having) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(h, len(children), 1)
	}
	return NewHaving(h.Cond, children[0]), nil
}

// WithExpressions implements the Expressioner interface.
func (h *Having) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(h, len(exprs), 1)
	}
	return NewHaving(exprs[0], h.Child), nil
}

func (h *Having) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("Having(%s)", h.Cond)
	pr.WriteChildren(h.Child.String())
	return pr.String()
}
