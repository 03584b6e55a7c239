package plan

import (
	"github.com/corvusql/corvus/sql"
)

// Distinct removes duplicate rows from its child.
type Distinct struct {
	UnaryNode
}

var _ sql.Node = (*Distinct)(nil)

// NewDistinct creates a new Distinct node.
func NewDistinct(child sql.Node) *Distinct {
	return &Distinct{UnaryNode{Child: child}}
}

// WithChildren implements the Node interface.
func (d *Distinct) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(d, len(children), 1)
	}
	return NewDistinct(children[0]), nil
}

func (d *Distinct) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("Distinct")
	pr.WriteChildren(d.Child.String())
	return pr.String()
}
