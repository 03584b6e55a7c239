package plan

import (
	"github.com/corvusql/corvus/sql"
)

// Limit is a node that caps the number of rows returned, after skipping
// an optional offset.
type Limit struct {
	UnaryNode
	Limit  int64
	Offset int64
}

var _ sql.Node = (*Limit)(nil)

// NewLimit creates a new Limit node with no offset.
func NewLimit(size int64, child sql.Node) *Limit {
	return &Limit{UnaryNode: UnaryNode{Child: child}, Limit: size}
}

// NewLimitWithOffset creates a new Limit node skipping offset rows first.
func NewLimitWithOffset(size, offset int64, child sql.Node) *Limit {
	return &Limit{UnaryNode: UnaryNode{Child: child}, Limit: size, Offset: offset}
}

// WithChildren implements the Node interface.
func (l *Limit) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	nl := *l
	nl.Child = children[0]
	return &nl, nil
}

func (l *Limit) String() string {
	pr := sql.NewTreePrinter()
	if l.Offset > 0 {
		pr.WriteNode("Limit(%d, offset %d)", l.Limit, l.Offset)
	} else {
		pr.WriteNode("Limit(%d)", l.Limit)
	}
	pr.WriteChildren(l.Child.String())
	return pr.String()
}
