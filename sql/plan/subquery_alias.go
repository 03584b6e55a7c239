package plan

import (
	"github.com/corvusql/corvus/sql"
)

// SubqueryAlias is a derived table or expanded view: a complete query
// subtree named like a table. It is opaque; its subtree is analyzed on its
// own and outer transforms do not descend into it.
type SubqueryAlias struct {
	UnaryNode
	name string
	// IsView marks aliases produced by view expansion.
	IsView bool
}

var _ sql.Node = (*SubqueryAlias)(nil)
var _ sql.OpaqueNode = (*SubqueryAlias)(nil)

// NewSubqueryAlias creates an alias for the given query subtree.
func NewSubqueryAlias(name string, node sql.Node) *SubqueryAlias {
	return &SubqueryAlias{UnaryNode: UnaryNode{Child: node}, name: name}
}

// AsView returns a copy flagged as a view expansion.
func (n *SubqueryAlias) AsView() *SubqueryAlias {
	n2 := *n
	n2.IsView = true
	return &n2
}

// Name implements the Nameable interface.
func (n *SubqueryAlias) Name() string { return n.name }

// Schema implements the Node interface.
func (n *SubqueryAlias) Schema() sql.Schema {
	childSchema := n.Child.Schema()
	schema := make(sql.Schema, len(childSchema))
	for i, col := range childSchema {
		c := *col
		c.Source = n.name
		schema[i] = &c
	}
	return schema
}

// Opaque implements the OpaqueNode interface.
func (n *SubqueryAlias) Opaque() bool {
	return true
}

// WithChildren implements the Node interface.
func (n *SubqueryAlias) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(n, len(children), 1)
	}
	n2 := *n
	n2.Child = children[0]
	return &n2, nil
}

func (n *SubqueryAlias) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("SubqueryAlias(%s)", n.name)
	pr.WriteChildren(n.Child.String())
	return pr.String()
}
