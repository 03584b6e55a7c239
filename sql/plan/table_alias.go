package plan

import (
	"github.com/corvusql/corvus/sql"
)

// TableAlias is a node that gives a name to a relation, hiding the
// original name from column qualification.
type TableAlias struct {
	*UnaryNode
	name string
}

var _ sql.Node = (*TableAlias)(nil)

// NewTableAlias returns a new Table alias node.
func NewTableAlias(name string, node sql.Node) *TableAlias {
	return &TableAlias{UnaryNode: &UnaryNode{Child: node}, name: name}
}

// Name implements the Nameable interface.
func (t *TableAlias) Name() string {
	return t.name
}

// Schema implements the Node interface. All columns are re-sourced to the
// alias name; ids are preserved.
func (t *TableAlias) Schema() sql.Schema {
	childSchema := t.Child.Schema()
	schema := make(sql.Schema, len(childSchema))
	for i, col := range childSchema {
		c := *col
		c.Source = t.name
		schema[i] = &c
	}
	return schema
}

// WithChildren implements the Node interface.
func (t *TableAlias) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), 1)
	}
	return NewTableAlias(t.name, children[0]), nil
}

func (t *TableAlias) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("TableAlias(%s)", t.name)
	pr.WriteChildren(t.Child.String())
	return pr.String()
}
