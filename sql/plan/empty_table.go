package plan

import (
	"github.com/corvusql/corvus/sql"
)

// EmptyTable is a relation with a known schema and no rows. The optimizer
// introduces it when it proves a subtree produces nothing.
type EmptyTable struct {
	schema sql.Schema
}

var _ sql.Node = (*EmptyTable)(nil)

// NewEmptyTableWithSchema creates a new EmptyTable node with the schema
// given, so replacing a subtree preserves its output columns and ids.
func NewEmptyTableWithSchema(schema sql.Schema) *EmptyTable {
	return &EmptyTable{schema: schema}
}

// Name implements the Nameable interface.
func (*EmptyTable) Name() string { return "__emptytable" }

// Schema implements the Node interface.
func (e *EmptyTable) Schema() sql.Schema { return e.schema }

// Resolved implements the Resolvable interface.
func (*EmptyTable) Resolved() bool { return true }

// Children implements the Node interface.
func (*EmptyTable) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (e *EmptyTable) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 0)
	}
	return e, nil
}

func (*EmptyTable) String() string { return "EmptyTable" }
