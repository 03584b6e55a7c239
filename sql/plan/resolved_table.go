package plan

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
)

// ResolvedTable is a table bound against the catalog. Its schema carries
// the column ids the analyzer assigned for this occurrence of the table,
// so two scans of the same table expose distinct columns.
type ResolvedTable struct {
	sql.Table
	schema sql.Schema
}

var _ sql.Node = (*ResolvedTable)(nil)

// NewResolvedTable creates a new instance of ResolvedTable. The schema
// given is the table's schema stamped with this occurrence's column ids.
func NewResolvedTable(table sql.Table, schema sql.Schema) *ResolvedTable {
	return &ResolvedTable{Table: table, schema: schema}
}

// Resolved implements the Resolvable interface.
func (*ResolvedTable) Resolved() bool { return true }

// Children implements the Node interface.
func (*ResolvedTable) Children() []sql.Node { return nil }

// Schema implements the Node interface.
func (t *ResolvedTable) Schema() sql.Schema { return t.schema }

// WithChildren implements the Node interface.
func (t *ResolvedTable) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), 0)
	}
	return t, nil
}

// WithSchema returns a copy of the node with the schema given.
func (t *ResolvedTable) WithSchema(schema sql.Schema) *ResolvedTable {
	return NewResolvedTable(t.Table, schema)
}

func (t *ResolvedTable) String() string {
	return fmt.Sprintf("Table(%s)", t.Name())
}
