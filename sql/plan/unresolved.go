package plan

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
)

// ErrUnresolvedTable is thrown when a table cannot be resolved.
var ErrUnresolvedTable = fmt.Errorf("unresolved table")

// UnresolvedTable is a table reference not yet bound against the catalog.
type UnresolvedTable struct {
	name     string
	Database string
}

var _ sql.Node = (*UnresolvedTable)(nil)

// NewUnresolvedTable creates a new Unresolved table.
func NewUnresolvedTable(name, db string) *UnresolvedTable {
	return &UnresolvedTable{name: name, Database: db}
}

// Name implements the Nameable interface.
func (t *UnresolvedTable) Name() string {
	return t.name
}

// Resolved implements the Resolvable interface.
func (*UnresolvedTable) Resolved() bool {
	return false
}

// Children implements the Node interface.
func (*UnresolvedTable) Children() []sql.Node { return nil }

// Schema implements the Node interface.
func (*UnresolvedTable) Schema() sql.Schema { return nil }

// WithChildren implements the Node interface.
func (t *UnresolvedTable) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), 0)
	}
	return t, nil
}

func (t *UnresolvedTable) String() string {
	if t.Database != "" {
		return fmt.Sprintf("UnresolvedTable(%s.%s)", t.Database, t.name)
	}
	return fmt.Sprintf("UnresolvedTable(%s)", t.name)
}
