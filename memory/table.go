package memory

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
)

// Table is an in-memory table.
type Table struct {
	name      string
	schema    sql.Schema
	streaming bool
}

var _ sql.Table = (*Table)(nil)
var _ sql.StreamingTable = (*Table)(nil)

// NewTable creates a new Table with the given name and schema.
func NewTable(name string, schema sql.Schema) *Table {
	return &Table{name: name, schema: schema}
}

// NewStreamingTable creates a table read as an unbounded stream.
func NewStreamingTable(name string, schema sql.Schema) *Table {
	return &Table{name: name, schema: schema, streaming: true}
}

// Name implements the sql.Nameable interface.
func (t *Table) Name() string {
	return t.name
}

// Schema implements the sql.Table interface.
func (t *Table) Schema() sql.Schema {
	return t.schema
}

// IsStreaming implements the sql.StreamingTable interface.
func (t *Table) IsStreaming() bool {
	return t.streaming
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%s)", t.name)
}
