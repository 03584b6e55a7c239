package memory

import (
	"github.com/corvusql/corvus/sql"
)

// Database is an in-memory database, for tests and examples.
type Database struct {
	name   string
	tables map[string]sql.Table
	views  map[string]sql.ViewDefinition
}

var _ sql.Database = (*Database)(nil)
var _ sql.ViewDatabase = (*Database)(nil)

// NewDatabase creates a new database with the given name.
func NewDatabase(name string) *Database {
	return &Database{
		name:   name,
		tables: map[string]sql.Table{},
		views:  map[string]sql.ViewDefinition{},
	}
}

// Name implements the sql.Database interface.
func (d *Database) Name() string {
	return d.name
}

// Tables implements the sql.Database interface.
func (d *Database) Tables() map[string]sql.Table {
	return d.tables
}

// AddTable adds a new table to the database.
func (d *Database) AddTable(name string, t sql.Table) {
	d.tables[name] = t
}

// AddView stores a persistent view definition under the given name.
func (d *Database) AddView(name string, def sql.ViewDefinition) {
	d.views[name] = def
}

// ViewDefinition implements the sql.ViewDatabase interface.
func (d *Database) ViewDefinition(name string) (sql.ViewDefinition, bool) {
	def, ok := d.views[name]
	return def, ok
}
