package sql

import (
	"sync"

	"github.com/corvusql/corvus/internal/similartext"
)

// Database represents a namespace of tables in the catalog.
type Database interface {
	Nameable
	// Tables returns the information of all tables.
	Tables() map[string]Table
}

// ViewDefinition is a stored view: its unresolved body plus the resolution
// context captured when the view was created. A view body resolves under
// its stored namespace and temp-view snapshot, never under the caller's
// current ones, so its meaning does not drift with the session.
type ViewDefinition struct {
	// Name of the view.
	Name string
	// Definition is the stored, unresolved body plan.
	Definition Node
	// Namespace is the database that was current when the view was created.
	Namespace string
	// TempViewSnapshot is the set of temp view names visible at creation.
	TempViewSnapshot []string
}

// ViewDatabase is a database that stores view definitions.
type ViewDatabase interface {
	Database
	// ViewDefinition returns the named view definition, if it exists.
	ViewDefinition(name string) (ViewDefinition, bool)
}

// Catalog holds databases and registered functions. It is the external
// lookup service the resolver queries; lookups are synchronous.
type Catalog struct {
	FunctionRegistry

	mu  sync.RWMutex
	dbs []Database
}

// NewCatalog returns a new empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		FunctionRegistry: NewFunctionRegistry(),
	}
}

// AddDatabase adds a new database to the catalog.
func (c *Catalog) AddDatabase(db Database) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dbs = append(c.dbs, db)
}

// Database returns the database with the given name.
func (c *Catalog) Database(name string) (Database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for _, db := range c.dbs {
		if db.Name() == name {
			return db, nil
		}
		names = append(names, db.Name())
	}

	return nil, ErrDatabaseNotFound.New(name + similartext.Find(names, name))
}

// Table returns the table with the given name in the given database. The
// not-found error carries a suggestion when a similarly named table exists.
func (c *Catalog) Table(dbName, tableName string) (Table, error) {
	db, err := c.Database(dbName)
	if err != nil {
		return nil, err
	}

	tables := db.Tables()
	if table, ok := tables[tableName]; ok {
		return table, nil
	}

	if vdb, ok := db.(ViewDatabase); ok {
		if _, ok := vdb.ViewDefinition(tableName); ok {
			return nil, ErrExpectedTableFoundView.New(tableName)
		}
	}

	return nil, ErrTableNotFound.New(tableName + similartext.FindFromMap(tables, tableName))
}

// View returns the stored view definition with the given name in the given
// database, if the database stores views at all.
func (c *Catalog) View(dbName, viewName string) (ViewDefinition, bool, error) {
	db, err := c.Database(dbName)
	if err != nil {
		return ViewDefinition{}, false, err
	}

	vdb, ok := db.(ViewDatabase)
	if !ok {
		return ViewDefinition{}, false, nil
	}

	def, ok := vdb.ViewDefinition(viewName)
	return def, ok, nil
}
