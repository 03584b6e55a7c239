package analyzer

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// resolveTables binds UnresolvedTable nodes against the catalog. A
// resolved relation is cached per fully qualified name for the rest of the
// analysis run; each occurrence is stamped with fresh column ids at wrap
// time, so two scans of one table never share attribute identity.
func resolveTables(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("resolve_tables")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		t, ok := n.(*plan.UnresolvedTable)
		if !ok {
			return n, transform.SameTree, nil
		}

		// views are someone else's business
		if isView(ctx, a, t) {
			return n, transform.SameTree, nil
		}

		dbName := t.Database
		if dbName == "" {
			dbName = ctx.GetCurrentDatabase()
		}

		fqName := dbName + "." + t.Name()
		if cached, ok := ctx.CachedRelation(fqName); ok {
			return stampFreshIds(ctx, cached), transform.NewTree, nil
		}

		table, err := a.Catalog.Table(dbName, t.Name())
		if err != nil {
			return nil, transform.SameTree, err
		}

		a.Log("table %q resolved in database %q", t.Name(), dbName)

		resolved := plan.NewResolvedTable(table, table.Schema())
		ctx.CacheRelation(fqName, resolved)
		return stampFreshIds(ctx, resolved), transform.NewTree, nil
	})
}

// stampFreshIds returns a copy of the relation whose schema columns carry
// newly allocated column ids.
func stampFreshIds(ctx *sql.Context, n sql.Node) sql.Node {
	rt, ok := n.(*plan.ResolvedTable)
	if !ok {
		return n
	}
	schema := rt.Schema().Copy()
	for _, col := range schema {
		col.Id = ctx.NewColumnId()
	}
	return rt.WithSchema(schema)
}

// isView reports whether the unresolved table name refers to a temp view,
// a global temp view, or a stored catalog view.
func isView(ctx *sql.Context, a *Analyzer, t *plan.UnresolvedTable) bool {
	registry := ctx.GetViewRegistry()

	if t.Database == "" {
		if _, ok := registry.View("", t.Name()); ok && ctx.TempViewVisible(t.Name()) {
			return true
		}
	}
	if t.Database == sql.GlobalTempDatabase {
		if _, ok := registry.View(sql.GlobalTempDatabase, t.Name()); ok {
			return true
		}
	}

	dbName := t.Database
	if dbName == "" {
		dbName = ctx.GetCurrentDatabase()
	}
	if dbName == sql.GlobalTempDatabase {
		return false
	}
	if _, ok, err := a.Catalog.View(dbName, t.Name()); err == nil && ok {
		return true
	}
	return false
}
