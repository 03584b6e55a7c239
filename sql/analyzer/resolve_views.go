package analyzer

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// resolveViews expands view references into SubqueryAlias subtrees. The
// body is analyzed under the namespace and temp-view snapshot stored with
// the view, not the caller's, and nested expansion is capped by the
// configured max view depth.
func resolveViews(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("resolve_views")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		t, ok := n.(*plan.UnresolvedTable)
		if !ok {
			return n, transform.SameTree, nil
		}

		name, definition, namespace, snapshot, found, err := lookupView(ctx, a, t)
		if err != nil {
			return nil, transform.SameTree, err
		}
		if !found {
			return n, transform.SameTree, nil
		}

		if ctx.ViewDepth() >= a.Config.maxViewDepth() {
			return nil, transform.SameTree, sql.ErrMaxViewDepth.New(a.Config.maxViewDepth(), name)
		}

		a.Log("view %q expanded (namespace %q)", name, namespace)

		restore := ctx.PushViewScope(namespace, snapshot)
		body, err := a.analyzeNested(ctx, definition, scope)
		restore()
		if err != nil {
			return nil, transform.SameTree, err
		}

		return plan.NewSubqueryAlias(name, body).AsView(), transform.NewTree, nil
	})
}

// lookupView finds the view a table reference names, checking session temp
// views, global temp views, then stored catalog views.
func lookupView(ctx *sql.Context, a *Analyzer, t *plan.UnresolvedTable) (name string, definition sql.Node, namespace string, snapshot []string, found bool, err error) {
	registry := ctx.GetViewRegistry()

	if t.Database == "" {
		if v, ok := registry.View("", t.Name()); ok && ctx.TempViewVisible(t.Name()) {
			return v.Name(), v.Definition(), v.Namespace(), v.TempSnapshot(), true, nil
		}
	}
	if t.Database == sql.GlobalTempDatabase {
		if v, ok := registry.View(sql.GlobalTempDatabase, t.Name()); ok {
			return v.Name(), v.Definition(), v.Namespace(), v.TempSnapshot(), true, nil
		}
		return "", nil, "", nil, false, nil
	}

	dbName := t.Database
	if dbName == "" {
		dbName = ctx.GetCurrentDatabase()
	}
	def, ok, err := a.Catalog.View(dbName, t.Name())
	if err != nil || !ok {
		return "", nil, "", nil, false, err
	}
	return def.Name, def.Definition, def.Namespace, def.TempViewSnapshot, true, nil
}
