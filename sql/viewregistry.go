package sql

import (
	"sync"

	errors "gopkg.in/src-d/go-errors.v1"
)

// GlobalTempDatabase is the reserved database name under which global temp
// views are registered. They resolve with two-part names from any session.
const GlobalTempDatabase = "global_temp"

// ErrExistingView is returned when a view is registered twice.
var ErrExistingView = errors.NewKind("the view %s.%s already exists in the registry")

// ErrNonExistingView is returned when a non-registered view is deleted.
var ErrNonExistingView = errors.NewKind("the view %s.%s does not exist in the registry")

// View is a session-scoped temporary view: a name bound to an unresolved
// definition plan, plus the resolution context captured at creation time.
type View struct {
	name       string
	definition Node
	// namespace is the database that was current when the view was created.
	namespace string
	// tempSnapshot is the set of temp view names visible at creation.
	tempSnapshot []string
}

// NewView creates a view with the given name and definition.
func NewView(name string, definition Node, namespace string, tempSnapshot []string) View {
	return View{name, definition, namespace, tempSnapshot}
}

// Name returns the name of the view.
func (v View) Name() string { return v.name }

// Definition returns the unresolved definition plan of the view.
func (v View) Definition() Node { return v.definition }

// Namespace returns the database that was current when the view was created.
func (v View) Namespace() string { return v.namespace }

// TempSnapshot returns the temp view names visible when the view was created.
func (v View) TempSnapshot() []string { return v.tempSnapshot }

type viewKey struct {
	dbName, viewName string
}

// ViewRegistry stores session-scoped temporary views. It is safe for
// concurrent use by sessions; a single analysis run only reads it.
type ViewRegistry struct {
	mu    sync.RWMutex
	views map[viewKey]View
}

// NewViewRegistry creates an empty ViewRegistry.
func NewViewRegistry() *ViewRegistry {
	return &ViewRegistry{
		views: make(map[viewKey]View),
	}
}

// Register adds the view specified by the pair {database, view.Name()},
// returning an error if there is already one.
func (r *ViewRegistry) Register(database string, view View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := viewKey{database, view.Name()}
	if _, ok := r.views[key]; ok {
		return ErrExistingView.New(database, view.Name())
	}

	r.views[key] = view
	return nil
}

// Delete removes the view specified by the pair {databaseName, viewName},
// returning an error if it does not exist.
func (r *ViewRegistry) Delete(databaseName, viewName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := viewKey{databaseName, viewName}
	if _, ok := r.views[key]; !ok {
		return ErrNonExistingView.New(databaseName, viewName)
	}

	delete(r.views, key)
	return nil
}

// View returns the view specified by the pair {databaseName, viewName}.
func (r *ViewRegistry) View(databaseName, viewName string) (View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	view, ok := r.views[viewKey{databaseName, viewName}]
	return view, ok
}

// Names returns the names of views registered under the given database.
func (r *ViewRegistry) Names(databaseName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for key := range r.views {
		if key.dbName == databaseName {
			names = append(names, key.viewName)
		}
	}
	return names
}
