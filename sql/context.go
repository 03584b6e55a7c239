package sql

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// Context of the analysis of a single query. It carries the standard
// context, the session, tracing, and the call-scoped analysis state. One
// query is analyzed by one goroutine; concurrent queries each get their own
// Context, so the analysis state needs no synchronization.
type Context struct {
	context.Context
	session Session
	tracer  opentracing.Tracer
	id      uuid.UUID
	query   string

	analysis *analysisState
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithSession adds the given session to the context.
func WithSession(s Session) ContextOption {
	return func(ctx *Context) { ctx.session = s }
}

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) { ctx.tracer = t }
}

// WithQuery adds the given query text to the context, for diagnostics only.
func WithQuery(q string) ContextOption {
	return func(ctx *Context) { ctx.query = q }
}

// NewContext creates a new query context.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context:  ctx,
		session:  NewBaseSession(),
		tracer:   opentracing.NoopTracer{},
		id:       uuid.NewV4(),
		analysis: newAnalysisState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewEmptyContext returns a default context with the default values.
func NewEmptyContext() *Context { return NewContext(context.TODO()) }

// Session returns the session of the context.
func (c *Context) Session() Session { return c.session }

// ID returns the unique identifier of the query being analyzed. It is used
// as a tracing tag and log field.
func (c *Context) ID() uuid.UUID { return c.id }

// Query returns the query text, if any was attached.
func (c *Context) Query() string { return c.query }

// GetCurrentDatabase returns the namespace relations resolve against: the
// innermost view namespace override if resolution is inside a view body,
// otherwise the session's current database.
func (c *Context) GetCurrentDatabase() string {
	if n := len(c.analysis.namespaces); n > 0 {
		return c.analysis.namespaces[n-1]
	}
	return c.session.GetCurrentDatabase()
}

// GetViewRegistry returns the session temp view registry.
func (c *Context) GetViewRegistry() *ViewRegistry {
	return c.session.GetViewRegistry()
}

// Logger returns the session logger extended with the query id.
func (c *Context) Logger() *logrus.Entry {
	return c.session.GetLogger().WithField("query_id", c.id.String())
}

// Span creates a new tracing span with the given operation name and
// options. If there is a parent span, the new one is a child of it.
func (c *Context) Span(
	opName string,
	opts ...opentracing.StartSpanOption,
) (opentracing.Span, *Context) {
	parentSpan := opentracing.SpanFromContext(c.Context)
	if parentSpan != nil {
		opts = append(opts, opentracing.ChildOf(parentSpan.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)
	span.SetTag("query_id", c.id.String())

	ctx := opentracing.ContextWithSpan(c.Context, span)
	nc := *c
	nc.Context = ctx
	return span, &nc
}

// analysisState is the call-scoped mutable state of one resolution run:
// nested view namespaces and depth, the per-query relation cache, and the
// column id allocator. It is reset at the start of top-level analysis and
// discarded when analysis completes or fails.
type analysisState struct {
	viewDepth  int
	namespaces []string
	snapshots  [][]string
	relations  map[string]Node
	lastColId  uint64
}

func newAnalysisState() *analysisState {
	return &analysisState{relations: make(map[string]Node)}
}

// ResetAnalysis drops any state left over from a previous analysis run on
// this context. The analyzer calls it at the top of every Analyze.
func (c *Context) ResetAnalysis() {
	c.analysis = newAnalysisState()
}

// ViewDepth returns the current nested view depth, zero at top level.
func (c *Context) ViewDepth() int { return c.analysis.viewDepth }

// PushViewScope enters a nested view resolution scope. Names inside the
// view body resolve against the view's stored namespace and temp view
// snapshot. The returned function restores the previous scope and must be
// called on every exit path.
func (c *Context) PushViewScope(namespace string, tempSnapshot []string) func() {
	a := c.analysis
	a.viewDepth++
	a.namespaces = append(a.namespaces, namespace)
	a.snapshots = append(a.snapshots, tempSnapshot)
	return func() {
		a.viewDepth--
		a.namespaces = a.namespaces[:len(a.namespaces)-1]
		a.snapshots = a.snapshots[:len(a.snapshots)-1]
	}
}

// TempViewVisible reports whether the temp view with the given name is
// visible in the current resolution scope. Outside of a view body every
// temp view is visible; inside a view body only the snapshot taken at view
// creation is.
func (c *Context) TempViewVisible(name string) bool {
	a := c.analysis
	if len(a.snapshots) == 0 {
		return true
	}
	for _, n := range a.snapshots[len(a.snapshots)-1] {
		if n == name {
			return true
		}
	}
	return false
}

// CachedRelation returns the already-resolved relation for the given fully
// qualified name, if the current analysis run resolved it before. The cache
// guarantees a name binds to the same relation instance within one query.
func (c *Context) CachedRelation(fqName string) (Node, bool) {
	n, ok := c.analysis.relations[fqName]
	return n, ok
}

// CacheRelation stores a resolved relation under its fully qualified name
// for the remainder of the current analysis run.
func (c *Context) CacheRelation(fqName string, n Node) {
	c.analysis.relations[fqName] = n
}

// NewColumnId allocates the next unique column id for this analysis run.
func (c *Context) NewColumnId() ColumnId {
	c.analysis.lastColId++
	return ColumnId(c.analysis.lastColId)
}
