package analyzer

import (
	"github.com/sirupsen/logrus"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/transform"
)

const (
	defaultMaxIterations = 1000
	defaultMaxViewDepth  = 8
)

// Config tunes analysis behavior. The zero value is usable; zero limits
// fall back to defaults.
type Config struct {
	// CaseSensitive makes column and field name resolution case sensitive.
	CaseSensitive bool
	// MaxIterations caps fixed-point batches.
	MaxIterations int
	// MaxViewDepth caps nested view expansion.
	MaxViewDepth int
	// GroupByAlias allows GROUP BY to reference projection aliases.
	GroupByAlias bool
	// GroupByOrdinal allows GROUP BY to reference 1-based output ordinals.
	GroupByOrdinal bool
	// AnsiMode disables alias references in grouping position regardless of
	// GroupByAlias.
	AnsiMode bool
}

func (c Config) maxIterations() int {
	if c.MaxIterations > 0 {
		return c.MaxIterations
	}
	return defaultMaxIterations
}

func (c Config) maxViewDepth() int {
	if c.MaxViewDepth > 0 {
		return c.MaxViewDepth
	}
	return defaultMaxViewDepth
}

// Builder provides an easy way to generate Analyzers with custom rules and
// options.
type Builder struct {
	catalog         *sql.Catalog
	config          Config
	debug           bool
	preAnalyzeRules []Rule
	afterAllRules   []Rule
	validationRules []Rule
}

// NewBuilder creates a new Builder from a specific catalog.
func NewBuilder(c *sql.Catalog) *Builder {
	return &Builder{catalog: c}
}

// WithDebug activates debug on the Analyzer. Debug analyzers also run the
// plan integrity checks.
func (ab *Builder) WithDebug() *Builder {
	ab.debug = true
	return ab
}

// WithConfig sets the analysis configuration.
func (ab *Builder) WithConfig(cfg Config) *Builder {
	ab.config = cfg
	return ab
}

// AddPreAnalyzeRule adds a rule executed before the main analyzer batches.
func (ab *Builder) AddPreAnalyzeRule(name string, fn RuleFunc) *Builder {
	ab.preAnalyzeRules = append(ab.preAnalyzeRules, Rule{name, fn})
	return ab
}

// AddPostAnalyzeRule adds a rule executed after all other batches.
func (ab *Builder) AddPostAnalyzeRule(name string, fn RuleFunc) *Builder {
	ab.afterAllRules = append(ab.afterAllRules, Rule{name, fn})
	return ab
}

// AddValidationRule adds a rule to the validation batch.
func (ab *Builder) AddValidationRule(name string, fn RuleFunc) *Builder {
	ab.validationRules = append(ab.validationRules, Rule{name, fn})
	return ab
}

// Build creates a new Analyzer from the builder parameters.
func (ab *Builder) Build() *Analyzer {
	cfg := ab.config

	validationRules := append([]Rule{}, DefaultValidationRules...)
	if ab.debug {
		validationRules = append(validationRules, Rule{validateUniqueIdsRule, validateUniqueIds})
	}
	validationRules = append(validationRules, ab.validationRules...)

	batches := []*Batch{
		{Desc: "pre-analyzer", Iterations: 1, Rules: ab.preAnalyzeRules},
		{Desc: "once-before", Iterations: 1, Rules: OnceBeforeDefault},
		{Desc: "resolution", Iterations: cfg.maxIterations(), Rules: DefaultRules},
		{Desc: "once-after", Iterations: 1, Rules: OnceAfterDefault},
		{Desc: "validation", Iterations: 1, Rules: validationRules},
		{Desc: "optimization", Iterations: cfg.maxIterations(), Rules: OptimizationRules},
		{Desc: "after-all", Iterations: 1, Rules: ab.afterAllRules},
	}

	return &Analyzer{
		Debug:   ab.debug,
		Catalog: ab.catalog,
		Config:  cfg,
		Batches: batches,
	}
}

// Analyzer analyzes nodes of the execution plan and applies rules and
// validations to them.
type Analyzer struct {
	// Debug activates verbose debug logging and integrity checks.
	Debug bool
	// Batches of rules, applied in order.
	Batches []*Batch
	// Catalog of databases and registered functions.
	Catalog *sql.Catalog
	// Config of the analysis.
	Config Config

	debugCtx []string
}

// NewDefault creates a default Analyzer instance with the default
// configuration.
func NewDefault(c *sql.Catalog) *Analyzer {
	return NewBuilder(c).Build()
}

// Log prints an INFO message to stdout with the given message and args if
// the analyzer is in debug mode.
func (a *Analyzer) Log(msg string, args ...interface{}) {
	if a != nil && a.Debug {
		if len(a.debugCtx) > 0 {
			ctx := a.debugCtx[len(a.debugCtx)-1]
			logrus.WithField("context", ctx).Infof(msg, args...)
		} else {
			logrus.Infof(msg, args...)
		}
	}
}

// LogNode prints the node given if debug logging is enabled.
func (a *Analyzer) LogNode(n sql.Node) {
	if a != nil && n != nil && a.Debug {
		if len(a.debugCtx) > 0 {
			ctx := a.debugCtx[len(a.debugCtx)-1]
			logrus.WithField("context", ctx).Infof("plan:\n%s", n.String())
		} else {
			logrus.Infof("plan:\n%s", n.String())
		}
	}
}

// PushDebugContext pushes the given context string onto the context stack,
// to use when logging debug messages.
func (a *Analyzer) PushDebugContext(msg string) {
	if a != nil && a.Debug {
		a.debugCtx = append(a.debugCtx, msg)
	}
}

// PopDebugContext pops a context message off the context stack.
func (a *Analyzer) PopDebugContext() {
	if a != nil && len(a.debugCtx) > 0 {
		a.debugCtx = a.debugCtx[:len(a.debugCtx)-1]
	}
}

// Analyze applies the transformation rules to the node given. In the case
// of an error, the last successful transformation result is returned along
// with the error. Analyze is the top-level entry point: analysis state left
// on the context by a previous run is dropped. Rules analyzing nested
// subtrees (subqueries, view bodies) go through analyzeNested instead so
// the per-query state survives.
func (a *Analyzer) Analyze(ctx *sql.Context, n sql.Node, scope *Scope) (sql.Node, error) {
	ctx.ResetAnalysis()
	return a.analyzeNested(ctx, n, scope)
}

// analyzeNested runs the analysis batches without touching the per-query
// analysis state of the context.
func (a *Analyzer) analyzeNested(ctx *sql.Context, n sql.Node, scope *Scope) (sql.Node, error) {
	span, ctx := ctx.Span("analyze")
	defer span.Finish()

	var (
		same = transform.SameTree
		err  error
	)
	for _, batch := range a.Batches {
		a.PushDebugContext(batch.Desc)
		n, same, err = batch.Eval(ctx, a, n, scope)
		_ = same
		a.PopDebugContext()
		if err != nil {
			return n, err
		}
	}

	return n, nil
}
