package analyzer

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/transform"
)

// OnceBeforeDefault contains the rules executed once, before resolution.
var OnceBeforeDefault = []Rule{}

// DefaultRules are the resolution rules, executed round-robin to a fixed
// point. Rules that cannot make progress yet leave the tree untouched and
// rely on a later round.
var DefaultRules = []Rule{
	{"resolve_views", resolveViews},
	{"resolve_tables", resolveTables},
	{"dedup_attribute_ids", dedupAttributeIds},
	{"resolve_functions", resolveFunctions},
	{"expand_stars", expandStars},
	{"qualify_columns", qualifyColumns},
	{"resolve_columns", resolveColumns},
	{"resolve_ordinals", resolveOrdinals},
	{"resolve_having", resolveHaving},
	{"global_aggregates", globalAggregates},
	{"flatten_aggregations", flattenAggregations},
	{"assign_output_ids", assignOutputIds},
	{"resolve_subqueries", resolveSubqueries},
}

// OnceAfterDefault contains the extraction and cleanup rules run once after
// resolution converges.
var OnceAfterDefault = []Rule{
	{"resolve_generators", resolveGenerators},
	{"lower_grouping_sets", lowerGroupingSets},
	{"extract_windows", extractWindows},
}

// DefaultValidationRules are run in a single pass after resolution. They
// never transform the plan.
var DefaultValidationRules = []Rule{
	{"validate_resolved", validateIsResolved},
	{"validate_orderable", validateOrderable},
	{"validate_aggregates", validateAggregates},
}

const validateUniqueIdsRule = "validate_unique_ids"

// OptimizationRules are the algebraic rewrites, executed to a fixed point.
// Each is idempotent and preserves the plan's output schema and column
// identity.
var OptimizationRules = []Rule{
	{"fold_constants", foldConstants},
	{"simplify_struct_ops", simplifyStructOps},
	{"collapse_json_round_trips", collapseJSONRoundTrips},
	{"prune_empty", pruneEmpty},
	{"extract_common_subexpressions", extractCommonSubexpressions},
	{"erase_projection", eraseProjection},
}

// assignOutputIds gives every resolved alias in an output position a fresh
// column identity. Only zero ids are touched, so the rule converges.
func assignOutputIds(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.NodeExprs(n, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		alias, ok := e.(*expression.Alias)
		if !ok || alias.Id() != 0 || !alias.Resolved() {
			return e, transform.SameTree, nil
		}
		return alias.WithId(ctx.NewColumnId()), transform.NewTree, nil
	})
}

// containsAggregation reports whether the expression contains an aggregate
// function anywhere beneath it. Window functions do not count, even though
// a windowed aggregate carries its underlying aggregation as a child.
func containsAggregation(e sql.Expression) bool {
	if _, ok := e.(sql.WindowAggregation); ok {
		return false
	}
	if _, ok := e.(sql.Aggregation); ok {
		return true
	}
	for _, child := range e.Children() {
		if containsAggregation(child) {
			return true
		}
	}
	return false
}

// containsWindow reports whether the expression contains a window function
// anywhere beneath it.
func containsWindow(e sql.Expression) bool {
	return transform.InspectExpr(e, func(e sql.Expression) bool {
		_, ok := e.(sql.WindowAggregation)
		return ok
	})
}
