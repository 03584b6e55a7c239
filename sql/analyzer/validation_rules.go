package analyzer

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/corvusql/corvus/internal/similartext"
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

var (
	errGroupingMisused = errors.NewKind("grouping(%s) requires its argument to be a grouping expression of an aggregation with grouping sets")

	errWindowMisplaced = errors.NewKind("window function %s can only appear in a select list")

	errDuplicateColumnId = errors.NewKind("duplicate column id %d (%s) in the plan; the analyzer produced an inconsistent tree")
)

// validateIsResolved rejects plans that still contain unresolved pieces
// after the resolution fixed point converged, turning each leftover into
// the most specific error available.
func validateIsResolved(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("validate_resolved")
	defer span.Finish()

	if n.Resolved() {
		return n, transform.SameTree, nil
	}

	var candidates []string
	transform.Inspect(n, func(n sql.Node) bool {
		for _, col := range schemaOrNil(n) {
			candidates = append(candidates, col.Name)
		}
		return true
	})

	var err error
	transform.Inspect(n, func(n sql.Node) bool {
		if err != nil {
			return false
		}

		if ut, ok := n.(*plan.UnresolvedTable); ok {
			err = sql.ErrTableNotFound.New(ut.Name())
			return false
		}

		ne, ok := n.(sql.Expressioner)
		if !ok {
			return true
		}
		for _, e := range ne.Expressions() {
			transform.InspectExpr(e, func(e sql.Expression) bool {
				switch e := e.(type) {
				case *deferredColumn:
					err = unresolvedColumnErr(n, e.Name(), candidates)
					return true
				case *expression.UnresolvedColumn:
					err = unresolvedColumnErr(n, e.Name(), candidates)
					return true
				case *expression.UnresolvedFunction:
					err = sql.ErrUnresolvedExpression.New(e.String())
					return true
				}
				return false
			})
			if err != nil {
				return false
			}
		}
		return true
	})

	if err == nil {
		err = sql.ErrUnresolvedExpression.New(n.String())
	}
	return nil, transform.SameTree, err
}

// unresolvedColumnErr builds the unresolved-reference error for a column,
// preferring the misused-alias diagnosis when the containing projection
// defines an alias of that name.
func unresolvedColumnErr(n sql.Node, name string, candidates []string) error {
	if p, ok := n.(*plan.Project); ok {
		for _, e := range p.Projections {
			if alias, ok := e.(*expression.Alias); ok && alias.Name() == name {
				return sql.ErrMisusedAlias.New(name)
			}
		}
	}
	return sql.ErrColumnNotFound.New(name, similartext.Find(candidates, name))
}

func schemaOrNil(n sql.Node) sql.Schema {
	if !n.Resolved() {
		return nil
	}
	return n.Schema()
}

// validateOrderable rejects sort keys and window orderings over types
// without a total order.
func validateOrderable(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("validate_orderable")
	defer span.Finish()

	var err error
	transform.Inspect(n, func(n sql.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *plan.Sort:
			err = orderableFields(n.SortFields)
		case *plan.Window:
			for _, e := range n.SelectExprs {
				transform.InspectExpr(e, func(e sql.Expression) bool {
					if w, ok := e.(sql.WindowAggregation); ok && w.Window() != nil {
						if ferr := orderableFields(w.Window().OrderBy); ferr != nil {
							err = ferr
							return true
						}
					}
					return false
				})
			}
		}
		return true
	})
	return n, transform.SameTree, err
}

func orderableFields(fields sql.SortFields) error {
	for _, f := range fields {
		if t := f.Column.Type(); !sql.IsOrderable(t) {
			return sql.ErrUnorderableType.New(t)
		}
	}
	return nil
}

// validateAggregates rejects structurally misplaced aggregation-adjacent
// constructs: grouping() calls that survived lowering, and window
// functions anywhere but a window operator's select list.
func validateAggregates(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("validate_aggregates")
	defer span.Finish()

	var err error
	transform.Inspect(n, func(n sql.Node) bool {
		if err != nil {
			return false
		}
		ne, ok := n.(sql.Expressioner)
		if !ok {
			return true
		}
		_, isWindow := n.(*plan.Window)

		for _, e := range ne.Expressions() {
			transform.InspectExpr(e, func(e sql.Expression) bool {
				switch e := e.(type) {
				case *function.Grouping:
					if !e.Bound() {
						err = errGroupingMisused.New(e.Child)
						return true
					}
				case sql.WindowAggregation:
					if !isWindow {
						err = errWindowMisplaced.New(e)
						return true
					}
				}
				return false
			})
			if err != nil {
				return false
			}
		}
		return true
	})
	return n, transform.SameTree, err
}

// validateUniqueIds checks plan integrity: within a node's output schema,
// and across sibling subtrees, nonzero column ids never repeat. Violations
// indicate an analyzer bug, so the rule only runs in debug builds.
func validateUniqueIds(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("validate_unique_ids")
	defer span.Finish()

	var err error
	transform.Inspect(n, func(n sql.Node) bool {
		if err != nil || !n.Resolved() {
			return false
		}

		seen := map[sql.ColumnId]string{}
		for _, col := range n.Schema() {
			if col.Id == 0 {
				continue
			}
			if prev, ok := seen[col.Id]; ok {
				err = errDuplicateColumnId.New(col.Id, fmt.Sprintf("columns %s and %s of %T", prev, col.Name, n))
				return false
			}
			seen[col.Id] = col.Name
		}

		children := n.Children()
		if len(children) >= 2 {
			owner := map[sql.ColumnId]int{}
			for i, child := range children {
				if !child.Resolved() {
					continue
				}
				for _, col := range child.Schema() {
					if col.Id == 0 {
						continue
					}
					if j, ok := owner[col.Id]; ok && j != i {
						err = errDuplicateColumnId.New(col.Id, fmt.Sprintf("sibling children of %T", n))
						return false
					}
					owner[col.Id] = i
				}
			}
		}
		return true
	})
	return n, transform.SameTree, err
}
