package analyzer

import (
	"sort"
	"strings"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// deferredColumn is a column reference that failed to resolve in the
// current round. Deferral is not an error: a later round may introduce the
// missing relation, or an enclosing scope may own the column. Validation
// turns any still-deferred column into an unresolved-reference error.
type deferredColumn struct {
	*expression.UnresolvedColumn
}

// IsNullable implements the Expression interface.
func (dc *deferredColumn) IsNullable() bool { return true }

// WithChildren implements the Expression interface.
func (dc *deferredColumn) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(dc, len(children), 0)
	}
	return dc, nil
}

// nameMatches compares names under the configured case sensitivity.
func (a *Analyzer) nameMatches(x, y string) bool {
	if a.Config.CaseSensitive {
		return x == y
	}
	return strings.EqualFold(x, y)
}

// columnRef is a candidate column of a node's row layout.
type columnRef struct {
	col   *sql.Column
	index int
}

// childColumns returns the columns of the node's children in row layout
// order. It returns ok=false when the layout is not known yet: unresolved
// children, or sibling children that still share column ids.
func childColumns(n sql.Node) ([]columnRef, bool) {
	children := n.Children()
	if !sql.NodesResolved(children...) {
		return nil, false
	}

	// the row layout is the concatenation of the children schemas
	var refs []columnRef
	seen := map[sql.ColumnId]bool{}
	for _, child := range children {
		for _, col := range child.Schema() {
			if col.Id != 0 {
				if seen[col.Id] {
					// conflicting sibling ids; wait for dedup
					return nil, false
				}
				seen[col.Id] = true
			}
			refs = append(refs, columnRef{col: col, index: len(refs)})
		}
	}
	return refs, true
}

// qualifyColumns annotates unqualified column references with the table
// they belong to, raising an ambiguity error when more than one table in
// scope has a column of that name.
func qualifyColumns(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("qualify_columns")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		switch n.(type) {
		case *plan.Sort, *plan.Having:
			// sort keys may reference projection aliases and HAVING
			// conditions reference aggregation outputs; the dedicated rules
			// own those references
			return n, transform.SameTree, nil
		}

		refs, ok := childColumns(n)
		if !ok {
			return n, transform.SameTree, nil
		}

		return transform.OneNodeExprsWithNode(n, func(_ sql.Node, e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
			uc, ok := e.(*expression.UnresolvedColumn)
			if !ok || uc.Table() != "" {
				return e, transform.SameTree, nil
			}

			var sources []string
			for _, ref := range refs {
				if a.nameMatches(ref.col.Name, uc.Name()) && !contains(sources, ref.col.Source) {
					sources = append(sources, ref.col.Source)
				}
			}

			switch len(sources) {
			case 0:
				return e, transform.SameTree, nil
			case 1:
				if sources[0] == "" {
					return e, transform.SameTree, nil
				}
				return expression.NewUnresolvedQualifiedColumn(sources[0], uc.Name()), transform.NewTree, nil
			default:
				sort.Strings(sources)
				return nil, transform.SameTree, sql.ErrAmbiguousColumnName.New(uc.Name(), strings.Join(sources, ", "))
			}
		})
	})
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// resolveColumns replaces column references with resolved GetFields bound
// to the child row layout. Unresolvable references are deferred; deferred
// references are retried against the enclosing scopes, innermost first,
// and become outer references when an enclosing query owns them.
func resolveColumns(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("resolve_columns")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		switch n.(type) {
		case *plan.Sort, *plan.Having:
			return n, transform.SameTree, nil
		}

		refs, ok := childColumns(n)
		if !ok {
			return n, transform.SameTree, nil
		}

		return transform.OneNodeExprsWithNode(n, func(_ sql.Node, e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
			switch col := e.(type) {
			case *expression.UnresolvedColumn:
				resolved, found, err := a.resolveColumn(refs, col.Table(), col.Name())
				if err != nil {
					return nil, transform.SameTree, err
				}
				if found {
					return resolved, transform.NewTree, nil
				}
				a.Log("deferring column %q", col.String())
				return &deferredColumn{col}, transform.NewTree, nil

			case *deferredColumn:
				resolved, found, err := a.resolveColumn(refs, col.Table(), col.Name())
				if err != nil {
					return nil, transform.SameTree, err
				}
				if found {
					return resolved, transform.NewTree, nil
				}

				if outer, ok := a.resolveOuterColumn(scope, col.Table(), col.Name()); ok {
					return outer, transform.NewTree, nil
				}
				return e, transform.SameTree, nil
			}
			return e, transform.SameTree, nil
		})
	})
}

// resolveColumn binds one (table, name) reference against the candidate
// columns. A qualifier that names no table but matches a unique struct
// column drills into the struct instead.
func (a *Analyzer) resolveColumn(refs []columnRef, table, name string) (sql.Expression, bool, error) {
	if table == "" {
		for _, ref := range refs {
			if a.nameMatches(ref.col.Name, name) {
				return refToGetField(ref), true, nil
			}
		}
		return nil, false, nil
	}

	tableExists := false
	for _, ref := range refs {
		if !a.nameMatches(ref.col.Source, table) {
			continue
		}
		tableExists = true
		if a.nameMatches(ref.col.Name, name) {
			return refToGetField(ref), true, nil
		}
	}
	if tableExists {
		return nil, false, sql.ErrTableColumnNotFound.New(table, name)
	}

	// the qualifier may be a struct column
	var structRef *columnRef
	for i, ref := range refs {
		if a.nameMatches(ref.col.Name, table) && sql.IsStruct(ref.col.Type) {
			if structRef != nil {
				return nil, false, sql.ErrAmbiguousColumnName.New(table, "multiple struct columns match")
			}
			structRef = &refs[i]
		}
	}
	if structRef != nil {
		st := structRef.col.Type.(sql.StructType)
		idx := st.IndexOf(name, a.Config.CaseSensitive)
		if idx < 0 {
			return nil, false, sql.ErrFieldNotFound.New(table, name)
		}
		return expression.NewGetStructFieldWithIndex(refToGetField(*structRef), st.Fields[idx].Name, idx), true, nil
	}

	return nil, false, nil
}

// resolveOuterColumn retries a deferred reference against the enclosing
// scopes, innermost first. Scope nodes are the nodes containing the
// subquery expression; they are never themselves resolved while the
// subquery is pending, so binding goes against their children's schemas.
func (a *Analyzer) resolveOuterColumn(scope *Scope, table, name string) (sql.Expression, bool) {
	if scope.IsEmpty() {
		return nil, false
	}
	for _, outer := range scope.InnerToOuter() {
		refs, ok := childColumns(outer)
		if !ok {
			continue
		}
		for _, ref := range refs {
			if table != "" && !a.nameMatches(ref.col.Source, table) {
				continue
			}
			if a.nameMatches(ref.col.Name, name) {
				return expression.NewOuterReference(refToGetField(ref)), true
			}
		}
	}
	return nil, false
}

func refToGetField(ref columnRef) *expression.GetField {
	return expression.NewGetFieldWithTable(
		ref.index, ref.col.Type, ref.col.Source, ref.col.Name, ref.col.Nullable,
	).WithId(ref.col.Id)
}
