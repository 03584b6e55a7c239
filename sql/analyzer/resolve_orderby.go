package analyzer

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// resolveOrdinals resolves the references resolve_columns stays away from:
// sort keys, which may name projection outputs, aliases or 1-based
// ordinals, and grouping expressions, which may name select-list aliases
// or ordinals when the configuration allows it.
func resolveOrdinals(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("resolve_ordinals")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		switch n := n.(type) {
		case *plan.Sort:
			return resolveSortFields(a, n)
		case *plan.GroupBy:
			return resolveGroupingRefs(a, n)
		}
		return n, transform.SameTree, nil
	})
}

// resolveSortFields binds sort keys against the child's output schema: a
// positive integer literal is a 1-based output ordinal; names resolve
// against the child's columns, which include projection aliases.
func resolveSortFields(a *Analyzer, s *plan.Sort) (sql.Node, transform.TreeIdentity, error) {
	if !s.Child.Resolved() {
		return s, transform.SameTree, nil
	}
	schema := s.Child.Schema()

	same := transform.SameTree
	newFields := make(sql.SortFields, len(s.SortFields))
	for i, field := range s.SortFields {
		if ord, ok := ordinalValue(field.Column); ok {
			if ord < 1 || int(ord) > len(schema) {
				return nil, transform.SameTree, sql.ErrOrdinalOutOfRange.New(ord, len(schema))
			}
			col := schema[ord-1]
			newFields[i] = field
			newFields[i].Column = expression.NewGetFieldWithTable(
				int(ord-1), col.Type, col.Source, col.Name, col.Nullable).WithId(col.Id)
			same = transform.NewTree
			continue
		}

		resolved, ident, err := resolveExprAgainstSchema(a, field.Column, schema)
		if err != nil {
			return nil, transform.SameTree, err
		}
		newFields[i] = field
		newFields[i].Column = resolved
		same = same && ident
	}

	if same {
		return s, transform.SameTree, nil
	}
	return plan.NewSort(newFields, s.Child), transform.NewTree, nil
}

// resolveGroupingRefs substitutes select-list ordinals and aliases in
// grouping position, honoring the GroupByOrdinal, GroupByAlias and
// AnsiMode switches.
func resolveGroupingRefs(a *Analyzer, g *plan.GroupBy) (sql.Node, transform.TreeIdentity, error) {
	if !g.Child.Resolved() {
		return g, transform.SameTree, nil
	}
	childSchema := g.Child.Schema()

	same := transform.SameTree
	grouping := make([]sql.Expression, len(g.GroupByExprs))
	copy(grouping, g.GroupByExprs)

	for i, e := range grouping {
		if a.Config.GroupByOrdinal {
			if ord, ok := ordinalValue(e); ok {
				if ord < 1 || int(ord) > len(g.SelectedExprs) {
					return nil, transform.SameTree, sql.ErrOrdinalOutOfRange.New(ord, len(g.SelectedExprs))
				}
				grouping[i] = unwrapAlias(g.SelectedExprs[ord-1])
				same = transform.NewTree
				continue
			}
		}

		if a.Config.GroupByAlias && !a.Config.AnsiMode {
			name, ok := unqualifiedName(e)
			if !ok {
				continue
			}
			if _, found := findColumn(a, childSchema, name); found {
				continue
			}
			for _, sel := range g.SelectedExprs {
				alias, ok := sel.(*expression.Alias)
				if !ok || !a.nameMatches(alias.Name(), name) {
					continue
				}
				grouping[i] = unwrapAlias(alias)
				same = transform.NewTree
				break
			}
		}
	}

	if same {
		return g, transform.SameTree, nil
	}
	return plan.NewGroupByGroupingSets(g.SelectedExprs, grouping, g.GroupingSets, g.Child), transform.NewTree, nil
}

// resolveExprAgainstSchema resolves the unresolved column references of an
// expression against the given schema.
func resolveExprAgainstSchema(a *Analyzer, e sql.Expression, schema sql.Schema) (sql.Expression, transform.TreeIdentity, error) {
	return transform.Expr(e, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		name, table := "", ""
		switch c := e.(type) {
		case *expression.UnresolvedColumn:
			name, table = c.Name(), c.Table()
		case *deferredColumn:
			name, table = c.Name(), c.Table()
		default:
			return e, transform.SameTree, nil
		}

		for i, col := range schema {
			if table != "" && !a.nameMatches(col.Source, table) {
				continue
			}
			if a.nameMatches(col.Name, name) {
				return expression.NewGetFieldWithTable(
					i, col.Type, col.Source, col.Name, col.Nullable).WithId(col.Id), transform.NewTree, nil
			}
		}
		return e, transform.SameTree, nil
	})
}

// ordinalValue extracts a positive integer literal.
func ordinalValue(e sql.Expression) (int64, bool) {
	lit, ok := e.(*expression.Literal)
	if !ok {
		return 0, false
	}
	switch v := lit.Value().(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func unqualifiedName(e sql.Expression) (string, bool) {
	switch c := e.(type) {
	case *expression.UnresolvedColumn:
		if c.Table() == "" {
			return c.Name(), true
		}
	case *deferredColumn:
		if c.Table() == "" {
			return c.Name(), true
		}
	}
	return "", false
}

func unwrapAlias(e sql.Expression) sql.Expression {
	if alias, ok := e.(*expression.Alias); ok {
		return alias.Child
	}
	return e
}

func findColumn(a *Analyzer, schema sql.Schema, name string) (int, bool) {
	for i, col := range schema {
		if a.nameMatches(col.Name, name) {
			return i, true
		}
	}
	return -1, false
}
