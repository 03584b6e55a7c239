package analyzer

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// foldConstants evaluates deterministic expressions whose leaves are all
// literals and replaces them with their value.
func foldConstants(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("fold_constants")
	defer span.Finish()

	return transform.NodeExprs(n, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		if _, ok := e.(*expression.Literal); ok {
			return e, transform.SameTree, nil
		}
		if !isConstant(e) {
			return e, transform.SameTree, nil
		}

		v, err := e.Eval(ctx, nil)
		if err != nil {
			// evaluation failures surface at runtime, not during folding
			return e, transform.SameTree, nil
		}
		return expression.NewLiteral(v, e.Type()), transform.NewTree, nil
	})
}

// isConstant reports whether the expression can be evaluated without a row
// and yields the same value every time.
func isConstant(e sql.Expression) bool {
	if !e.Resolved() {
		return false
	}
	constant := true
	transform.InspectExpr(e, func(e sql.Expression) bool {
		switch e := e.(type) {
		case *expression.GetField, *expression.OuterReference,
			*plan.Subquery, *plan.ExistsSubquery, *plan.InSubquery:
			constant = false
		case sql.NonDeterministicExpression:
			if e.IsNonDeterministic() {
				constant = false
			}
		case sql.Aggregation, sql.WindowAggregation:
			constant = false
		case *function.Explode, *function.Generate, *function.Grouping:
			constant = false
		}
		return !constant
	})
	return constant
}

// simplifyStructOps collapses accesses into freshly constructed structs,
// arrays and maps, and drops overwritten struct field updates. The rule
// never fires inside grouping keys: collapsing a grouping expression would
// change which select-list expressions count as "the same" grouping key.
func simplifyStructOps(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("simplify_struct_ops")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		if _, ok := n.(*plan.GroupBy); ok {
			return n, transform.SameTree, nil
		}
		return transform.OneNodeExprsWithNode(n, func(_ sql.Node, e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
			return simplifyStructExpr(e)
		})
	})
}

func simplifyStructExpr(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
	switch e := e.(type) {
	case *expression.GetStructField:
		switch st := e.Child.(type) {
		case *expression.CreateStruct:
			for i, name := range st.Names() {
				if name == e.FieldName() {
					return st.Children()[i], transform.NewTree, nil
				}
			}
		case *expression.WithField:
			if st.Name == e.FieldName() {
				// the written value, unless the base struct is null
				if st.Struct.IsNullable() {
					return function.NewIf(
						expression.NewIsNull(st.Struct),
						expression.NewLiteral(nil, st.Value.Type()),
						st.Value,
					), transform.NewTree, nil
				}
				return st.Value, transform.NewTree, nil
			}
			// unrelated write, look through it
			return expression.NewGetStructField(st.Struct, e.FieldName()), transform.NewTree, nil
		}

	case *expression.WithField:
		if inner, ok := e.Struct.(*expression.WithField); ok && inner.Name == e.Name {
			// last write wins
			return expression.NewWithField(inner.Struct, e.Name, e.Value), transform.NewTree, nil
		}

	case *expression.ElementAt:
		idx, ok := e.Right.(*expression.Literal)
		if !ok {
			break
		}
		switch c := e.Left.(type) {
		case *expression.CreateArray:
			ord, ok := literalInt(idx)
			if !ok {
				break
			}
			elems := c.Children()
			if ord < 1 || int(ord) > len(elems) {
				return expression.NewLiteral(nil, e.Type()), transform.NewTree, nil
			}
			return elems[ord-1], transform.NewTree, nil
		case *expression.CreateMap:
			// later entries overwrite earlier ones, so scan from the end;
			// a non-literal key could shadow anything before it
			entries := c.Children()
			for i := len(entries) - 2; i >= 0; i -= 2 {
				key, ok := entries[i].(*expression.Literal)
				if !ok {
					return e, transform.SameTree, nil
				}
				if key.Value() == idx.Value() {
					return entries[i+1], transform.NewTree, nil
				}
			}
			return expression.NewLiteral(nil, e.Type()), transform.NewTree, nil
		}
	}
	return e, transform.SameTree, nil
}

func literalInt(l *expression.Literal) (int64, bool) {
	switch v := l.Value().(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

// collapseJSONRoundTrips removes parse/unparse round trips that are
// provably the identity: no parse options and matching types.
func collapseJSONRoundTrips(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("collapse_json_round_trips")
	defer span.Finish()

	return transform.NodeExprs(n, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		switch e := e.(type) {
		case *function.FromJSON:
			if to, ok := e.Child.(*function.ToJSON); ok {
				if !e.HasOptions() && sql.TypesEqual(e.ResultType(), to.Child.Type()) {
					return to.Child, transform.NewTree, nil
				}
			}
		case *function.ToJSON:
			if from, ok := e.Child.(*function.FromJSON); ok {
				if !from.HasOptions() && sql.TypesEqual(from.Child.Type(), sql.Text) {
					return from.Child, transform.NewTree, nil
				}
			}
		}
		return e, transform.SameTree, nil
	})
}

// eraseProjection drops projections that pass their child's schema through
// untouched: same columns, same order, same names and identities.
func eraseProjection(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("erase_projection")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		p, ok := n.(*plan.Project)
		if !ok || !p.Resolved() {
			return n, transform.SameTree, nil
		}

		schema := p.Child.Schema()
		if len(p.Projections) != len(schema) {
			return n, transform.SameTree, nil
		}
		for i, e := range p.Projections {
			gf, ok := e.(*expression.GetField)
			if !ok || gf.Index() != i {
				return n, transform.SameTree, nil
			}
			col := schema[i]
			if gf.Name() != col.Name || gf.Table() != col.Source || gf.Id() != col.Id {
				return n, transform.SameTree, nil
			}
			if !sql.TypesEqual(gf.Type(), col.Type) {
				return n, transform.SameTree, nil
			}
		}

		a.Log("erased identity projection")
		return p.Child, transform.NewTree, nil
	})
}
