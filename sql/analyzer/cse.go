package analyzer

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function"
	"github.com/corvusql/corvus/sql/hash"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// extractCommonSubexpressions factors subexpressions evaluated more than
// once across a projection's expression list into a lower projection, so
// each is computed a single time. Only deterministic non-leaf expressions
// participate. Conditionals contribute their always-evaluated children
// directly; a subexpression inside a conditional branch only counts when
// every branch contains it, because promoting a branch-only expression to
// unconditional evaluation would change null and error behavior.
func extractCommonSubexpressions(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("extract_common_subexpressions")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		p, ok := n.(*plan.Project)
		if !ok || !p.Resolved() {
			return n, transform.SameTree, nil
		}

		counts := map[uint64]*cseCandidate{}
		for _, e := range p.Projections {
			countSubexprs(e, counts)
		}

		var shared []*cseCandidate
		for _, cand := range counts {
			if cand.count >= 2 {
				shared = append(shared, cand)
			}
		}
		if len(shared) == 0 {
			return n, transform.SameTree, nil
		}
		// nested shared subexpressions: keep only the outermost; the inner
		// one is evaluated once as part of it anyway
		shared = dropNested(shared)
		if len(shared) == 0 {
			return n, transform.SameTree, nil
		}

		childSchema := p.Child.Schema()
		lower := make([]sql.Expression, 0, len(childSchema)+len(shared))
		for i, col := range childSchema {
			lower = append(lower, expression.NewGetFieldWithTable(
				i, col.Type, col.Source, col.Name, col.Nullable).WithId(col.Id))
		}

		refs := map[uint64]sql.Expression{}
		for i, cand := range shared {
			name := fmt.Sprintf("__common_%d", i)
			alias := expression.NewAlias(name, cand.expr).WithId(ctx.NewColumnId())
			lower = append(lower, alias)
			refs[cand.key] = expression.NewGetField(
				len(childSchema)+i, cand.expr.Type(), name, cand.expr.IsNullable()).WithId(alias.Id())
		}

		upper := make([]sql.Expression, len(p.Projections))
		for i, e := range p.Projections {
			ne, err := replaceShared(e, refs)
			if err != nil {
				return nil, transform.SameTree, err
			}
			upper[i] = ne
		}

		a.Log("factored %d common subexpression(s) into a lower projection", len(shared))
		return plan.NewProject(upper,
			plan.NewProject(lower, p.Child)), transform.NewTree, nil
	})
}

type cseCandidate struct {
	key       uint64
	canonical string
	expr      sql.Expression
	count     int
}

// countSubexprs tallies the shareable subexpressions of e. Conditionals
// are handled per the branch rules; everything else is a plain recursive
// walk.
func countSubexprs(e sql.Expression, counts map[uint64]*cseCandidate) {
	if alias, ok := e.(*expression.Alias); ok {
		countSubexprs(alias.Child, counts)
		return
	}

	always, branches := conditionalChildren(e)
	if branches != nil {
		// the conditional as a whole is still an ordinary candidate
		record(e, counts)
		for _, c := range always {
			countSubexprs(c, counts)
		}
		recordCommonBranchExprs(branches, counts)
		return
	}

	record(e, counts)
	for _, c := range e.Children() {
		countSubexprs(c, counts)
	}
}

// conditionalChildren splits a short-circuiting expression into its
// always-evaluated children and its conditionally-evaluated branches. The
// second result is nil for non-conditional expressions.
func conditionalChildren(e sql.Expression) (always []sql.Expression, branches []sql.Expression) {
	switch e := e.(type) {
	case *function.If:
		return []sql.Expression{e.Cond}, []sql.Expression{e.IfTrue, e.IfFalse}
	case *function.IfNull:
		children := e.Children()
		return children[:1], children[1:]
	case *function.Coalesce:
		children := e.Children()
		if len(children) < 2 {
			return nil, nil
		}
		return children[:1], children[1:]
	case *expression.Case:
		if e.Expr != nil {
			always = append(always, e.Expr)
		}
		for i, b := range e.Branches {
			if i == 0 && e.Expr == nil {
				// the first condition always runs
				always = append(always, b.Cond)
			} else {
				branches = append(branches, b.Cond)
			}
			branches = append(branches, b.Value)
		}
		if e.Else != nil {
			branches = append(branches, e.Else)
		}
		return always, branches
	}
	return nil, nil
}

// recordCommonBranchExprs counts the subexpressions present in every
// branch: whichever branch runs will evaluate them, so they are effectively
// unconditional.
func recordCommonBranchExprs(branches []sql.Expression, counts map[uint64]*cseCandidate) {
	if len(branches) == 0 {
		return
	}

	common := collectSet(branches[0])
	for _, b := range branches[1:] {
		if len(common) == 0 {
			return
		}
		set := collectSet(b)
		for key := range common {
			if _, ok := set[key]; !ok {
				delete(common, key)
			}
		}
	}

	for _, cand := range common {
		record(cand, counts)
	}
}

// collectSet gathers the shareable subexpressions of one branch.
func collectSet(e sql.Expression) map[uint64]sql.Expression {
	local := map[uint64]*cseCandidate{}
	countSubexprs(e, local)
	set := make(map[uint64]sql.Expression, len(local))
	for key, cand := range local {
		set[key] = cand.expr
	}
	return set
}

// record counts one occurrence of e if it is shareable: resolved,
// deterministic, not a leaf, and not tied to aggregation, windowing,
// generation or a subquery.
func record(e sql.Expression, counts map[uint64]*cseCandidate) {
	if !shareable(e) {
		return
	}
	key := hash.OfExpression(e)
	if cand, ok := counts[key]; ok {
		// hashes can collide; confirm before counting
		if cand.canonical == hash.Canonical(e) {
			cand.count++
		}
		return
	}
	counts[key] = &cseCandidate{
		key:       key,
		canonical: hash.Canonical(e),
		expr:      e,
		count:     1,
	}
}

func shareable(e sql.Expression) bool {
	if !e.Resolved() || len(e.Children()) == 0 {
		return false
	}
	ok := true
	transform.InspectExpr(e, func(e sql.Expression) bool {
		switch e := e.(type) {
		case sql.NonDeterministicExpression:
			if e.IsNonDeterministic() {
				ok = false
			}
		case sql.Aggregation, sql.WindowAggregation,
			*plan.Subquery, *plan.ExistsSubquery, *plan.InSubquery,
			*function.Explode, *function.Generate, *function.Grouping:
			ok = false
		}
		return !ok
	})
	return ok
}

// dropNested removes shared candidates contained in another shared
// candidate.
func dropNested(shared []*cseCandidate) []*cseCandidate {
	var kept []*cseCandidate
	for _, cand := range shared {
		nested := false
		for _, other := range shared {
			if other == cand {
				continue
			}
			transform.InspectExpr(other.expr, func(e sql.Expression) bool {
				if e != cand.expr && hash.Canonical(e) == cand.canonical {
					nested = true
					return true
				}
				return false
			})
			if nested {
				break
			}
		}
		if !nested {
			kept = append(kept, cand)
		}
	}
	return kept
}

// replaceShared rewrites occurrences of factored subexpressions into
// references to the lower projection's outputs.
func replaceShared(e sql.Expression, refs map[uint64]sql.Expression) (sql.Expression, error) {
	if alias, ok := e.(*expression.Alias); ok {
		inner, err := replaceShared(alias.Child, refs)
		if err != nil {
			return nil, err
		}
		ne, err := alias.WithChildren(inner)
		if err != nil {
			return nil, err
		}
		return ne, nil
	}

	if ref, ok := refs[hash.OfExpression(e)]; ok {
		return ref, nil
	}

	children := e.Children()
	if len(children) == 0 {
		return e, nil
	}
	newChildren := make([]sql.Expression, len(children))
	changed := false
	for i, c := range children {
		nc, err := replaceShared(c, refs)
		if err != nil {
			return nil, err
		}
		newChildren[i] = nc
		if nc != c {
			changed = true
		}
	}
	if !changed {
		return e, nil
	}
	return e.WithChildren(newChildren...)
}
