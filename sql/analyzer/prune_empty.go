package analyzer

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// pruneEmpty propagates statically empty relations upward: operators whose
// output is provably empty become an EmptyTable with the same schema, and
// joins and unions over an empty side reduce to the surviving side with
// output identity preserved. A global aggregate always produces one row
// and is never pruned, and nothing is pruned over a streaming source.
func pruneEmpty(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("prune_empty")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		if streamingBelow(n) {
			return n, transform.SameTree, nil
		}

		switch n := n.(type) {
		case *plan.Filter, *plan.Sort, *plan.Limit, *plan.Distinct,
			*plan.Repartition, *plan.Project, *plan.Window, *plan.Generate:
			if isEmpty(n.Children()[0]) {
				a.Log("pruned %T over empty input", n)
				return plan.NewEmptyTableWithSchema(n.Schema()), transform.NewTree, nil
			}

		case *plan.GroupBy:
			// a global aggregate produces exactly one row even for empty
			// input; only grouped aggregation propagates emptiness
			if !n.IsGlobal() && isEmpty(n.Child) {
				a.Log("pruned grouped aggregation over empty input")
				return plan.NewEmptyTableWithSchema(n.Schema()), transform.NewTree, nil
			}

		case *plan.Join:
			return pruneEmptyJoin(a, n)

		case *plan.Union:
			return pruneEmptyUnion(a, n)
		}
		return n, transform.SameTree, nil
	})
}

func isEmpty(n sql.Node) bool {
	_, ok := n.(*plan.EmptyTable)
	return ok
}

// streamingBelow reports whether the subtree reads from a streaming
// source.
func streamingBelow(n sql.Node) bool {
	streaming := false
	transform.Inspect(n, func(n sql.Node) bool {
		if rt, ok := n.(*plan.ResolvedTable); ok {
			if st, ok := rt.Table.(sql.StreamingTable); ok && st.IsStreaming() {
				streaming = true
			}
		}
		return !streaming
	})
	return streaming
}

func pruneEmptyJoin(a *Analyzer, j *plan.Join) (sql.Node, transform.TreeIdentity, error) {
	leftEmpty, rightEmpty := isEmpty(j.Left), isEmpty(j.Right)
	if !leftEmpty && !rightEmpty {
		return j, transform.SameTree, nil
	}
	empty := func() (sql.Node, transform.TreeIdentity, error) {
		a.Log("pruned %s join with empty side", j.Op)
		return plan.NewEmptyTableWithSchema(j.Schema()), transform.NewTree, nil
	}

	switch j.Op {
	case plan.JoinInner, plan.JoinCross:
		return empty()

	case plan.JoinSemi:
		// no rows on either side can produce a match
		return empty()

	case plan.JoinAnti:
		if leftEmpty {
			return empty()
		}
		// nothing to reject against: every left row survives
		a.Log("pruned anti join with empty right side")
		return j.Left, transform.NewTree, nil

	case plan.JoinLeft:
		if leftEmpty {
			return empty()
		}
		return nullExtended(a, j.Left, j.Schema(), len(j.Left.Schema()))

	case plan.JoinRight:
		if rightEmpty {
			return empty()
		}
		return nullExtendedLeft(a, j.Right, j.Schema(), len(j.Left.Schema()))

	case plan.JoinFull:
		if leftEmpty && rightEmpty {
			return empty()
		}
		if rightEmpty {
			return nullExtended(a, j.Left, j.Schema(), len(j.Left.Schema()))
		}
		return nullExtendedLeft(a, j.Right, j.Schema(), len(j.Left.Schema()))
	}
	return j, transform.SameTree, nil
}

// nullExtended projects the surviving left side padded with nulls for the
// missing right columns, keeping the join's output schema and identities.
func nullExtended(a *Analyzer, left sql.Node, joinSchema sql.Schema, split int) (sql.Node, transform.TreeIdentity, error) {
	projections := make([]sql.Expression, len(joinSchema))
	for i, col := range joinSchema {
		if i < split {
			projections[i] = expression.NewGetFieldWithTable(
				i, col.Type, col.Source, col.Name, col.Nullable).WithId(col.Id)
		} else {
			projections[i] = expression.NewAlias(col.Name,
				expression.NewLiteral(nil, col.Type)).WithId(col.Id)
		}
	}
	a.Log("null-extended surviving join side")
	return plan.NewProject(projections, left), transform.NewTree, nil
}

// nullExtendedLeft is the mirror case: the right side survives and the
// left columns are null-padded.
func nullExtendedLeft(a *Analyzer, right sql.Node, joinSchema sql.Schema, split int) (sql.Node, transform.TreeIdentity, error) {
	projections := make([]sql.Expression, len(joinSchema))
	for i, col := range joinSchema {
		if i < split {
			projections[i] = expression.NewAlias(col.Name,
				expression.NewLiteral(nil, col.Type)).WithId(col.Id)
		} else {
			projections[i] = expression.NewGetFieldWithTable(
				i-split, col.Type, col.Source, col.Name, col.Nullable).WithId(col.Id)
		}
	}
	a.Log("null-extended surviving join side")
	return plan.NewProject(projections, right), transform.NewTree, nil
}

func pruneEmptyUnion(a *Analyzer, u *plan.Union) (sql.Node, transform.TreeIdentity, error) {
	leftEmpty, rightEmpty := isEmpty(u.Left), isEmpty(u.Right)
	switch {
	case leftEmpty && rightEmpty:
		a.Log("pruned union of two empty branches")
		return plan.NewEmptyTableWithSchema(u.Schema()), transform.NewTree, nil

	case rightEmpty:
		// the union's output identity comes from the left branch already
		a.Log("dropped empty right union branch")
		return u.Left, transform.NewTree, nil

	case leftEmpty:
		// the survivor's columns carry different identities; re-alias to
		// the union's output identity
		schema := u.Schema()
		rightSchema := u.Right.Schema()
		projections := make([]sql.Expression, len(schema))
		for i, col := range schema {
			inner := expression.NewGetFieldWithTable(
				i, rightSchema[i].Type, rightSchema[i].Source, rightSchema[i].Name,
				rightSchema[i].Nullable).WithId(rightSchema[i].Id)
			projections[i] = expression.NewAlias(col.Name, inner).WithId(col.Id)
		}
		a.Log("dropped empty left union branch, re-aliased survivor")
		return plan.NewProject(projections, u.Right), transform.NewTree, nil
	}
	return u, transform.SameTree, nil
}
