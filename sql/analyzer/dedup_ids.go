package analyzer

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

// dedupAttributeIds re-ids the right side of any node whose children
// expose overlapping column ids, which happens when one relation instance
// feeds both sides of a join or union (self joins over a cached relation,
// shared subtrees). Column resolution holds off on such nodes until the
// overlap is gone, so references always bind unambiguously.
func dedupAttributeIds(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("dedup_attribute_ids")
	defer span.Finish()

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		children := n.Children()
		if len(children) < 2 || !sql.NodesResolved(children...) {
			return n, transform.SameTree, nil
		}

		leftIds := map[sql.ColumnId]bool{}
		for _, col := range children[0].Schema() {
			if col.Id != 0 {
				leftIds[col.Id] = true
			}
		}

		newChildren := make([]sql.Node, len(children))
		copy(newChildren, children)
		changed := false

		for i := 1; i < len(children); i++ {
			overlap := false
			for _, col := range children[i].Schema() {
				if col.Id != 0 && leftIds[col.Id] {
					overlap = true
					break
				}
			}
			if overlap {
				child, err := remapIds(ctx, children[i])
				if err != nil {
					return nil, transform.SameTree, err
				}
				newChildren[i] = child
				changed = true
				a.Log("deduplicated column ids under %T", n)
			}
			for _, col := range newChildren[i].Schema() {
				if col.Id != 0 {
					leftIds[col.Id] = true
				}
			}
		}

		if !changed {
			return n, transform.SameTree, nil
		}
		nn, err := n.WithChildren(newChildren...)
		if err != nil {
			return nil, transform.SameTree, err
		}
		return nn, transform.NewTree, nil
	})
}

// remapIds rewrites a subtree with fresh column ids for every column it
// outputs, updating references consistently.
func remapIds(ctx *sql.Context, n sql.Node) (sql.Node, error) {
	mapping := map[sql.ColumnId]sql.ColumnId{}
	remap := func(id sql.ColumnId) sql.ColumnId {
		if id == 0 {
			return 0
		}
		if newId, ok := mapping[id]; ok {
			return newId
		}
		newId := ctx.NewColumnId()
		mapping[id] = newId
		return newId
	}

	nn, _, err := transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		// leaf relations own id introduction; everything else references
		if rt, ok := n.(*plan.ResolvedTable); ok {
			schema := rt.Schema().Copy()
			for _, col := range schema {
				col.Id = remap(col.Id)
			}
			return rt.WithSchema(schema), transform.NewTree, nil
		}

		return transform.OneNodeExprsWithNode(n, func(_ sql.Node, e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
			switch e := e.(type) {
			case *expression.GetField:
				if newId, ok := mapping[e.Id()]; ok {
					return e.WithId(newId), transform.NewTree, nil
				}
			case *expression.Alias:
				if e.Id() != 0 {
					return e.WithId(remap(e.Id())), transform.NewTree, nil
				}
			}
			return e, transform.SameTree, nil
		})
	})
	return nn, err
}
