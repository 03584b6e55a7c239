package plan

import (
	"strings"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/transform"
)

// GroupBy groups the rows by the grouping expressions and computes the
// selected expressions once per group. With no grouping expressions the
// whole input is one group, which produces exactly one output row even for
// empty input.
//
// GroupingSets, when non-empty, holds the grouping granularities of a
// ROLLUP, CUBE or GROUPING SETS aggregation. The analyzer lowers such a
// GroupBy into a GroupBy over an Expand; a resolved plan never carries
// grouping sets.
type GroupBy struct {
	UnaryNode
	SelectedExprs []sql.Expression
	GroupByExprs  []sql.Expression
	GroupingSets  [][]sql.Expression
}

var _ sql.Node = (*GroupBy)(nil)
var _ sql.Expressioner = (*GroupBy)(nil)

// NewGroupBy creates a new GroupBy node.
func NewGroupBy(selectedExprs, groupByExprs []sql.Expression, child sql.Node) *GroupBy {
	return &GroupBy{
		UnaryNode:     UnaryNode{Child: child},
		SelectedExprs: selectedExprs,
		GroupByExprs:  groupByExprs,
	}
}

// NewGroupByGroupingSets creates a GroupBy aggregating at several
// granularities at once. The grouping expressions are the union of the
// columns appearing in the sets, in first-appearance order.
func NewGroupByGroupingSets(selectedExprs, groupByExprs []sql.Expression, sets [][]sql.Expression, child sql.Node) *GroupBy {
	g := NewGroupBy(selectedExprs, groupByExprs, child)
	g.GroupingSets = sets
	return g
}

// Resolved implements the Resolvable interface.
func (g *GroupBy) Resolved() bool {
	if !g.UnaryNode.Child.Resolved() ||
		!sql.ExpressionsResolved(g.SelectedExprs...) ||
		!sql.ExpressionsResolved(g.GroupByExprs...) {
		return false
	}
	for _, set := range g.GroupingSets {
		if !sql.ExpressionsResolved(set...) {
			return false
		}
	}
	return true
}

// Schema implements the Node interface.
func (g *GroupBy) Schema() sql.Schema {
	return transform.SchemaWithIds(g.SelectedExprs)
}

// IsGlobal reports whether this aggregation has no grouping keys.
func (g *GroupBy) IsGlobal() bool {
	return len(g.GroupByExprs) == 0 && len(g.GroupingSets) == 0
}

// WithChildren implements the Node interface.
func (g *GroupBy) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}
	ng := *g
	ng.Child = children[0]
	return &ng, nil
}

// Expressions implements the Expressioner interface.
func (g *GroupBy) Expressions() []sql.Expression {
	var exprs []sql.Expression
	exprs = append(exprs, g.SelectedExprs...)
	exprs = append(exprs, g.GroupByExprs...)
	for _, set := range g.GroupingSets {
		exprs = append(exprs, set...)
	}
	return exprs
}

// WithExpressions implements the Expressioner interface.
func (g *GroupBy) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	expected := len(g.SelectedExprs) + len(g.GroupByExprs)
	for _, set := range g.GroupingSets {
		expected += len(set)
	}
	if len(exprs) != expected {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(exprs), expected)
	}

	agg := make([]sql.Expression, len(g.SelectedExprs))
	copy(agg, exprs[:len(g.SelectedExprs)])
	exprs = exprs[len(g.SelectedExprs):]

	grouping := make([]sql.Expression, len(g.GroupByExprs))
	copy(grouping, exprs[:len(g.GroupByExprs)])
	exprs = exprs[len(g.GroupByExprs):]

	sets := make([][]sql.Expression, len(g.GroupingSets))
	for i, set := range g.GroupingSets {
		sets[i] = make([]sql.Expression, len(set))
		copy(sets[i], exprs[:len(set)])
		exprs = exprs[len(set):]
	}

	return NewGroupByGroupingSets(agg, grouping, sets, g.Child), nil
}

func (g *GroupBy) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("GroupBy")

	var childrenStrings []string

	aggPr := sql.NewTreePrinter()
	aggPr.WriteNode("Aggregate(%s)", strings.Join(expressionsToStrings(g.SelectedExprs), ", "))
	childrenStrings = append(childrenStrings, aggPr.String())

	groupPr := sql.NewTreePrinter()
	groupPr.WriteNode("Grouping(%s)", strings.Join(expressionsToStrings(g.GroupByExprs), ", "))
	childrenStrings = append(childrenStrings, groupPr.String())

	if len(g.GroupingSets) > 0 {
		sets := make([]string, len(g.GroupingSets))
		for i, set := range g.GroupingSets {
			sets[i] = "(" + strings.Join(expressionsToStrings(set), ", ") + ")"
		}
		setsPr := sql.NewTreePrinter()
		setsPr.WriteNode("GroupingSets(%s)", strings.Join(sets, ", "))
		childrenStrings = append(childrenStrings, setsPr.String())
	}

	childrenStrings = append(childrenStrings, g.Child.String())
	pr.WriteChildren(childrenStrings...)
	return pr.String()
}
