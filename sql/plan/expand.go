package plan

import (
	"strings"

	"github.com/corvusql/corvus/sql"
)

// GroupingSetsColumn is the name of the synthetic column identifying which
// grouping set produced a row.
const GroupingSetsColumn = "grouping_id"

// Expand replicates each input row once per grouping set, null-padding the
// grouping columns absent from each set and tagging the replica with a
// grouping id. A GroupBy over the expanded output evaluates ROLLUP, CUBE
// and GROUPING SETS in a single aggregation pass.
type Expand struct {
	UnaryNode
	// Projections holds one projection list per grouping set. Every list
	// has the same length and produces the same output columns.
	Projections [][]sql.Expression
	// OutputSchema is the schema of each projection list, ending in the
	// grouping id column.
	OutputSchema sql.Schema
}

var _ sql.Node = (*Expand)(nil)
var _ sql.Expressioner = (*Expand)(nil)

// NewExpand creates a new Expand node.
func NewExpand(projections [][]sql.Expression, outputSchema sql.Schema, child sql.Node) *Expand {
	return &Expand{
		UnaryNode:    UnaryNode{Child: child},
		Projections:  projections,
		OutputSchema: outputSchema,
	}
}

// Schema implements the Node interface.
func (e *Expand) Schema() sql.Schema {
	return e.OutputSchema
}

// Resolved implements the Resolvable interface.
func (e *Expand) Resolved() bool {
	if !e.Child.Resolved() {
		return false
	}
	for _, set := range e.Projections {
		if !sql.ExpressionsResolved(set...) {
			return false
		}
	}
	return true
}

// WithChildren implements the Node interface.
func (e *Expand) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	return NewExpand(e.Projections, e.OutputSchema, children[0]), nil
}

// Expressions implements the Expressioner interface. The per-set lists are
// flattened in set order.
func (e *Expand) Expressions() []sql.Expression {
	var exprs []sql.Expression
	for _, set := range e.Projections {
		exprs = append(exprs, set...)
	}
	return exprs
}

// WithExpressions implements the Expressioner interface.
func (e *Expand) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	var total int
	for _, set := range e.Projections {
		total += len(set)
	}
	if len(exprs) != total {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(exprs), total)
	}

	projections := make([][]sql.Expression, len(e.Projections))
	for i, set := range e.Projections {
		projections[i] = exprs[:len(set)]
		exprs = exprs[len(set):]
	}
	return NewExpand(projections, e.OutputSchema, e.Child), nil
}

func (e *Expand) String() string {
	pr := sql.NewTreePrinter()
	var sets = make([]string, len(e.Projections))
	for i, set := range e.Projections {
		sets[i] = "(" + strings.Join(expressionsToStrings(set), ", ") + ")"
	}
	pr.WriteNode("Expand(%s)", strings.Join(sets, ", "))
	pr.WriteChildren(e.Child.String())
	return pr.String()
}
