package plan

import (
	"strings"

	"github.com/corvusql/corvus/sql"
)

// Repartition redistributes rows across a number of partitions, optionally
// hashing a set of expressions. It changes physical layout only; its output
// rows and schema are its child's.
type Repartition struct {
	UnaryNode
	NumPartitions int
	PartitionBy   []sql.Expression
}

var _ sql.Node = (*Repartition)(nil)
var _ sql.Expressioner = (*Repartition)(nil)

// NewRepartition creates a new Repartition node.
func NewRepartition(numPartitions int, partitionBy []sql.Expression, child sql.Node) *Repartition {
	return &Repartition{
		UnaryNode:     UnaryNode{Child: child},
		NumPartitions: numPartitions,
		PartitionBy:   partitionBy,
	}
}

// Resolved implements the Resolvable interface.
func (r *Repartition) Resolved() bool {
	return r.Child.Resolved() && sql.ExpressionsResolved(r.PartitionBy...)
}

// WithChildren implements the Node interface.
func (r *Repartition) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 1)
	}
	return NewRepartition(r.NumPartitions, r.PartitionBy, children[0]), nil
}

// Expressions implements the Expressioner interface.
func (r *Repartition) Expressions() []sql.Expression {
	return r.PartitionBy
}

// WithExpressions implements the Expressioner interface.
func (r *Repartition) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(r.PartitionBy) {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(exprs), len(r.PartitionBy))
	}
	return NewRepartition(r.NumPartitions, exprs, r.Child), nil
}

func (r *Repartition) String() string {
	pr := sql.NewTreePrinter()
	if len(r.PartitionBy) > 0 {
		pr.WriteNode("Repartition(%d: %s)", r.NumPartitions,
			strings.Join(expressionsToStrings(r.PartitionBy), ", "))
	} else {
		pr.WriteNode("Repartition(%d)", r.NumPartitions)
	}
	pr.WriteChildren(r.Child.String())
	return pr.String()
}
