package plan

import (
	"strings"

	"github.com/corvusql/corvus/sql"
)

// Sort is the sort node. Its sort fields carry an order direction and a
// null ordering each.
type Sort struct {
	UnaryNode
	SortFields sql.SortFields
}

var _ sql.Node = (*Sort)(nil)
var _ sql.Expressioner = (*Sort)(nil)

// NewSort creates a new Sort node.
func NewSort(sortFields sql.SortFields, child sql.Node) *Sort {
	return &Sort{
		UnaryNode:  UnaryNode{child},
		SortFields: sortFields,
	}
}

// Resolved implements the Resolvable interface.
func (s *Sort) Resolved() bool {
	return s.UnaryNode.Child.Resolved() &&
		sql.ExpressionsResolved(s.SortFields.ToExpressions()...)
}

func (s *Sort) String() string {
	pr := sql.NewTreePrinter()
	var fields = make([]string, len(s.SortFields))
	for i, f := range s.SortFields {
		fields[i] = f.String()
	}
	pr.WriteNode("Sort(%s)", strings.Join(fields, ", "))
	pr.WriteChildren(s.Child.String())
	return pr.String()
}

// Expressions implements the Expressioner interface.
func (s *Sort) Expressions() []sql.Expression {
	return s.SortFields.ToExpressions()
}

// WithChildren implements the Node interface.
func (s *Sort) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSort(s.SortFields, children[0]), nil
}

// WithExpressions implements the Expressioner interface.
func (s *Sort) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(s.SortFields) {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(exprs), len(s.SortFields))
	}
	return NewSort(s.SortFields.FromExpressions(exprs...), s.Child), nil
}
