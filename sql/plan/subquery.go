package plan

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/corvusql/corvus/sql"
)

// ErrScalarSubqueryColumns is returned when a scalar subquery selects more
// than one column.
var ErrScalarSubqueryColumns = errors.NewKind("scalar subquery must return exactly one column, got %d")

// Subquery is a scalar subquery expression: a full query subtree used in
// expression position. Its value is the single column of the single row the
// query returns, null for no rows.
type Subquery struct {
	// Query is the plan of the subquery.
	Query sql.Node
	// Correlated is the set of outer columns the subquery references, empty
	// for uncorrelated subqueries.
	Correlated []sql.ColumnId
}

var _ sql.Expression = (*Subquery)(nil)

// NewSubquery returns a new subquery expression.
func NewSubquery(node sql.Node) *Subquery {
	return &Subquery{Query: node}
}

// WithCorrelated returns a copy with the correlated column set given.
func (s *Subquery) WithCorrelated(cols []sql.ColumnId) *Subquery {
	n := *s
	n.Correlated = cols
	return &n
}

// WithQuery returns a copy with the query subtree replaced.
func (s *Subquery) WithQuery(node sql.Node) *Subquery {
	n := *s
	n.Query = node
	return &n
}

// Resolved implements the Expression interface.
func (s *Subquery) Resolved() bool {
	return s.Query.Resolved()
}

// IsNullable implements the Expression interface.
func (s *Subquery) IsNullable() bool {
	return true
}

// Children implements the Expression interface. The subquery's plan is not
// exposed as expression children; the analyzer descends into it explicitly
// with an extended scope.
func (s *Subquery) Children() []sql.Expression { return nil }

// Type implements the Expression interface.
func (s *Subquery) Type() sql.Type {
	cols := s.Query.Schema()
	if len(cols) != 1 {
		return sql.Null
	}
	return cols[0].Type
}

// Eval implements the Expression interface.
func (s *Subquery) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrUnresolvedExpression.New(s.String())
}

// WithChildren implements the Expression interface.
func (s *Subquery) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

func (s *Subquery) String() string {
	return fmt.Sprintf("(%s)", s.Query)
}

// ExistsSubquery is a predicate true when the subquery returns at least
// one row.
type ExistsSubquery struct {
	Query *Subquery
}

var _ sql.Expression = (*ExistsSubquery)(nil)

// NewExistsSubquery returns a new EXISTS predicate over the subquery.
func NewExistsSubquery(query *Subquery) *ExistsSubquery {
	return &ExistsSubquery{Query: query}
}

// Resolved implements the Expression interface.
func (e *ExistsSubquery) Resolved() bool { return e.Query.Resolved() }

// IsNullable implements the Expression interface.
func (*ExistsSubquery) IsNullable() bool { return false }

// Children implements the Expression interface.
func (*ExistsSubquery) Children() []sql.Expression { return nil }

// Type implements the Expression interface.
func (*ExistsSubquery) Type() sql.Type { return sql.Boolean }

// Eval implements the Expression interface.
func (e *ExistsSubquery) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrUnresolvedExpression.New(e.String())
}

// WithChildren implements the Expression interface.
func (e *ExistsSubquery) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 0)
	}
	return e, nil
}

func (e *ExistsSubquery) String() string {
	return fmt.Sprintf("EXISTS %s", e.Query)
}

// InSubquery is a predicate true when the left expression equals any row
// of the subquery.
type InSubquery struct {
	Left  sql.Expression
	Query *Subquery
}

var _ sql.Expression = (*InSubquery)(nil)

// NewInSubquery returns a new IN predicate over the subquery.
func NewInSubquery(left sql.Expression, query *Subquery) *InSubquery {
	return &InSubquery{Left: left, Query: query}
}

// Resolved implements the Expression interface.
func (e *InSubquery) Resolved() bool {
	return e.Left.Resolved() && e.Query.Resolved()
}

// IsNullable implements the Expression interface.
func (e *InSubquery) IsNullable() bool { return e.Left.IsNullable() }

// Children implements the Expression interface.
func (e *InSubquery) Children() []sql.Expression {
	return []sql.Expression{e.Left}
}

// Type implements the Expression interface.
func (*InSubquery) Type() sql.Type { return sql.Boolean }

// Eval implements the Expression interface.
func (e *InSubquery) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrUnresolvedExpression.New(e.String())
}

// WithChildren implements the Expression interface.
func (e *InSubquery) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	return NewInSubquery(children[0], e.Query), nil
}

func (e *InSubquery) String() string {
	return fmt.Sprintf("(%s IN %s)", e.Left, e.Query)
}
