package expression

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
)

// OuterReference is a resolved reference to a column of an outer query,
// used inside correlated subqueries. It marks the crossing of the subquery
// boundary: the value comes from the outer row, not from the subquery's own
// child relation.
type OuterReference struct {
	Field *GetField
}

var _ sql.Expression = (*OuterReference)(nil)
var _ sql.IdExpression = (*OuterReference)(nil)

// NewOuterReference wraps a resolved outer-scope column reference.
func NewOuterReference(field *GetField) *OuterReference {
	return &OuterReference{Field: field}
}

// Resolved implements the Expression interface.
func (r *OuterReference) Resolved() bool { return true }

// IsNullable implements the Expression interface.
func (r *OuterReference) IsNullable() bool { return r.Field.IsNullable() }

// Children implements the Expression interface.
func (*OuterReference) Children() []sql.Expression { return nil }

// Type implements the Expression interface.
func (r *OuterReference) Type() sql.Type { return r.Field.Type() }

// Id implements the sql.IdExpression interface.
func (r *OuterReference) Id() sql.ColumnId { return r.Field.Id() }

// Name implements the Nameable interface.
func (r *OuterReference) Name() string { return r.Field.Name() }

// Table returns the table of the outer column.
func (r *OuterReference) Table() string { return r.Field.Table() }

// Eval implements the Expression interface. Outer references are bound to
// the outer row by the subquery machinery; evaluating one directly is a bug.
func (r *OuterReference) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrUnresolvedExpression.New(r.String())
}

func (r *OuterReference) String() string {
	return fmt.Sprintf("outer(%s)", r.Field)
}

// WithChildren implements the Expression interface.
func (r *OuterReference) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 0)
	}
	return r, nil
}
