package aggregation

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
)

// Sum is the SUM aggregate. It returns the sum of all non-null values of
// the expression, null when every input was null.
type Sum struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*Sum)(nil)

// NewSum returns a new Sum node.
func NewSum(e sql.Expression) sql.Expression {
	return &Sum{expression.UnaryExpression{Child: e}}
}

// Type returns the resultant type of the aggregation.
func (m *Sum) Type() sql.Type {
	return sql.Float64
}

// IsNullable returns whether the return value can be null.
func (m *Sum) IsNullable() bool {
	return true
}

func (m *Sum) String() string {
	return fmt.Sprintf("sum(%s)", m.Child)
}

// WithChildren implements the Expression interface.
func (m *Sum) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewSum(children[0]), nil
}

// NewBuffer creates a new buffer to compute the result.
func (m *Sum) NewBuffer() sql.Row {
	return sql.NewRow(nil)
}

// Update implements the Aggregation interface.
func (m *Sum) Update(ctx *sql.Context, buffer, row sql.Row) error {
	v, err := m.Child.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	val, err := cast.ToFloat64E(v)
	if err != nil {
		return sql.ErrInvalidType.New(m.Child.Type())
	}

	if buffer[0] == nil {
		buffer[0] = float64(0)
	}
	buffer[0] = buffer[0].(float64) + val
	return nil
}

// Merge implements the Aggregation interface.
func (m *Sum) Merge(ctx *sql.Context, buffer, partial sql.Row) error {
	if partial[0] == nil {
		return nil
	}
	if buffer[0] == nil {
		buffer[0] = float64(0)
	}
	buffer[0] = buffer[0].(float64) + partial[0].(float64)
	return nil
}

// Eval implements the Aggregation interface.
func (m *Sum) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	return buffer[0], nil
}
