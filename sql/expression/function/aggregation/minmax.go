package aggregation

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
)

// Min is the MIN aggregate: the smallest non-null value of the expression.
type Min struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*Min)(nil)

// NewMin creates a new Min node.
func NewMin(e sql.Expression) sql.Expression {
	return &Min{expression.UnaryExpression{Child: e}}
}

// Type returns the resultant type of the aggregation.
func (m *Min) Type() sql.Type {
	return m.Child.Type()
}

func (m *Min) String() string {
	return fmt.Sprintf("min(%s)", m.Child)
}

// IsNullable returns whether the return value can be null.
func (m *Min) IsNullable() bool {
	return true
}

// WithChildren implements the Expression interface.
func (m *Min) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMin(children[0]), nil
}

// NewBuffer creates a new buffer to compute the result.
func (m *Min) NewBuffer() sql.Row {
	return sql.NewRow(nil)
}

// Update implements the Aggregation interface.
func (m *Min) Update(ctx *sql.Context, buffer, row sql.Row) error {
	v, err := m.Child.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	if buffer[0] == nil {
		buffer[0] = v
		return nil
	}

	cmp, err := m.Child.Type().Compare(v, buffer[0])
	if err != nil {
		return err
	}
	if cmp < 0 {
		buffer[0] = v
	}
	return nil
}

// Merge implements the Aggregation interface.
func (m *Min) Merge(ctx *sql.Context, buffer, partial sql.Row) error {
	return m.Update(ctx, buffer, partial)
}

// Eval implements the Aggregation interface.
func (m *Min) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	return buffer[0], nil
}

// Max is the MAX aggregate: the largest non-null value of the expression.
type Max struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*Max)(nil)

// NewMax returns a new Max node.
func NewMax(e sql.Expression) sql.Expression {
	return &Max{expression.UnaryExpression{Child: e}}
}

// Type returns the resultant type of the aggregation.
func (m *Max) Type() sql.Type {
	return m.Child.Type()
}

func (m *Max) String() string {
	return fmt.Sprintf("max(%s)", m.Child)
}

// IsNullable returns whether the return value can be null.
func (m *Max) IsNullable() bool {
	return true
}

// WithChildren implements the Expression interface.
func (m *Max) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMax(children[0]), nil
}

// NewBuffer creates a new buffer to compute the result.
func (m *Max) NewBuffer() sql.Row {
	return sql.NewRow(nil)
}

// Update implements the Aggregation interface.
func (m *Max) Update(ctx *sql.Context, buffer, row sql.Row) error {
	v, err := m.Child.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	if buffer[0] == nil {
		buffer[0] = v
		return nil
	}

	cmp, err := m.Child.Type().Compare(v, buffer[0])
	if err != nil {
		return err
	}
	if cmp > 0 {
		buffer[0] = v
	}
	return nil
}

// Merge implements the Aggregation interface.
func (m *Max) Merge(ctx *sql.Context, buffer, partial sql.Row) error {
	return m.Update(ctx, buffer, partial)
}

// Eval implements the Aggregation interface.
func (m *Max) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	return buffer[0], nil
}
