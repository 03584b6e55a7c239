package aggregation

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
)

// Avg is the AVG aggregate: the mean of all non-null values of the
// expression, null when every input was null.
type Avg struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*Avg)(nil)

// NewAvg creates a new Avg node.
func NewAvg(e sql.Expression) sql.Expression {
	return &Avg{expression.UnaryExpression{Child: e}}
}

func (a *Avg) String() string {
	return fmt.Sprintf("avg(%s)", a.Child)
}

// Type implements Aggregation interface.
func (a *Avg) Type() sql.Type {
	return sql.Float64
}

// IsNullable implements Aggregation interface.
func (a *Avg) IsNullable() bool {
	return true
}

// WithChildren implements the Expression interface.
func (a *Avg) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 1)
	}
	return NewAvg(children[0]), nil
}

// NewBuffer implements Aggregation interface. The buffer holds the running
// sum and the count of non-null inputs.
func (a *Avg) NewBuffer() sql.Row {
	return sql.NewRow(float64(0), int64(0))
}

// Update implements Aggregation interface.
func (a *Avg) Update(ctx *sql.Context, buffer, row sql.Row) error {
	v, err := a.Child.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	val, err := cast.ToFloat64E(v)
	if err != nil {
		return sql.ErrInvalidType.New(a.Child.Type())
	}

	buffer[0] = buffer[0].(float64) + val
	buffer[1] = buffer[1].(int64) + 1
	return nil
}

// Merge implements Aggregation interface.
func (a *Avg) Merge(ctx *sql.Context, buffer, partial sql.Row) error {
	buffer[0] = buffer[0].(float64) + partial[0].(float64)
	buffer[1] = buffer[1].(int64) + partial[1].(int64)
	return nil
}

// Eval implements Aggregation interface.
func (a *Avg) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	count := buffer[1].(int64)
	if count == 0 {
		return nil, nil
	}
	return buffer[0].(float64) / float64(count), nil
}
