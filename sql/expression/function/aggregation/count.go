package aggregation

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
)

// Count is the COUNT aggregate: the number of rows whose argument is not
// null. COUNT(*) counts every row.
type Count struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*Count)(nil)

// NewCount creates a new Count node.
func NewCount(e sql.Expression) sql.Expression {
	return &Count{expression.UnaryExpression{Child: e}}
}

// NewBuffer creates a new buffer for the aggregation.
func (c *Count) NewBuffer() sql.Row {
	return sql.NewRow(int64(0))
}

// Type returns the type of the result.
func (c *Count) Type() sql.Type {
	return sql.Int64
}

// IsNullable returns whether the return value can be null.
func (c *Count) IsNullable() bool {
	return false
}

func (c *Count) String() string {
	return fmt.Sprintf("count(%s)", c.Child)
}

// WithChildren implements the Expression interface.
func (c *Count) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 1)
	}
	return NewCount(children[0]), nil
}

// Update implements the Aggregation interface.
func (c *Count) Update(ctx *sql.Context, buffer, row sql.Row) error {
	var inc bool
	if _, ok := c.Child.(*expression.Star); ok {
		inc = true
	} else {
		v, err := c.Child.Eval(ctx, row)
		if err != nil {
			return err
		}
		inc = v != nil
	}

	if inc {
		buffer[0] = buffer[0].(int64) + 1
	}
	return nil
}

// Merge implements the Aggregation interface.
func (c *Count) Merge(ctx *sql.Context, buffer, partial sql.Row) error {
	buffer[0] = buffer[0].(int64) + partial[0].(int64)
	return nil
}

// Eval implements the Aggregation interface.
func (c *Count) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	return buffer[0], nil
}
