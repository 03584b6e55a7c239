package aggregation

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
)

// First is the FIRST aggregate: the first value seen for the expression.
type First struct {
	expression.UnaryExpression
}

var _ sql.Aggregation = (*First)(nil)

// NewFirst returns a new First node.
func NewFirst(e sql.Expression) sql.Expression {
	return &First{expression.UnaryExpression{Child: e}}
}

// Type returns the resultant type of the aggregation.
func (f *First) Type() sql.Type {
	return f.Child.Type()
}

func (f *First) String() string {
	return fmt.Sprintf("first(%s)", f.Child)
}

// WithChildren implements the Expression interface.
func (f *First) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 1)
	}
	return NewFirst(children[0]), nil
}

// NewBuffer creates a new buffer to compute the result. The second slot
// tracks whether a value has been captured.
func (f *First) NewBuffer() sql.Row {
	return sql.NewRow(nil, false)
}

// Update implements the Aggregation interface.
func (f *First) Update(ctx *sql.Context, buffer, row sql.Row) error {
	if buffer[1].(bool) {
		return nil
	}

	v, err := f.Child.Eval(ctx, row)
	if err != nil {
		return err
	}

	buffer[0] = v
	buffer[1] = true
	return nil
}

// Merge implements the Aggregation interface.
func (f *First) Merge(ctx *sql.Context, buffer, partial sql.Row) error {
	if buffer[1].(bool) || !partial[1].(bool) {
		return nil
	}
	buffer[0] = partial[0]
	buffer[1] = true
	return nil
}

// Eval implements the Aggregation interface.
func (f *First) Eval(ctx *sql.Context, buffer sql.Row) (interface{}, error) {
	return buffer[0], nil
}
