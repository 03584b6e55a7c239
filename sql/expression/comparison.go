package expression

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/corvusql/corvus/sql"
)

var errUnknownOperator = errors.NewKind("unknown operator: %s")

// Comparer implements a comparison expression.
type Comparer interface {
	sql.Expression
	Compare(ctx *sql.Context, row sql.Row) (int, error)
	Left() sql.Expression
	Right() sql.Expression
}

// ErrNilOperand is returned when some or both of the comparison's operands
// is nil.
var ErrNilOperand = errors.NewKind("nil operand found in comparison")

type comparison struct {
	BinaryExpression
}

func newComparison(left, right sql.Expression) comparison {
	return comparison{BinaryExpression{left, right}}
}

// Compare the two given values using the types of the expressions in the
// comparison. A nil operand yields ErrNilOperand.
func (c *comparison) Compare(ctx *sql.Context, row sql.Row) (int, error) {
	left, err := c.BinaryExpression.Left.Eval(ctx, row)
	if err != nil {
		return 0, err
	}
	right, err := c.BinaryExpression.Right.Eval(ctx, row)
	if err != nil {
		return 0, err
	}

	if left == nil || right == nil {
		return 0, ErrNilOperand.New()
	}

	return c.BinaryExpression.Left.Type().Compare(left, right)
}

// Type implements the Expression interface.
func (*comparison) Type() sql.Type {
	return sql.Boolean
}

// Left implements Comparer interface.
func (c *comparison) Left() sql.Expression { return c.BinaryExpression.Left }

// Right implements Comparer interface.
func (c *comparison) Right() sql.Expression { return c.BinaryExpression.Right }

// Equals is a comparison that checks an expression is equal to another.
type Equals struct {
	comparison
}

var _ sql.Expression = (*Equals)(nil)

// NewEquals returns a new Equals expression.
func NewEquals(left, right sql.Expression) *Equals {
	return &Equals{newComparison(left, right)}
}

// Eval implements the Expression interface.
func (e *Equals) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	result, err := e.Compare(ctx, row)
	if err != nil {
		if ErrNilOperand.Is(err) {
			return nil, nil
		}
		return nil, err
	}
	return result == 0, nil
}

// WithChildren implements the Expression interface.
func (e *Equals) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewEquals(children[0], children[1]), nil
}

func (e *Equals) String() string {
	return fmt.Sprintf("(%s = %s)", e.Left(), e.Right())
}

// NotEquals is a comparison that checks an expression is not equal to
// another.
type NotEquals struct {
	comparison
}

var _ sql.Expression = (*NotEquals)(nil)

// NewNotEquals returns a new NotEquals expression.
func NewNotEquals(left, right sql.Expression) *NotEquals {
	return &NotEquals{newComparison(left, right)}
}

// Eval implements the Expression interface.
func (e *NotEquals) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	result, err := e.Compare(ctx, row)
	if err != nil {
		if ErrNilOperand.Is(err) {
			return nil, nil
		}
		return nil, err
	}
	return result != 0, nil
}

// WithChildren implements the Expression interface.
func (e *NotEquals) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewNotEquals(children[0], children[1]), nil
}

func (e *NotEquals) String() string {
	return fmt.Sprintf("(%s != %s)", e.Left(), e.Right())
}

// LessThan is a comparison that checks an expression is less than another.
type LessThan struct {
	comparison
}

var _ sql.Expression = (*LessThan)(nil)

// NewLessThan creates a new LessThan expression.
func NewLessThan(left, right sql.Expression) *LessThan {
	return &LessThan{newComparison(left, right)}
}

// Eval implements the expression interface.
func (e *LessThan) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	result, err := e.Compare(ctx, row)
	if err != nil {
		if ErrNilOperand.Is(err) {
			return nil, nil
		}
		return nil, err
	}
	return result < 0, nil
}

// WithChildren implements the Expression interface.
func (e *LessThan) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewLessThan(children[0], children[1]), nil
}

func (e *LessThan) String() string {
	return fmt.Sprintf("(%s < %s)", e.Left(), e.Right())
}

// GreaterThan is a comparison that checks an expression is greater than
// another.
type GreaterThan struct {
	comparison
}

var _ sql.Expression = (*GreaterThan)(nil)

// NewGreaterThan creates a new GreaterThan expression.
func NewGreaterThan(left, right sql.Expression) *GreaterThan {
	return &GreaterThan{newComparison(left, right)}
}

// Eval implements the expression interface.
func (e *GreaterThan) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	result, err := e.Compare(ctx, row)
	if err != nil {
		if ErrNilOperand.Is(err) {
			return nil, nil
		}
		return nil, err
	}
	return result > 0, nil
}

// WithChildren implements the Expression interface.
func (e *GreaterThan) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewGreaterThan(children[0], children[1]), nil
}

func (e *GreaterThan) String() string {
	return fmt.Sprintf("(%s > %s)", e.Left(), e.Right())
}

// LessThanOrEqual is a comparison that checks an expression is equal or
// lower than another.
type LessThanOrEqual struct {
	comparison
}

var _ sql.Expression = (*LessThanOrEqual)(nil)

// NewLessThanOrEqual creates a LessThanOrEqual expression.
func NewLessThanOrEqual(left, right sql.Expression) *LessThanOrEqual {
	return &LessThanOrEqual{newComparison(left, right)}
}

// Eval implements the expression interface.
func (e *LessThanOrEqual) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	result, err := e.Compare(ctx, row)
	if err != nil {
		if ErrNilOperand.Is(err) {
			return nil, nil
		}
		return nil, err
	}
	return result <= 0, nil
}

// WithChildren implements the Expression interface.
func (e *LessThanOrEqual) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewLessThanOrEqual(children[0], children[1]), nil
}

func (e *LessThanOrEqual) String() string {
	return fmt.Sprintf("(%s <= %s)", e.Left(), e.Right())
}

// GreaterThanOrEqual is a comparison that checks an expression is equal or
// greater than another.
type GreaterThanOrEqual struct {
	comparison
}

var _ sql.Expression = (*GreaterThanOrEqual)(nil)

// NewGreaterThanOrEqual creates a GreaterThanOrEqual expression.
func NewGreaterThanOrEqual(left, right sql.Expression) *GreaterThanOrEqual {
	return &GreaterThanOrEqual{newComparison(left, right)}
}

// Eval implements the expression interface.
func (e *GreaterThanOrEqual) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	result, err := e.Compare(ctx, row)
	if err != nil {
		if ErrNilOperand.Is(err) {
			return nil, nil
		}
		return nil, err
	}
	return result >= 0, nil
}

// WithChildren implements the Expression interface.
func (e *GreaterThanOrEqual) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewGreaterThanOrEqual(children[0], children[1]), nil
}

func (e *GreaterThanOrEqual) String() string {
	return fmt.Sprintf("(%s >= %s)", e.Left(), e.Right())
}
