package expression

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/corvusql/corvus/sql"
)

// Arithmetic expressions (+, -, *, /).
type Arithmetic struct {
	BinaryExpression
	Op string
}

var _ sql.Expression = (*Arithmetic)(nil)

// NewArithmetic creates a new Arithmetic sql.Expression.
func NewArithmetic(left, right sql.Expression, op string) *Arithmetic {
	return &Arithmetic{BinaryExpression{Left: left, Right: right}, op}
}

// NewPlus creates a new Arithmetic + sql.Expression.
func NewPlus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "+")
}

// NewMinus creates a new Arithmetic - sql.Expression.
func NewMinus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "-")
}

// NewMult creates a new Arithmetic * sql.Expression.
func NewMult(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "*")
}

// NewDiv creates a new Arithmetic / sql.Expression.
func NewDiv(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "/")
}

func (a *Arithmetic) String() string {
	return fmt.Sprintf("(%s %s %s)", a.Left, a.Op, a.Right)
}

// Type returns the result type. Division is always floating point; the
// other operators promote to float when either side is float.
func (a *Arithmetic) Type() sql.Type {
	if a.Op == "/" {
		return sql.Float64
	}
	if sql.TypesEqual(a.Left.Type(), sql.Float64) ||
		sql.TypesEqual(a.Right.Type(), sql.Float64) {
		return sql.Float64
	}
	return sql.Int64
}

// WithChildren implements the Expression interface.
func (a *Arithmetic) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewArithmetic(children[0], children[1], a.Op), nil
}

// Eval implements the Expression interface.
func (a *Arithmetic) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	lval, err := a.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if lval == nil {
		return nil, nil
	}

	rval, err := a.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if rval == nil {
		return nil, nil
	}

	if sql.TypesEqual(a.Type(), sql.Float64) {
		lf, err := cast.ToFloat64E(lval)
		if err != nil {
			return nil, sql.ErrInvalidType.New(a.Left.Type())
		}
		rf, err := cast.ToFloat64E(rval)
		if err != nil {
			return nil, sql.ErrInvalidType.New(a.Right.Type())
		}
		return a.evalFloat(lf, rf)
	}

	li, err := cast.ToInt64E(lval)
	if err != nil {
		return nil, sql.ErrInvalidType.New(a.Left.Type())
	}
	ri, err := cast.ToInt64E(rval)
	if err != nil {
		return nil, sql.ErrInvalidType.New(a.Right.Type())
	}
	return a.evalInt(li, ri)
}

func (a *Arithmetic) evalFloat(l, r float64) (interface{}, error) {
	switch a.Op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return nil, nil
		}
		return l / r, nil
	}
	return nil, errUnknownOperator.New(a.Op)
}

func (a *Arithmetic) evalInt(l, r int64) (interface{}, error) {
	switch a.Op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	}
	return nil, errUnknownOperator.New(a.Op)
}
