package function

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
)

// Length returns the length of a string.
type Length struct {
	expression.UnaryExpression
}

var _ sql.Expression = (*Length)(nil)

// NewLength returns a new Length expression.
func NewLength(e sql.Expression) sql.Expression {
	return &Length{expression.UnaryExpression{Child: e}}
}

// Type implements the Expression interface.
func (*Length) Type() sql.Type { return sql.Int64 }

func (l *Length) String() string {
	return fmt.Sprintf("length(%s)", l.Child)
}

// WithChildren implements the Expression interface.
func (l *Length) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return NewLength(children[0]), nil
}

// Eval implements the Expression interface.
func (l *Length) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := l.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, sql.ErrInvalidType.New(l.Child.Type())
	}
	return int64(len(s)), nil
}

// Lower converts a string to its lowercase form.
type Lower struct {
	expression.UnaryExpression
}

var _ sql.Expression = (*Lower)(nil)

// NewLower creates a new Lower expression.
func NewLower(e sql.Expression) sql.Expression {
	return &Lower{expression.UnaryExpression{Child: e}}
}

// Type implements the Expression interface.
func (l *Lower) Type() sql.Type { return l.Child.Type() }

func (l *Lower) String() string {
	return fmt.Sprintf("lower(%s)", l.Child)
}

// WithChildren implements the Expression interface.
func (l *Lower) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return NewLower(children[0]), nil
}

// Eval implements the Expression interface.
func (l *Lower) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := l.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, sql.ErrInvalidType.New(l.Child.Type())
	}
	return strings.ToLower(s), nil
}

// Upper converts a string to its uppercase form.
type Upper struct {
	expression.UnaryExpression
}

var _ sql.Expression = (*Upper)(nil)

// NewUpper creates a new Upper expression.
func NewUpper(e sql.Expression) sql.Expression {
	return &Upper{expression.UnaryExpression{Child: e}}
}

// Type implements the Expression interface.
func (u *Upper) Type() sql.Type { return u.Child.Type() }

func (u *Upper) String() string {
	return fmt.Sprintf("upper(%s)", u.Child)
}

// WithChildren implements the Expression interface.
func (u *Upper) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 1)
	}
	return NewUpper(children[0]), nil
}

// Eval implements the Expression interface.
func (u *Upper) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := u.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, sql.ErrInvalidType.New(u.Child.Type())
	}
	return strings.ToUpper(s), nil
}
