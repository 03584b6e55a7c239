package function

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
)

// Explode is a unary function that generates a row for each value of its
// array child. It can only be used in projections, and only one per
// projection. The analyzer replaces it with Generate inside a generate
// operator.
type Explode struct {
	expression.UnaryExpression
}

var _ sql.Expression = (*Explode)(nil)

// NewExplode creates a new Explode function.
func NewExplode(child sql.Expression) sql.Expression {
	return &Explode{expression.UnaryExpression{Child: child}}
}

// Type implements the Expression interface.
func (e *Explode) Type() sql.Type {
	if t, ok := e.Child.Type().(sql.ArrayType); ok {
		return t.Elem
	}
	return e.Child.Type()
}

// Eval implements the Expression interface.
func (e *Explode) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, fmt.Errorf("explode is a placeholder expression, but was evaluated")
}

// WithChildren implements the Expression interface.
func (e *Explode) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	return NewExplode(children[0]), nil
}

func (e *Explode) String() string {
	return fmt.Sprintf("explode(%s)", e.Child)
}

// Generate is what Explode turns into once the analyzer places it inside a
// generate operator. Its Eval returns a generator over the child array.
type Generate struct {
	expression.UnaryExpression
}

var _ sql.Expression = (*Generate)(nil)

// NewGenerate creates a new Generate function.
func NewGenerate(child sql.Expression) *Generate {
	return &Generate{expression.UnaryExpression{Child: child}}
}

// Type implements the Expression interface.
func (e *Generate) Type() sql.Type {
	if t, ok := e.Child.Type().(sql.ArrayType); ok {
		return t.Elem
	}
	return e.Child.Type()
}

// Eval implements the Expression interface.
func (e *Generate) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := e.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return sql.NewArrayGenerator(nil), nil
	}
	return sql.ToGenerator(v)
}

// WithChildren implements the Expression interface.
func (e *Generate) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	return NewGenerate(children[0]), nil
}

func (e *Generate) String() string {
	return fmt.Sprintf("generate(%s)", e.Child)
}
