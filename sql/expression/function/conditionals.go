package function

import (
	"fmt"
	"strings"

	"github.com/corvusql/corvus/sql"
)

// If returns the second value if the condition is true, the third
// otherwise.
type If struct {
	Cond    sql.Expression
	IfTrue  sql.Expression
	IfFalse sql.Expression
}

var _ sql.Expression = (*If)(nil)

// NewIf returns a new If expression.
func NewIf(cond, ifTrue, ifFalse sql.Expression) sql.Expression {
	return &If{Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}
}

// Resolved implements the Expression interface.
func (f *If) Resolved() bool {
	return f.Cond.Resolved() && f.IfTrue.Resolved() && f.IfFalse.Resolved()
}

// Children implements the Expression interface.
func (f *If) Children() []sql.Expression {
	return []sql.Expression{f.Cond, f.IfTrue, f.IfFalse}
}

// IsNullable implements the Expression interface.
func (f *If) IsNullable() bool {
	return f.IfTrue.IsNullable() || f.IfFalse.IsNullable()
}

// Type implements the Expression interface.
func (f *If) Type() sql.Type {
	return f.IfTrue.Type()
}

// Eval implements the Expression interface.
func (f *If) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	cond, err := f.Cond.Eval(ctx, row)
	if err != nil {
		return nil, err
	}

	if cond == true {
		return f.IfTrue.Eval(ctx, row)
	}
	return f.IfFalse.Eval(ctx, row)
}

func (f *If) String() string {
	return fmt.Sprintf("if(%s, %s, %s)", f.Cond, f.IfTrue, f.IfFalse)
}

// WithChildren implements the Expression interface.
func (f *If) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 3 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 3)
	}
	return NewIf(children[0], children[1], children[2]), nil
}

// IfNull returns the first value when it is not null, the second
// otherwise.
type IfNull struct {
	left  sql.Expression
	right sql.Expression
}

var _ sql.Expression = (*IfNull)(nil)

// NewIfNull returns a new IfNull expression.
func NewIfNull(left, right sql.Expression) sql.Expression {
	return &IfNull{left: left, right: right}
}

// Resolved implements the Expression interface.
func (f *IfNull) Resolved() bool {
	return f.left.Resolved() && f.right.Resolved()
}

// Children implements the Expression interface.
func (f *IfNull) Children() []sql.Expression {
	return []sql.Expression{f.left, f.right}
}

// IsNullable implements the Expression interface.
func (f *IfNull) IsNullable() bool {
	return f.right.IsNullable()
}

// Type implements the Expression interface.
func (f *IfNull) Type() sql.Type {
	return f.left.Type()
}

// Eval implements the Expression interface.
func (f *IfNull) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	left, err := f.left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if left != nil {
		return left, nil
	}
	return f.right.Eval(ctx, row)
}

func (f *IfNull) String() string {
	return fmt.Sprintf("ifnull(%s, %s)", f.left, f.right)
}

// WithChildren implements the Expression interface.
func (f *IfNull) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 2)
	}
	return NewIfNull(children[0], children[1]), nil
}

// Coalesce returns the first of its arguments that is not null.
type Coalesce struct {
	args []sql.Expression
}

var _ sql.Expression = (*Coalesce)(nil)

// NewCoalesce creates a new Coalesce expression.
func NewCoalesce(args ...sql.Expression) (sql.Expression, error) {
	if len(args) == 0 {
		return nil, sql.ErrInvalidArgumentNumber.New("coalesce", "1 or more", 0)
	}
	return &Coalesce{args}, nil
}

// Resolved implements the Expression interface.
func (c *Coalesce) Resolved() bool {
	return sql.ExpressionsResolved(c.args...)
}

// Children implements the Expression interface.
func (c *Coalesce) Children() []sql.Expression { return c.args }

// IsNullable implements the Expression interface.
func (c *Coalesce) IsNullable() bool {
	for _, a := range c.args {
		if !a.IsNullable() {
			return false
		}
	}
	return true
}

// Type implements the Expression interface. The type of the first
// non-null-typed argument wins.
func (c *Coalesce) Type() sql.Type {
	for _, a := range c.args {
		if !sql.TypesEqual(a.Type(), sql.Null) {
			return a.Type()
		}
	}
	return sql.Null
}

// Eval implements the Expression interface.
func (c *Coalesce) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	for _, a := range c.args {
		val, err := a.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if val != nil {
			return val, nil
		}
	}
	return nil, nil
}

func (c *Coalesce) String() string {
	var args = make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = a.String()
	}
	return fmt.Sprintf("coalesce(%s)", strings.Join(args, ", "))
}

// WithChildren implements the Expression interface.
func (c *Coalesce) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(c.args) {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), len(c.args))
	}
	return NewCoalesce(children...)
}
