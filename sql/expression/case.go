package expression

import (
	"fmt"
	"strings"

	"github.com/corvusql/corvus/sql"
)

// CaseBranch is a single WHEN/THEN pair of a Case expression.
type CaseBranch struct {
	Cond  sql.Expression
	Value sql.Expression
}

// Case is a CASE expression. If Expr is not nil, each branch condition is
// compared against it for equality; otherwise each condition is evaluated
// as a predicate.
type Case struct {
	Expr     sql.Expression
	Branches []CaseBranch
	Else     sql.Expression
}

var _ sql.Expression = (*Case)(nil)

// NewCase returns an new Case expression.
func NewCase(expr sql.Expression, branches []CaseBranch, elseExpr sql.Expression) *Case {
	return &Case{expr, branches, elseExpr}
}

// Type implements the Expression interface. The type of a CASE is the type
// of its first non-null branch value.
func (c *Case) Type() sql.Type {
	for _, b := range c.Branches {
		if !sql.TypesEqual(b.Value.Type(), sql.Null) {
			return b.Value.Type()
		}
	}
	if c.Else != nil {
		return c.Else.Type()
	}
	return sql.Null
}

// IsNullable implements the Expression interface.
func (c *Case) IsNullable() bool {
	for _, b := range c.Branches {
		if b.Value.IsNullable() {
			return true
		}
	}
	return c.Else == nil || c.Else.IsNullable()
}

// Resolved implements the Expression interface.
func (c *Case) Resolved() bool {
	if (c.Expr != nil && !c.Expr.Resolved()) ||
		(c.Else != nil && !c.Else.Resolved()) {
		return false
	}
	for _, b := range c.Branches {
		if !b.Cond.Resolved() || !b.Value.Resolved() {
			return false
		}
	}
	return true
}

// Children implements the Expression interface.
func (c *Case) Children() []sql.Expression {
	var children []sql.Expression
	if c.Expr != nil {
		children = append(children, c.Expr)
	}
	for _, b := range c.Branches {
		children = append(children, b.Cond, b.Value)
	}
	if c.Else != nil {
		children = append(children, c.Else)
	}
	return children
}

// Eval implements the Expression interface.
func (c *Case) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	var expr interface{}
	var err error
	if c.Expr != nil {
		expr, err = c.Expr.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
	}

	for _, b := range c.Branches {
		cond, err := b.Cond.Eval(ctx, row)
		if err != nil {
			return nil, err
		}

		var matches bool
		if c.Expr != nil {
			if expr == nil || cond == nil {
				continue
			}
			cmp, err := c.Expr.Type().Compare(expr, cond)
			if err != nil {
				return nil, err
			}
			matches = cmp == 0
		} else {
			matches = cond == true
		}

		if matches {
			return b.Value.Eval(ctx, row)
		}
	}

	if c.Else != nil {
		return c.Else.Eval(ctx, row)
	}
	return nil, nil
}

// WithChildren implements the Expression interface.
func (c *Case) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	var expected = len(c.Branches) * 2
	if c.Expr != nil {
		expected++
	}
	if c.Else != nil {
		expected++
	}

	if len(children) != expected {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), expected)
	}

	var expr, elseExpr sql.Expression
	if c.Expr != nil {
		expr = children[0]
		children = children[1:]
	}
	if c.Else != nil {
		elseExpr = children[len(children)-1]
		children = children[:len(children)-1]
	}

	var branches = make([]CaseBranch, len(c.Branches))
	for i := range branches {
		branches[i] = CaseBranch{Cond: children[i*2], Value: children[i*2+1]}
	}

	return NewCase(expr, branches, elseExpr), nil
}

func (c *Case) String() string {
	var sb strings.Builder
	sb.WriteString("CASE ")
	if c.Expr != nil {
		sb.WriteString(c.Expr.String())
		sb.WriteByte(' ')
	}
	for _, b := range c.Branches {
		fmt.Fprintf(&sb, "WHEN %s THEN %s ", b.Cond, b.Value)
	}
	if c.Else != nil {
		fmt.Fprintf(&sb, "ELSE %s ", c.Else)
	}
	sb.WriteString("END")
	return sb.String()
}
