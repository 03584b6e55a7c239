package expression

import (
	"fmt"
	"strings"

	"github.com/corvusql/corvus/sql"
)

// UnresolvedColumn is an unresolved, possibly qualified column reference.
type UnresolvedColumn struct {
	name  string
	table string
}

var _ sql.Expression = (*UnresolvedColumn)(nil)

// NewUnresolvedColumn creates a new UnresolvedColumn expression.
func NewUnresolvedColumn(name string) *UnresolvedColumn {
	return &UnresolvedColumn{name: name}
}

// NewUnresolvedQualifiedColumn creates a new UnresolvedColumn expression
// with a table qualifier.
func NewUnresolvedQualifiedColumn(table, name string) *UnresolvedColumn {
	return &UnresolvedColumn{name: name, table: table}
}

// Resolved implements the Expression interface.
func (*UnresolvedColumn) Resolved() bool { return false }

// IsNullable implements the Expression interface.
func (*UnresolvedColumn) IsNullable() bool { return true }

// Children implements the Expression interface.
func (*UnresolvedColumn) Children() []sql.Expression { return nil }

// Name implements the Nameable interface.
func (uc *UnresolvedColumn) Name() string { return uc.name }

// Table returns the table name, which may be empty.
func (uc *UnresolvedColumn) Table() string { return uc.table }

// Type implements the Expression interface.
func (*UnresolvedColumn) Type() sql.Type { return sql.Null }

// Eval implements the Expression interface.
func (uc *UnresolvedColumn) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrUnresolvedExpression.New(uc.String())
}

func (uc *UnresolvedColumn) String() string {
	if uc.table == "" {
		return uc.name
	}
	return fmt.Sprintf("%s.%s", uc.table, uc.name)
}

// WithChildren implements the Expression interface.
func (uc *UnresolvedColumn) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(uc, len(children), 0)
	}
	return uc, nil
}

// UnresolvedFunction represents a function call that has not yet been
// bound against the function registry. It may carry a window specification
// for functions used with an OVER clause.
type UnresolvedFunction struct {
	name string
	// IsAggregate reports whether the function was used in an aggregate
	// position by the builder.
	IsAggregate bool
	// Window is the window specification, or nil.
	Window *sql.WindowDef
	// Arguments of the function.
	Arguments []sql.Expression
}

var _ sql.Expression = (*UnresolvedFunction)(nil)

// NewUnresolvedFunction creates a new UnresolvedFunction expression.
func NewUnresolvedFunction(name string, agg bool, window *sql.WindowDef, arguments ...sql.Expression) *UnresolvedFunction {
	return &UnresolvedFunction{
		name:        name,
		IsAggregate: agg,
		Window:      window,
		Arguments:   arguments,
	}
}

// Resolved implements the Expression interface.
func (*UnresolvedFunction) Resolved() bool { return false }

// IsNullable implements the Expression interface.
func (*UnresolvedFunction) IsNullable() bool { return true }

// Children implements the Expression interface.
func (uf *UnresolvedFunction) Children() []sql.Expression {
	return append(append([]sql.Expression{}, uf.Arguments...), uf.Window.Expressions()...)
}

// Name implements the Nameable interface.
func (uf *UnresolvedFunction) Name() string { return uf.name }

// Type implements the Expression interface.
func (*UnresolvedFunction) Type() sql.Type { return sql.Null }

// Eval implements the Expression interface.
func (uf *UnresolvedFunction) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrUnresolvedExpression.New(uf.String())
}

func (uf *UnresolvedFunction) String() string {
	var exprs = make([]string, len(uf.Arguments))
	for i, e := range uf.Arguments {
		exprs[i] = e.String()
	}
	call := fmt.Sprintf("%s(%s)", uf.name, strings.Join(exprs, ", "))
	if uf.Window != nil {
		call += " " + uf.Window.String()
	}
	return call
}

// WithChildren implements the Expression interface.
func (uf *UnresolvedFunction) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	wantArgs := len(uf.Arguments)
	wantWindow := len(uf.Window.Expressions())
	if len(children) != wantArgs+wantWindow {
		return nil, sql.ErrInvalidChildrenNumber.New(uf, len(children), wantArgs+wantWindow)
	}

	window, err := uf.Window.FromExpressions(children[wantArgs:])
	if err != nil {
		return nil, err
	}

	return NewUnresolvedFunction(uf.name, uf.IsAggregate, window, children[:wantArgs]...), nil
}
