package expression

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
)

// Alias is a node that gives a name to an expression. The alias carries its
// own column identity, distinct from the identity of the child.
type Alias struct {
	UnaryExpression
	name string
	id   sql.ColumnId
}

var _ sql.Expression = (*Alias)(nil)
var _ sql.IdExpression = (*Alias)(nil)

// NewAlias returns a new Alias node.
func NewAlias(name string, expr sql.Expression) *Alias {
	return &Alias{UnaryExpression{expr}, name, 0}
}

// Type returns the type of the expression.
func (e *Alias) Type() sql.Type {
	return e.Child.Type()
}

// Eval implements the Expression interface.
func (e *Alias) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return e.Child.Eval(ctx, row)
}

func (e *Alias) String() string {
	return fmt.Sprintf("%s AS %s", e.Child, e.name)
}

// Canonical returns the child's form: the name an alias adds does not change
// what the expression computes.
func (e *Alias) Canonical() string {
	return e.Child.String()
}

// WithChildren implements the Expression interface.
func (e *Alias) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	n := *e
	n.Child = children[0]
	return &n, nil
}

// Id implements the sql.IdExpression interface.
func (e *Alias) Id() sql.ColumnId { return e.id }

// WithId returns a copy of the alias with the id given.
func (e *Alias) WithId(id sql.ColumnId) *Alias {
	n := *e
	n.id = id
	return &n
}

// Name implements the Nameable interface.
func (e *Alias) Name() string { return e.name }
