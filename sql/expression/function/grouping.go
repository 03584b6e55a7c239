package function

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
)

// Grouping reports whether its argument was aggregated away in the
// grouping set that produced the current row: 1 when the column is
// null-padded, 0 when it is a real grouping value.
//
// It starts life as a placeholder over the column argument. When grouping
// sets are lowered, the analyzer binds it to the synthetic grouping id
// column and the argument's bit position; evaluating an unbound Grouping
// is an error caught by validation.
type Grouping struct {
	expression.UnaryExpression
	id  sql.Expression
	bit int
}

var _ sql.Expression = (*Grouping)(nil)

// NewGrouping creates an unbound grouping function over the column given.
func NewGrouping(child sql.Expression) sql.Expression {
	return &Grouping{UnaryExpression: expression.UnaryExpression{Child: child}, bit: -1}
}

// WithGroupingId binds the function to the grouping id column and the bit
// encoding its argument.
func (g *Grouping) WithGroupingId(id sql.Expression, bit int) *Grouping {
	n := *g
	n.id = id
	n.bit = bit
	return &n
}

// Bound reports whether grouping-set lowering has bound this call.
func (g *Grouping) Bound() bool { return g.id != nil && g.bit >= 0 }

// Type implements the Expression interface.
func (*Grouping) Type() sql.Type { return sql.Int64 }

// IsNullable implements the Expression interface.
func (*Grouping) IsNullable() bool { return false }

// Eval implements the Expression interface.
func (g *Grouping) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	if !g.Bound() {
		return nil, sql.ErrUnresolvedExpression.New(g.String())
	}
	v, err := g.id.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	id, err := cast.ToInt64E(v)
	if err != nil {
		return nil, err
	}
	return (id >> uint(g.bit)) & 1, nil
}

// WithChildren implements the Expression interface.
func (g *Grouping) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}
	n := *g
	n.Child = children[0]
	return &n, nil
}

func (g *Grouping) String() string {
	return fmt.Sprintf("grouping(%s)", g.Child)
}
