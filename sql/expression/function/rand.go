package function

import (
	"math/rand"

	"github.com/corvusql/corvus/sql"
)

// Rand returns a random float in [0, 1). Being non-deterministic, it is
// never folded nor deduplicated by the optimizer.
type Rand struct{}

var _ sql.Expression = (*Rand)(nil)
var _ sql.NonDeterministicExpression = (*Rand)(nil)

// NewRand creates a new Rand expression.
func NewRand() sql.Expression {
	return &Rand{}
}

// Resolved implements the Expression interface.
func (*Rand) Resolved() bool { return true }

// IsNullable implements the Expression interface.
func (*Rand) IsNullable() bool { return false }

// Children implements the Expression interface.
func (*Rand) Children() []sql.Expression { return nil }

// IsNonDeterministic implements the sql.NonDeterministicExpression
// interface.
func (*Rand) IsNonDeterministic() bool { return true }

// Type implements the Expression interface.
func (*Rand) Type() sql.Type { return sql.Float64 }

func (*Rand) String() string { return "rand()" }

// Eval implements the Expression interface.
func (*Rand) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return rand.Float64(), nil
}

// WithChildren implements the Expression interface.
func (r *Rand) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(r, len(children), 0)
	}
	return r, nil
}
