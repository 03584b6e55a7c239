package expression

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
)

// Star represents the expansion of all columns, optionally qualified to a
// single table. It only exists before star expansion runs.
type Star struct {
	// Table is the table to expand, or empty to expand every column in
	// scope.
	Table string
}

var _ sql.Expression = (*Star)(nil)

// NewStar returns a new Star expression.
func NewStar() *Star {
	return new(Star)
}

// NewQualifiedStar returns a new Star expression only for a specific table.
func NewQualifiedStar(table string) *Star {
	return &Star{table}
}

// Resolved implements the Expression interface.
func (*Star) Resolved() bool { return false }

// Children implements the Expression interface.
func (*Star) Children() []sql.Expression { return nil }

// IsNullable implements the Expression interface.
func (*Star) IsNullable() bool { return false }

// Type implements the Expression interface.
func (*Star) Type() sql.Type { return sql.Null }

func (s *Star) String() string {
	if s.Table != "" {
		return fmt.Sprintf("%s.*", s.Table)
	}
	return "*"
}

// Eval implements the Expression interface.
func (s *Star) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrUnresolvedExpression.New(s.String())
}

// WithChildren implements the Expression interface.
func (s *Star) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}
