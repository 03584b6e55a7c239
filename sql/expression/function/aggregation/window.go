package aggregation

import (
	"fmt"

	"github.com/corvusql/corvus/sql"
)

// RowNumber assigns each row of the partition a sequential number in frame
// order, starting at 1.
type RowNumber struct {
	window *sql.WindowDef
}

var _ sql.WindowAggregation = (*RowNumber)(nil)

// NewRowNumber creates a new RowNumber function.
func NewRowNumber() sql.Expression {
	return &RowNumber{}
}

// Window implements the WindowAggregation interface.
func (r *RowNumber) Window() *sql.WindowDef { return r.window }

// WithWindow implements the WindowAggregation interface.
func (r *RowNumber) WithWindow(def *sql.WindowDef) sql.WindowAggregation {
	n := *r
	n.window = def
	return &n
}

// Resolved implements the Expression interface.
func (r *RowNumber) Resolved() bool {
	return r.window.Resolved()
}

// IsNullable implements the Expression interface.
func (*RowNumber) IsNullable() bool { return false }

// Type implements the Expression interface.
func (*RowNumber) Type() sql.Type { return sql.Int64 }

// Children implements the Expression interface.
func (r *RowNumber) Children() []sql.Expression {
	return r.window.Expressions()
}

// WithChildren implements the Expression interface.
func (r *RowNumber) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	window, err := r.window.FromExpressions(children)
	if err != nil {
		return nil, err
	}
	return r.WithWindow(window), nil
}

// Eval implements the Expression interface. Window functions are computed
// by the window operator, not by direct evaluation.
func (r *RowNumber) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrUnresolvedExpression.New(r.String())
}

func (r *RowNumber) String() string {
	if r.window == nil {
		return "row_number()"
	}
	return fmt.Sprintf("row_number() %s", r.window)
}

// Rank assigns each row the 1-based rank of its order key within the
// partition, with gaps after ties.
type Rank struct {
	window *sql.WindowDef
}

var _ sql.WindowAggregation = (*Rank)(nil)

// NewRank creates a new Rank function.
func NewRank() sql.Expression {
	return &Rank{}
}

// Window implements the WindowAggregation interface.
func (r *Rank) Window() *sql.WindowDef { return r.window }

// WithWindow implements the WindowAggregation interface.
func (r *Rank) WithWindow(def *sql.WindowDef) sql.WindowAggregation {
	n := *r
	n.window = def
	return &n
}

// Resolved implements the Expression interface.
func (r *Rank) Resolved() bool {
	return r.window.Resolved()
}

// IsNullable implements the Expression interface.
func (*Rank) IsNullable() bool { return false }

// Type implements the Expression interface.
func (*Rank) Type() sql.Type { return sql.Int64 }

// Children implements the Expression interface.
func (r *Rank) Children() []sql.Expression {
	return r.window.Expressions()
}

// WithChildren implements the Expression interface.
func (r *Rank) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	window, err := r.window.FromExpressions(children)
	if err != nil {
		return nil, err
	}
	return r.WithWindow(window), nil
}

// Eval implements the Expression interface.
func (r *Rank) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrUnresolvedExpression.New(r.String())
}

func (r *Rank) String() string {
	if r.window == nil {
		return "rank()"
	}
	return fmt.Sprintf("rank() %s", r.window)
}

// WindowedFunction runs an ordinary aggregate as a window function: the
// aggregate is evaluated over each row's frame instead of a whole group.
type WindowedFunction struct {
	Aggregate sql.Aggregation
	window    *sql.WindowDef
}

var _ sql.WindowAggregation = (*WindowedFunction)(nil)

// NewWindowedFunction wraps an aggregate with a window specification.
func NewWindowedFunction(agg sql.Aggregation, def *sql.WindowDef) *WindowedFunction {
	return &WindowedFunction{Aggregate: agg, window: def}
}

// Window implements the WindowAggregation interface.
func (w *WindowedFunction) Window() *sql.WindowDef { return w.window }

// WithWindow implements the WindowAggregation interface.
func (w *WindowedFunction) WithWindow(def *sql.WindowDef) sql.WindowAggregation {
	n := *w
	n.window = def
	return &n
}

// Resolved implements the Expression interface.
func (w *WindowedFunction) Resolved() bool {
	return w.Aggregate.Resolved() && w.window.Resolved()
}

// IsNullable implements the Expression interface.
func (w *WindowedFunction) IsNullable() bool { return w.Aggregate.IsNullable() }

// Type implements the Expression interface.
func (w *WindowedFunction) Type() sql.Type { return w.Aggregate.Type() }

// Children implements the Expression interface.
func (w *WindowedFunction) Children() []sql.Expression {
	return append([]sql.Expression{w.Aggregate}, w.window.Expressions()...)
}

// WithChildren implements the Expression interface.
func (w *WindowedFunction) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	expected := 1 + len(w.window.Expressions())
	if len(children) != expected {
		return nil, sql.ErrInvalidChildrenNumber.New(w, len(children), expected)
	}

	agg, ok := children[0].(sql.Aggregation)
	if !ok {
		return nil, sql.ErrInvalidChildType.New(w, children[0], (sql.Aggregation)(nil))
	}

	window, err := w.window.FromExpressions(children[1:])
	if err != nil {
		return nil, err
	}
	return NewWindowedFunction(agg, window), nil
}

// Eval implements the Expression interface.
func (w *WindowedFunction) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrUnresolvedExpression.New(w.String())
}

func (w *WindowedFunction) String() string {
	if w.window == nil {
		return w.Aggregate.String()
	}
	return fmt.Sprintf("%s %s", w.Aggregate, w.window)
}
