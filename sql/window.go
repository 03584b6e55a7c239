package sql

import (
	"fmt"
	"strings"
)

// WindowFrameUnit is the unit a window frame is expressed in.
type WindowFrameUnit byte

const (
	// RowsFrame frames are counted in physical rows.
	RowsFrame WindowFrameUnit = iota
	// RangeFrame frames are bounded by peer rows of the order expression.
	RangeFrame
)

func (u WindowFrameUnit) String() string {
	if u == RowsFrame {
		return "ROWS"
	}
	return "RANGE"
}

// WindowFrameBound is one endpoint of a window frame.
type WindowFrameBound byte

const (
	// UnboundedPreceding starts the frame at the partition start.
	UnboundedPreceding WindowFrameBound = iota
	// CurrentRow bounds the frame at the current row.
	CurrentRow
	// UnboundedFollowing ends the frame at the partition end.
	UnboundedFollowing
)

func (b WindowFrameBound) String() string {
	switch b {
	case UnboundedPreceding:
		return "UNBOUNDED PRECEDING"
	case CurrentRow:
		return "CURRENT ROW"
	default:
		return "UNBOUNDED FOLLOWING"
	}
}

// WindowFrame describes the frame of a window specification.
type WindowFrame struct {
	Unit  WindowFrameUnit
	Start WindowFrameBound
	End   WindowFrameBound
}

func (f *WindowFrame) String() string {
	return fmt.Sprintf("%s BETWEEN %s AND %s", f.Unit, f.Start, f.End)
}

// Equals reports whether two frames are the same frame. Nil frames are only
// equal to nil frames.
func (f *WindowFrame) Equals(other *WindowFrame) bool {
	if f == nil || other == nil {
		return f == other
	}
	return *f == *other
}

// WindowDef is a window specification: partitioning, ordering and frame.
type WindowDef struct {
	PartitionBy []Expression
	OrderBy     SortFields
	Frame       *WindowFrame
}

// NewWindowDef creates a new window definition.
func NewWindowDef(partitionBy []Expression, orderBy SortFields, frame *WindowFrame) *WindowDef {
	return &WindowDef{PartitionBy: partitionBy, OrderBy: orderBy, Frame: frame}
}

// DefaultFrame returns the frame a window without an explicit one gets: a
// RANGE frame from the partition start to the current row when an order is
// given, else a ROWS frame spanning the entire partition.
func DefaultFrame(ordered bool) *WindowFrame {
	if ordered {
		return &WindowFrame{Unit: RangeFrame, Start: UnboundedPreceding, End: CurrentRow}
	}
	return &WindowFrame{Unit: RowsFrame, Start: UnboundedPreceding, End: UnboundedFollowing}
}

// Resolved reports whether every expression of the definition is resolved.
func (d *WindowDef) Resolved() bool {
	if d == nil {
		return true
	}
	if !ExpressionsResolved(d.PartitionBy...) {
		return false
	}
	return ExpressionsResolved(d.OrderBy.ToExpressions()...)
}

// Expressions returns all the expressions of the definition: the partition
// expressions followed by the order expressions.
func (d *WindowDef) Expressions() []Expression {
	if d == nil {
		return nil
	}
	return append(append([]Expression{}, d.PartitionBy...), d.OrderBy.ToExpressions()...)
}

// FromExpressions returns a copy of the definition with its expressions
// replaced, in the same order Expressions returns them.
func (d *WindowDef) FromExpressions(exprs []Expression) (*WindowDef, error) {
	if d == nil {
		if len(exprs) > 0 {
			return nil, ErrInvalidChildrenNumber.New(d, len(exprs), 0)
		}
		return nil, nil
	}
	if len(exprs) != len(d.PartitionBy)+len(d.OrderBy) {
		return nil, ErrInvalidChildrenNumber.New(d, len(exprs), len(d.PartitionBy)+len(d.OrderBy))
	}
	nd := *d
	nd.PartitionBy = exprs[:len(d.PartitionBy)]
	nd.OrderBy = d.OrderBy.FromExpressions(exprs[len(d.PartitionBy):]...)
	return &nd, nil
}

// PartitionId identifies the (partition by, order by, frame) specification
// for grouping compatible window functions into one window operator. Two
// definitions with equal PartitionId can be evaluated in a single pass.
func (d *WindowDef) PartitionId() string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	for _, e := range d.PartitionBy {
		sb.WriteString(e.String())
		sb.WriteByte(',')
	}
	sb.WriteByte('|')
	for _, f := range d.OrderBy {
		sb.WriteString(f.String())
		sb.WriteByte(',')
	}
	sb.WriteByte('|')
	if d.Frame != nil {
		sb.WriteString(d.Frame.String())
	}
	return sb.String()
}

func (d *WindowDef) String() string {
	var sb strings.Builder
	sb.WriteString("over (")
	if len(d.PartitionBy) > 0 {
		sb.WriteString(" partition by ")
		var parts = make([]string, len(d.PartitionBy))
		for i, p := range d.PartitionBy {
			parts[i] = p.String()
		}
		sb.WriteString(strings.Join(parts, ", "))
	}
	if len(d.OrderBy) > 0 {
		sb.WriteString(" order by ")
		var parts = make([]string, len(d.OrderBy))
		for i, f := range d.OrderBy {
			parts[i] = f.String()
		}
		sb.WriteString(strings.Join(parts, ", "))
	}
	if d.Frame != nil {
		sb.WriteString(" " + d.Frame.String())
	}
	sb.WriteString(")")
	return sb.String()
}
