package plan

import (
	"github.com/corvusql/corvus/sql"
)

// JoinType is the kind of a join.
type JoinType byte

const (
	// JoinInner returns rows with a match on both sides.
	JoinInner JoinType = iota
	// JoinLeft keeps every left row, null-extending the right side.
	JoinLeft
	// JoinRight keeps every right row, null-extending the left side.
	JoinRight
	// JoinFull keeps every row of both sides.
	JoinFull
	// JoinCross is the cartesian product; it has no condition.
	JoinCross
	// JoinSemi returns left rows with at least one right match; only left
	// columns are output.
	JoinSemi
	// JoinAnti returns left rows with no right match; only left columns
	// are output.
	JoinAnti
)

func (t JoinType) String() string {
	switch t {
	case JoinInner:
		return "InnerJoin"
	case JoinLeft:
		return "LeftJoin"
	case JoinRight:
		return "RightJoin"
	case JoinFull:
		return "FullJoin"
	case JoinCross:
		return "CrossJoin"
	case JoinSemi:
		return "SemiJoin"
	case JoinAnti:
		return "AntiJoin"
	}
	return "INVALID"
}

// IsOuter reports whether the join null-extends any side.
func (t JoinType) IsOuter() bool {
	return t == JoinLeft || t == JoinRight || t == JoinFull
}

// IsLeftOnly reports whether the join outputs only left-side columns.
func (t JoinType) IsLeftOnly() bool {
	return t == JoinSemi || t == JoinAnti
}

// Join combines its two children on a condition. Cross joins have a nil
// condition.
type Join struct {
	BinaryNode
	Op   JoinType
	Cond sql.Expression
}

var _ sql.Node = (*Join)(nil)
var _ sql.Expressioner = (*Join)(nil)

// NewJoin creates a join of the given type over a condition.
func NewJoin(left, right sql.Node, op JoinType, cond sql.Expression) *Join {
	return &Join{BinaryNode{Left: left, Right: right}, op, cond}
}

// NewInnerJoin creates a new inner join node.
func NewInnerJoin(left, right sql.Node, cond sql.Expression) *Join {
	return NewJoin(left, right, JoinInner, cond)
}

// NewLeftJoin creates a new left outer join node.
func NewLeftJoin(left, right sql.Node, cond sql.Expression) *Join {
	return NewJoin(left, right, JoinLeft, cond)
}

// NewCrossJoin creates a new cross join node.
func NewCrossJoin(left, right sql.Node) *Join {
	return NewJoin(left, right, JoinCross, nil)
}

// Resolved implements the Resolvable interface.
func (j *Join) Resolved() bool {
	if !j.BinaryNode.Resolved() {
		return false
	}
	return j.Cond == nil || j.Cond.Resolved()
}

// Schema implements the Node interface. Columns of a null-extended side
// become nullable; semi and anti joins expose only the left side.
func (j *Join) Schema() sql.Schema {
	if j.Op.IsLeftOnly() {
		return j.Left.Schema()
	}

	left := j.Left.Schema()
	right := j.Right.Schema()

	if j.Op == JoinRight || j.Op == JoinFull {
		left = nullableSchema(left)
	}
	if j.Op == JoinLeft || j.Op == JoinFull {
		right = nullableSchema(right)
	}

	return append(left.Copy(), right.Copy()...)
}

func nullableSchema(s sql.Schema) sql.Schema {
	result := s.Copy()
	for _, col := range result {
		col.Nullable = true
	}
	return result
}

// WithChildren implements the Node interface.
func (j *Join) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(children), 2)
	}
	return NewJoin(children[0], children[1], j.Op, j.Cond), nil
}

// Expressions implements the Expressioner interface.
func (j *Join) Expressions() []sql.Expression {
	if j.Cond == nil {
		return nil
	}
	return []sql.Expression{j.Cond}
}

// WithExpressions implements the Expressioner interface.
func (j *Join) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	expected := len(j.Expressions())
	if len(exprs) != expected {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(exprs), expected)
	}
	if expected == 0 {
		return j, nil
	}
	return NewJoin(j.Left, j.Right, j.Op, exprs[0]), nil
}

func (j *Join) String() string {
	pr := sql.NewTreePrinter()
	if j.Cond != nil {
		pr.WriteNode("%s(%s)", j.Op, j.Cond)
	} else {
		pr.WriteNode("%s", j.Op)
	}
	pr.WriteChildren(j.Left.String(), j.Right.String())
	return pr.String()
}
