package plan

import (
	"github.com/corvusql/corvus/sql"
)

// Union is the set union of the rows of two children with compatible
// schemas. Duplicates are kept.
type Union struct {
	BinaryNode
}

var _ sql.Node = (*Union)(nil)

// NewUnion creates a new Union node with the given children.
func NewUnion(left, right sql.Node) *Union {
	return &Union{BinaryNode{Left: left, Right: right}}
}

// Schema implements the Node interface. The output schema is the left
// child's; a column is nullable when either side's is.
func (u *Union) Schema() sql.Schema {
	ls := u.Left.Schema()
	rs := u.Right.Schema()
	ret := make(sql.Schema, len(ls))
	for i, c := range ls {
		newCol := *c
		if i < len(rs) {
			newCol.Nullable = c.Nullable || rs[i].Nullable
		}
		ret[i] = &newCol
	}
	return ret
}

// WithChildren implements the Node interface.
func (u *Union) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 2)
	}
	return NewUnion(children[0], children[1]), nil
}

func (u *Union) String() string {
	pr := sql.NewTreePrinter()
	pr.WriteNode("Union")
	pr.WriteChildren(u.Left.String(), u.Right.String())
	return pr.String()
}
