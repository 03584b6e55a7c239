package transform

import (
	"errors"

	"github.com/corvusql/corvus/sql"
)

var errStop = errors.New("stop")

// Expr applies a transformation function to the given expression tree from
// the bottom up. Each callback returns a TreeIdentity that is aggregated
// into a final output indicating whether the expression tree was changed.
func Expr(e sql.Expression, f ExprFunc) (sql.Expression, TreeIdentity, error) {
	children := e.Children()
	if len(children) == 0 {
		return f(e)
	}

	var (
		newChildren []sql.Expression
		err         error
	)

	for i := range children {
		c := children[i]
		c, same, err := Expr(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		if !same {
			if newChildren == nil {
				newChildren = make([]sql.Expression, len(children))
				copy(newChildren, children)
			}
			newChildren[i] = c
		}
	}

	sameC := SameTree
	if len(newChildren) > 0 {
		sameC = NewTree
		e, err = e.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}

	e, sameN, err := f(e)
	if err != nil {
		return nil, SameTree, err
	}
	return e, sameC && sameN, nil
}

// ExprWithNode applies a transformation function to the given expression
// from the bottom up, passing along the node that contains it.
func ExprWithNode(n sql.Node, e sql.Expression, f ExprWithNodeFunc) (sql.Expression, TreeIdentity, error) {
	children := e.Children()
	if len(children) == 0 {
		return f(n, e)
	}

	var (
		newChildren []sql.Expression
		err         error
	)

	for i := range children {
		c := children[i]
		c, same, err := ExprWithNode(n, c, f)
		if err != nil {
			return nil, SameTree, err
		}
		if !same {
			if newChildren == nil {
				newChildren = make([]sql.Expression, len(children))
				copy(newChildren, children)
			}
			newChildren[i] = c
		}
	}

	sameC := SameTree
	if len(newChildren) > 0 {
		sameC = NewTree
		e, err = e.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}

	e, sameN, err := f(n, e)
	if err != nil {
		return nil, SameTree, err
	}
	return e, sameC && sameN, nil
}

// InspectExpr traverses the given expression tree from the bottom up,
// breaking if stop = true. Returns a bool indicating whether traversal was
// interrupted.
func InspectExpr(e sql.Expression, f func(sql.Expression) bool) bool {
	_, _, err := Expr(e, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		if f(e) {
			return nil, SameTree, errStop
		}
		return e, SameTree, nil
	})
	return errors.Is(err, errStop)
}

// Clone duplicates an existing sql.Expression, returning new nodes with the
// same structure and internal values.
func Clone(expr sql.Expression) (sql.Expression, error) {
	expr, _, err := Expr(expr, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		return e, NewTree, nil
	})
	return expr, err
}

// ExpressionToColumn converts the expression to the form that should be
// used in a Schema. Expressions that have Name() and Table() methods will
// use these; otherwise, String() and "" are used, respectively. The type
// and nullability are taken from the expression directly.
func ExpressionToColumn(e sql.Expression) *sql.Column {
	var name string
	if n, ok := e.(sql.Nameable); ok {
		name = n.Name()
	} else {
		name = e.String()
	}

	var table string
	if t, ok := e.(sql.Tableable); ok {
		table = t.Table()
	}

	return &sql.Column{
		Name:     name,
		Type:     e.Type(),
		Nullable: e.IsNullable(),
		Source:   table,
	}
}

// SchemaWithIds builds the schema of a list of projected expressions,
// preserving the column identity carried by resolved references. Anonymous
// expressions keep the zero id until the analyzer names them.
func SchemaWithIds(exprs []sql.Expression) sql.Schema {
	s := make(sql.Schema, len(exprs))
	for i, e := range exprs {
		col := ExpressionToColumn(e)
		if ider, ok := e.(sql.IdExpression); ok {
			col.Id = ider.Id()
		}
		s[i] = col
	}
	return s
}
