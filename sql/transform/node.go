package transform

import (
	"github.com/corvusql/corvus/sql"
)

// TreeIdentity tracks whether a tree or node changed during a transform.
// No-op transforms return SameTree so callers never reconstruct untouched
// subtrees; fixed-point convergence checks rely on this signal.
type TreeIdentity bool

const (
	// SameTree is returned by rewrites that did not change the tree.
	SameTree TreeIdentity = true
	// NewTree is returned by rewrites that changed the tree.
	NewTree TreeIdentity = false
)

// NodeFunc is a function that given a node will return that node as is or
// transformed, a TreeIdentity to indicate whether the node was modified,
// and an error or nil.
type NodeFunc func(n sql.Node) (sql.Node, TreeIdentity, error)

// ExprFunc is a function that given an expression will return that
// expression as is or transformed, a TreeIdentity, and an error or nil.
type ExprFunc func(e sql.Expression) (sql.Expression, TreeIdentity, error)

// Context provides the parent node of the candidate node to a CtxFunc.
type Context struct {
	// Node is the currently visited node which will be transformed.
	Node sql.Node
	// Parent is the current parent of the transforming node.
	Parent sql.Node
	// ChildNum is the index of Node in Parent.Children().
	ChildNum int
}

// CtxFunc transforms a node given its parent context.
type CtxFunc func(Context) (sql.Node, TreeIdentity, error)

// ExprWithNodeFunc transforms an expression with the node that contains it.
type ExprWithNodeFunc func(n sql.Node, e sql.Expression) (sql.Expression, TreeIdentity, error)

// Node applies a transformation function to the given tree from the bottom
// up. Opaque nodes are not descended into.
func Node(node sql.Node, f NodeFunc) (sql.Node, TreeIdentity, error) {
	if o, ok := node.(sql.OpaqueNode); ok && o.Opaque() {
		return f(node)
	}
	return nodeHelper(node, f, false)
}

// NodeWithOpaque applies a transformation function to the given tree from
// the bottom up, including through opaque nodes.
func NodeWithOpaque(node sql.Node, f NodeFunc) (sql.Node, TreeIdentity, error) {
	return nodeHelper(node, f, true)
}

func nodeHelper(node sql.Node, f NodeFunc, throughOpaque bool) (sql.Node, TreeIdentity, error) {
	children := node.Children()
	if len(children) == 0 {
		return f(node)
	}

	var (
		newChildren []sql.Node
		err         error
	)

	for i := range children {
		c := children[i]
		if !throughOpaque {
			if o, ok := c.(sql.OpaqueNode); ok && o.Opaque() {
				cc, same, err := f(c)
				if err != nil {
					return nil, SameTree, err
				}
				if !same {
					if newChildren == nil {
						newChildren = make([]sql.Node, len(children))
						copy(newChildren, children)
					}
					newChildren[i] = cc
				}
				continue
			}
		}
		c, same, err := nodeHelper(c, f, throughOpaque)
		if err != nil {
			return nil, SameTree, err
		}
		if !same {
			if newChildren == nil {
				newChildren = make([]sql.Node, len(children))
				copy(newChildren, children)
			}
			newChildren[i] = c
		}
	}

	sameC := SameTree
	if len(newChildren) > 0 {
		sameC = NewTree
		node, err = node.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}

	node, sameN, err := f(node)
	if err != nil {
		return nil, SameTree, err
	}
	return node, sameC && sameN, nil
}

// NodeWithCtx transforms the plan tree from the bottom up, keeping track of
// the parent of the node under transformation. The optional selector prunes
// the children that are walked into.
func NodeWithCtx(n sql.Node, s func(Context) bool, f CtxFunc) (sql.Node, TreeIdentity, error) {
	return nodeWithCtxHelper(Context{n, nil, -1}, s, f)
}

func nodeWithCtxHelper(c Context, s func(Context) bool, f CtxFunc) (sql.Node, TreeIdentity, error) {
	node := c.Node
	children := node.Children()
	if len(children) == 0 {
		return f(c)
	}

	var (
		newChildren []sql.Node
		err         error
	)
	for i := range children {
		child := children[i]
		cc := Context{child, node, i}
		if s == nil || s(cc) {
			child, same, err := nodeWithCtxHelper(cc, s, f)
			if err != nil {
				return nil, SameTree, err
			}
			if !same {
				if newChildren == nil {
					newChildren = make([]sql.Node, len(children))
					copy(newChildren, children)
				}
				newChildren[i] = child
			}
		}
	}

	sameC := SameTree
	if len(newChildren) > 0 {
		sameC = NewTree
		node, err = node.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}

	node, sameN, err := f(Context{node, c.Parent, c.ChildNum})
	if err != nil {
		return nil, SameTree, err
	}
	return node, sameC && sameN, nil
}

// NodeExprs applies an expression transformation to every expression slot
// reachable from the plan tree: projections, join conditions, aggregate
// lists, sort orders, and so on, uniformly through sql.Expressioner.
func NodeExprs(node sql.Node, f ExprFunc) (sql.Node, TreeIdentity, error) {
	return NodeExprsWithNode(node, func(_ sql.Node, e sql.Expression) (sql.Expression, TreeIdentity, error) {
		return f(e)
	})
}

// NodeExprsWithNode is like NodeExprs, passing the node that contains each
// expression to the transformation function.
func NodeExprsWithNode(node sql.Node, f ExprWithNodeFunc) (sql.Node, TreeIdentity, error) {
	return Node(node, func(n sql.Node) (sql.Node, TreeIdentity, error) {
		return OneNodeExprsWithNode(n, f)
	})
}

// OneNodeExprsWithNode applies the expression transform to the expressions
// of a single node, without descending into the node's children.
func OneNodeExprsWithNode(n sql.Node, f ExprWithNodeFunc) (sql.Node, TreeIdentity, error) {
	ne, ok := n.(sql.Expressioner)
	if !ok {
		return n, SameTree, nil
	}

	exprs := ne.Expressions()
	if len(exprs) == 0 {
		return n, SameTree, nil
	}

	var newExprs []sql.Expression
	for i := range exprs {
		e := exprs[i]
		e, same, err := ExprWithNode(n, e, f)
		if err != nil {
			return nil, SameTree, err
		}
		if !same {
			if newExprs == nil {
				newExprs = make([]sql.Expression, len(exprs))
				copy(newExprs, exprs)
			}
			newExprs[i] = e
		}
	}

	if len(newExprs) == 0 {
		return n, SameTree, nil
	}
	n, err := ne.WithExpressions(newExprs...)
	if err != nil {
		return nil, SameTree, err
	}
	return n, NewTree, nil
}

// Inspect performs a pre-order traversal of the plan tree. It calls
// f(node) and, if f returns true, recurses into the node's children.
func Inspect(node sql.Node, f func(sql.Node) bool) bool {
	if !f(node) {
		return false
	}
	for _, child := range node.Children() {
		if !Inspect(child, f) {
			return false
		}
	}
	return true
}

// InspectUp performs a post-order traversal of the plan tree, breaking when
// f returns true. It returns whether traversal was interrupted.
func InspectUp(node sql.Node, f func(sql.Node) bool) bool {
	stop := errStop
	_, _, err := Node(node, func(n sql.Node) (sql.Node, TreeIdentity, error) {
		if f(n) {
			return nil, SameTree, stop
		}
		return n, SameTree, nil
	})
	return err == stop
}
