package transform

import (
	"github.com/corvusql/corvus/sql"
)

// Visitor visits nodes in the plan.
type Visitor interface {
	// Visit method is invoked for each node encountered by Walk. If the
	// result Visitor is not nil, Walk visits each of the children of the
	// node with that visitor, followed by a call of Visit(nil) to the
	// returned visitor.
	Visit(node sql.Node) Visitor
}

// Walk traverses the plan tree in depth-first order. It starts by calling
// v.Visit(node); node must not be nil. If the visitor returned by
// v.Visit(node) is not nil, Walk is invoked recursively with the returned
// visitor for each child of the node, followed by a call of v.Visit(nil)
// to the returned visitor.
func Walk(v Visitor, node sql.Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	for _, child := range node.Children() {
		Walk(v, child)
	}

	v.Visit(nil)
}

type nodeInspector func(sql.Node) bool

func (f nodeInspector) Visit(node sql.Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// WalkExpressions traverses the plan and calls sql.Walk on any expression
// it finds.
func WalkExpressions(v sql.Visitor, node sql.Node) {
	Inspect(node, func(node sql.Node) bool {
		if n, ok := node.(sql.Expressioner); ok {
			for _, e := range n.Expressions() {
				sql.Walk(v, e)
			}
		}
		return true
	})
}

// InspectExpressions traverses the plan and calls f on every expression it
// finds, descending into each expression while f returns true.
func InspectExpressions(node sql.Node, f func(sql.Expression) bool) {
	Inspect(node, func(node sql.Node) bool {
		if n, ok := node.(sql.Expressioner); ok {
			for _, e := range n.Expressions() {
				sql.Inspect(e, f)
			}
		}
		return true
	})
}

// InspectExpressionsWithNode traverses the plan and calls f on every
// expression it finds along with the node containing it.
func InspectExpressionsWithNode(node sql.Node, f func(sql.Node, sql.Expression) bool) {
	Inspect(node, func(n sql.Node) bool {
		if en, ok := n.(sql.Expressioner); ok {
			for _, e := range en.Expressions() {
				sql.WalkWithNode(exprWithNodeInspector(f), n, e)
			}
		}
		return true
	})
}

type exprWithNodeInspector func(sql.Node, sql.Expression) bool

func (f exprWithNodeInspector) Visit(n sql.Node, e sql.Expression) sql.NodeVisitor {
	if f(n, e) {
		return f
	}
	return nil
}
