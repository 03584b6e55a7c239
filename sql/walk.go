package sql

// Visitor visits expressions in an expression tree.
type Visitor interface {
	// Visit method is invoked for each expression encountered by Walk. If
	// the result Visitor is not nil, Walk visits each of the children of
	// the expression with that visitor, followed by a call of Visit(nil)
	// to the returned visitor.
	Visit(expr Expression) Visitor
}

// Walk traverses the expression tree in depth-first order. It starts by
// calling v.Visit(expr); expr must not be nil. If the visitor returned by
// v.Visit(expr) is not nil, Walk is invoked recursively with the returned
// visitor for each children of the expr, followed by a call of v.Visit(nil)
// to the returned visitor.
func Walk(v Visitor, expr Expression) {
	if v = v.Visit(expr); v == nil {
		return
	}

	for _, child := range expr.Children() {
		Walk(v, child)
	}

	v.Visit(nil)
}

type inspector func(Expression) bool

func (f inspector) Visit(expr Expression) Visitor {
	if f(expr) {
		return f
	}
	return nil
}

// Inspect traverses the expression in depth-first order: It starts by
// calling f(expr); expr must not be nil. If f returns true, Inspect invokes
// f recursively for each of the children of expr, followed by a call of
// f(nil).
func Inspect(expr Expression, f func(Expression) bool) {
	Walk(inspector(f), expr)
}

// NodeVisitor visits expressions in an expression tree, while keeping track
// of the plan node that contains them.
type NodeVisitor interface {
	// Visit method is invoked for each expression encountered by WalkWithNode.
	// If the result Visitor is not nil, WalkWithNode visits each of the
	// children of the expression with that visitor, followed by a call of
	// Visit(nil, nil) to the returned visitor.
	Visit(node Node, expression Expression) NodeVisitor
}

// WalkWithNode traverses the expression tree in depth-first order with the
// node that contains the expressions.
func WalkWithNode(v NodeVisitor, n Node, expr Expression) {
	if v = v.Visit(n, expr); v == nil {
		return
	}

	for _, child := range expr.Children() {
		WalkWithNode(v, n, child)
	}

	v.Visit(nil, nil)
}
