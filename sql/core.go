package sql

import (
	"fmt"
)

// Nameable is something that has a name.
type Nameable interface {
	// Name returns the name.
	Name() string
}

// Tableable is something that belongs to a table.
type Tableable interface {
	// Table returns the table name.
	Table() string
}

// Resolvable is something that can be resolved or not. A tree is resolved
// only when no unresolved placeholder remains anywhere within it.
type Resolvable interface {
	// Resolved returns whether the node is resolved.
	Resolved() bool
}

// Expression is a node in an immutable scalar expression tree.
type Expression interface {
	Resolvable
	fmt.Stringer
	// Type returns the expression type.
	Type() Type
	// IsNullable returns whether the expression can be null.
	IsNullable() bool
	// Eval evaluates the expression against the given row.
	Eval(ctx *Context, row Row) (interface{}, error)
	// Children returns the children expressions of this expression.
	Children() []Expression
	// WithChildren returns a copy of the expression with children replaced.
	// It must not modify the receiver in place; other trees may share the
	// same instance.
	WithChildren(children ...Expression) (Expression, error)
}

// Node is a node in an immutable relational plan tree.
type Node interface {
	Resolvable
	fmt.Stringer
	// Schema of the node, the ordered set of output columns.
	Schema() Schema
	// Children nodes.
	Children() []Node
	// WithChildren returns a copy of the node with children replaced.
	WithChildren(children ...Node) (Node, error)
}

// Expressioner is a node that contains expressions. It exposes every
// expression slot of the operator (projections, conditions, sort orders)
// uniformly, so generic rewrites reach all of them.
type Expressioner interface {
	// Expressions returns the list of expressions contained in the node.
	Expressions() []Expression
	// WithExpressions returns a copy of the node with expressions replaced.
	WithExpressions(...Expression) (Node, error)
}

// OpaqueNode is a node that is not transformed by default transform
// routines. The analyzer decides when its subtree is re-analyzed.
type OpaqueNode interface {
	Node
	// Opaque reports whether the node is opaque right now.
	Opaque() bool
}

// Aggregation implements an aggregate function, accumulating one value per
// buffer over many input rows.
type Aggregation interface {
	Expression
	// NewBuffer returns a fresh buffer to accumulate rows into.
	NewBuffer() Row
	// Update accumulates the given row into the buffer.
	Update(ctx *Context, buffer, row Row) error
	// Merge merges a partial buffer into buffer.
	Merge(ctx *Context, buffer, partial Row) error
}

// WindowAggregation is an expression evaluated over a window of rows
// described by a WindowDef.
type WindowAggregation interface {
	Expression
	// Window returns the window specification. It may be nil until the
	// analyzer applies the default frame.
	Window() *WindowDef
	// WithWindow returns a copy of this expression with the window replaced.
	WithWindow(def *WindowDef) WindowAggregation
}

// IdExpression is implemented by expressions that carry a column identity:
// resolved field references and aliases the analyzer has named.
type IdExpression interface {
	Expression
	// Id returns the column identity, zero if not assigned yet.
	Id() ColumnId
}

// NonDeterministicExpression may return different results for the same
// input. Such expressions are never folded and never eligible for
// common-subexpression sharing.
type NonDeterministicExpression interface {
	Expression
	// IsNonDeterministic returns whether this expression is non-deterministic.
	IsNonDeterministic() bool
}

// Table represents a relation stored in a database of the catalog.
type Table interface {
	Nameable
	// Schema of the table.
	Schema() Schema
}

// StreamingTable is a table read as an unbounded stream. Rewrites that
// erase operators over statically empty inputs must not fire over a
// streaming source: stateful operators still run per micro-batch.
type StreamingTable interface {
	Table
	// IsStreaming returns whether the table is a streaming source.
	IsStreaming() bool
}

// ExpressionsResolved reports whether every given expression is resolved.
func ExpressionsResolved(exprs ...Expression) bool {
	for _, e := range exprs {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

// NodesResolved reports whether every given node is resolved.
func NodesResolved(nodes ...Node) bool {
	for _, n := range nodes {
		if !n.Resolved() {
			return false
		}
	}
	return true
}
