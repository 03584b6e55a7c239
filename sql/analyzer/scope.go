package analyzer

import (
	"github.com/corvusql/corvus/sql"
)

// Scope of the analysis being performed: the node from every enclosing
// query of the node being analyzed, innermost first. A nil or empty Scope
// is a top-level query. Columns that fail to resolve against a subquery's
// own relations are retried against the scope, innermost first.
type Scope struct {
	nodes []sql.Node
}

// NewScope creates a Scope with a single enclosing node.
func NewScope(n sql.Node) *Scope {
	return &Scope{nodes: []sql.Node{n}}
}

// IsEmpty reports whether the scope has no enclosing queries.
func (s *Scope) IsEmpty() bool {
	return s == nil || len(s.nodes) == 0
}

// NewScopeFromSubqueryExpression returns a new scope with the given node
// added as the innermost enclosing query.
func (s *Scope) NewScopeFromSubqueryExpression(n sql.Node) *Scope {
	var outer []sql.Node
	if s != nil {
		outer = s.nodes
	}
	return &Scope{nodes: append([]sql.Node{n}, outer...)}
}

// InnerToOuter returns the enclosing query nodes, innermost first.
func (s *Scope) InnerToOuter() []sql.Node {
	if s == nil {
		return nil
	}
	return s.nodes
}

// Schema returns the concatenation of the schemas of every enclosing
// query, innermost first.
func (s *Scope) Schema() sql.Schema {
	if s == nil {
		return nil
	}
	var schema sql.Schema
	for _, n := range s.nodes {
		if n.Resolved() {
			schema = append(schema, n.Schema()...)
		}
	}
	return schema
}
