package sql

import "fmt"

// SortOrder represents the order of the sort (ascending or descending).
type SortOrder byte

const (
	// Ascending order.
	Ascending SortOrder = 1
	// Descending order.
	Descending SortOrder = 2
)

func (s SortOrder) String() string {
	switch s {
	case Ascending:
		return "ASC"
	case Descending:
		return "DESC"
	default:
		return "invalid SortOrder"
	}
}

// NullOrdering represents how to order rows with null values.
type NullOrdering byte

const (
	// NullsFirst puts the null values before any other values.
	NullsFirst NullOrdering = iota
	// NullsLast puts the null values after all other values.
	NullsLast
)

// SortField is a field by which a query is sorted.
type SortField struct {
	// Column to order by.
	Column Expression
	// Order type of the sort.
	Order SortOrder
	// NullOrdering of the sort.
	NullOrdering NullOrdering
}

func (s SortField) String() string {
	return fmt.Sprintf("%s %s", s.Column, s.Order)
}

// SortFields is a list of SortField.
type SortFields []SortField

// ToExpressions returns the list of sorted-by expressions, in order.
func (sf SortFields) ToExpressions() []Expression {
	es := make([]Expression, len(sf))
	for i, f := range sf {
		es[i] = f.Column
	}
	return es
}

// FromExpressions returns a copy of the sort fields with the columns
// replaced by the given expressions, in order.
func (sf SortFields) FromExpressions(exprs ...Expression) SortFields {
	fields := make(SortFields, len(sf))
	if len(exprs) != len(sf) {
		return nil
	}
	for i, expr := range exprs {
		fields[i] = sf[i]
		fields[i].Column = expr
	}
	return fields
}
