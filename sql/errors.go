package sql

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrInvalidType is thrown when there is an unexpected type at some part
	// of the analysis tree.
	ErrInvalidType = errors.NewKind("invalid type: %s")

	// ErrDatabaseNotFound is returned when a database is not found in the
	// catalog.
	ErrDatabaseNotFound = errors.NewKind("database not found: %s")

	// ErrTableNotFound is returned when a relation name cannot be bound in
	// the current scope.
	ErrTableNotFound = errors.NewKind("table not found: %s")

	// ErrTableColumnNotFound is thrown when a column is qualified with a
	// table that does not have it.
	ErrTableColumnNotFound = errors.NewKind("table %q does not have column %q")

	// ErrColumnNotFound is returned when the column does not exist in any
	// relation in scope.
	ErrColumnNotFound = errors.NewKind("column %q could not be found in any table in scope%s")

	// ErrAmbiguousColumnName is returned when a column reference is present
	// in more than one visible relation and carries no qualifier.
	ErrAmbiguousColumnName = errors.NewKind("ambiguous column name %q, it's present in all these tables: %v")

	// ErrFieldNotFound is returned when a struct field drill-down names a
	// field the struct type does not have.
	ErrFieldNotFound = errors.NewKind("struct %q has no field named %q")

	// ErrUnexpectedRowLength is thrown when a row has a different number of
	// values than its schema.
	ErrUnexpectedRowLength = errors.NewKind("expected %d values, got %d")

	// ErrSchemaTypeMismatch is returned when a value does not conform to
	// its column type.
	ErrSchemaTypeMismatch = errors.NewKind("value of type %s does not conform to column %d type")

	// ErrInvalidChildrenNumber is returned when the WithChildren method of a
	// node or expression is called with the wrong number of children. It is
	// indicative of a bug in a rule.
	ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")

	// ErrInvalidChildType is returned when the WithChildren method of a node
	// or expression is called with an invalid child type. Also a bug guard.
	ErrInvalidChildType = errors.NewKind("%T: invalid child type, got %T, expected %T")

	// ErrFunctionNotFound is thrown when a function is not found.
	ErrFunctionNotFound = errors.NewKind("function: '%s' not found%s")

	// ErrInvalidArgumentNumber is returned when the number of arguments to
	// call a function is different from the function arity.
	ErrInvalidArgumentNumber = errors.NewKind("function '%s' expected %v arguments, %v received")

	// ErrMisusedAlias is returned when a projection alias is referenced
	// inside the same projection it is defined in.
	ErrMisusedAlias = errors.NewKind("column %q does not exist in scope, but there is an alias defined in" +
		" this projection with that name. Aliases cannot be used in the same projection they're defined in")

	// ErrExpectedTableFoundView is returned when a name bound as a plain
	// table turned out to be a view in the catalog.
	ErrExpectedTableFoundView = errors.NewKind("expected a table, but %q is a view; reference it as a view instead")

	// ErrMaxViewDepth is returned when nested view resolution exceeds the
	// configured maximum depth. Raise MaxViewDepth if the nesting is
	// legitimate.
	ErrMaxViewDepth = errors.NewKind("exceeded max nested view depth (%d) resolving view %q; raise the max view depth configuration if the nesting is intended")

	// ErrUnorderableType is returned when a type without a total order is
	// used as a sort or range key.
	ErrUnorderableType = errors.NewKind("type %s is not orderable and cannot be used as a sort key")

	// ErrUnresolvedExpression is returned when an expression that is still
	// unresolved is evaluated. Indicates an analyzer bug or a skipped
	// resolution batch.
	ErrUnresolvedExpression = errors.NewKind("expression %q is not resolved and cannot be evaluated")

	// ErrOrdinalOutOfRange is returned when a 1-based ordinal reference
	// does not fit the select list.
	ErrOrdinalOutOfRange = errors.NewKind("ordinal reference %d is out of range of the select list (%d columns)")
)
