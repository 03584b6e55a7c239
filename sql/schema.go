package sql

import "strings"

// ColumnId is the globally unique identity of an output column. It is
// assigned once, when a relation occurrence or a named expression becomes
// part of an output schema. The id, not the column name, decides whether
// two references mean the same column. Zero means unassigned.
type ColumnId uint64

// Column is the definition of a column in a schema.
type Column struct {
	// Name of the column.
	Name string
	// Type of the column.
	Type Type
	// Source is the name of the relation or alias the column comes from.
	Source string
	// Nullable reports whether the column can contain NULL.
	Nullable bool
	// Id is the unique identity of this column. Two occurrences of the
	// same table in one query carry distinct ids for the same column.
	Id ColumnId
}

// Check ensures the value is correct for this column.
func (c *Column) Check(v interface{}) bool {
	if v == nil {
		return c.Nullable
	}
	_, err := c.Type.Convert(v)
	return err == nil
}

// Equals checks whether two columns describe the same output: name, source,
// nullability and type must match. Ids are intentionally not compared; use
// Id equality directly when identity matters.
func (c *Column) Equals(c2 *Column) bool {
	return c.Name == c2.Name &&
		c.Source == c2.Source &&
		c.Nullable == c2.Nullable &&
		TypesEqual(c.Type, c2.Type)
}

// WithId returns a copy of the column with the given id.
func (c *Column) WithId(id ColumnId) *Column {
	c2 := *c
	c2.Id = id
	return &c2
}

// Schema is the definition of a relation's output, an ordered list of
// columns.
type Schema []*Column

// CheckRow checks the row conforms to the schema.
func (s Schema) CheckRow(row Row) error {
	expected := len(s)
	got := len(row)
	if expected != got {
		return ErrUnexpectedRowLength.New(expected, got)
	}

	for idx, f := range s {
		v := row[idx]
		if f.Check(v) {
			continue
		}
		typ := Null.String()
		if v != nil {
			typ = f.Type.String()
		}
		return ErrSchemaTypeMismatch.New(typ, idx)
	}

	return nil
}

// Contains reports whether the schema contains a column with the given name
// and source.
func (s Schema) Contains(column string, source string) bool {
	return s.IndexOf(column, source) >= 0
}

// IndexOf returns the index of the given column in the schema, or -1 if it
// is not present. Matching is exact.
func (s Schema) IndexOf(column, source string) int {
	for i, col := range s {
		if col.Name == column && col.Source == source {
			return i
		}
	}
	return -1
}

// IndexOfFold is like IndexOf but folds case on both name and source.
func (s Schema) IndexOfFold(column, source string) int {
	for i, col := range s {
		if strings.EqualFold(col.Name, column) && strings.EqualFold(col.Source, source) {
			return i
		}
	}
	return -1
}

// IndexOfId returns the index of the column with the given id, or -1.
func (s Schema) IndexOfId(id ColumnId) int {
	if id == 0 {
		return -1
	}
	for i, col := range s {
		if col.Id == id {
			return i
		}
	}
	return -1
}

// Equals checks whether the schema is equal to another one, ignoring ids.
func (s Schema) Equals(s2 Schema) bool {
	if len(s) != len(s2) {
		return false
	}
	for i := range s {
		if !s[i].Equals(s2[i]) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the schema.
func (s Schema) Copy() Schema {
	s2 := make(Schema, len(s))
	for i, col := range s {
		c := *col
		s2[i] = &c
	}
	return s2
}
