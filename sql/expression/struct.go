package expression

import (
	"fmt"
	"strings"

	"github.com/corvusql/corvus/sql"
)

// CreateStruct builds a struct value out of name/value pairs.
type CreateStruct struct {
	names  []string
	values []sql.Expression
}

var _ sql.Expression = (*CreateStruct)(nil)

// NewCreateStruct creates a CreateStruct. Both slices must have the same
// length.
func NewCreateStruct(names []string, values []sql.Expression) *CreateStruct {
	return &CreateStruct{names: names, values: values}
}

// Names returns the field names of the struct being built.
func (s *CreateStruct) Names() []string { return s.names }

// Resolved implements the Expression interface.
func (s *CreateStruct) Resolved() bool {
	return sql.ExpressionsResolved(s.values...)
}

// IsNullable implements the Expression interface.
func (*CreateStruct) IsNullable() bool { return false }

// Children implements the Expression interface.
func (s *CreateStruct) Children() []sql.Expression { return s.values }

// Type implements the Expression interface.
func (s *CreateStruct) Type() sql.Type {
	fields := make([]sql.StructField, len(s.values))
	for i, v := range s.values {
		fields[i] = sql.StructField{
			Name:     s.names[i],
			Type:     v.Type(),
			Nullable: v.IsNullable(),
		}
	}
	return sql.Struct(fields...)
}

// Eval implements the Expression interface.
func (s *CreateStruct) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	result := make([]interface{}, len(s.values))
	for i, v := range s.values {
		val, err := v.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		result[i] = val
	}
	return result, nil
}

// WithChildren implements the Expression interface.
func (s *CreateStruct) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(s.values) {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), len(s.values))
	}
	return NewCreateStruct(s.names, children), nil
}

func (s *CreateStruct) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = fmt.Sprintf("%s: %s", s.names[i], v)
	}
	return fmt.Sprintf("struct(%s)", strings.Join(parts, ", "))
}

// GetStructField extracts a named field out of a struct value. The field
// index is computed at resolution time from the child's struct type, so
// evaluation is a positional lookup.
type GetStructField struct {
	UnaryExpression
	name  string
	index int
}

var _ sql.Expression = (*GetStructField)(nil)

// NewGetStructField creates an unresolved-index field access; the analyzer
// fills the index in via WithIndex.
func NewGetStructField(child sql.Expression, name string) *GetStructField {
	return &GetStructField{UnaryExpression{child}, name, -1}
}

// NewGetStructFieldWithIndex creates a field access with the index already
// computed.
func NewGetStructFieldWithIndex(child sql.Expression, name string, index int) *GetStructField {
	return &GetStructField{UnaryExpression{child}, name, index}
}

// FieldName returns the name of the field accessed.
func (g *GetStructField) FieldName() string { return g.name }

// Index returns the position of the field in the struct, or -1 when not
// yet computed.
func (g *GetStructField) Index() int { return g.index }

// WithIndex returns a copy with the field index given.
func (g *GetStructField) WithIndex(index int) *GetStructField {
	n := *g
	n.index = index
	return &n
}

// Resolved implements the Expression interface.
func (g *GetStructField) Resolved() bool {
	return g.Child.Resolved() && g.index >= 0
}

// Type implements the Expression interface.
func (g *GetStructField) Type() sql.Type {
	st, ok := g.Child.Type().(sql.StructType)
	if !ok || g.index < 0 || g.index >= len(st.Fields) {
		return sql.Null
	}
	return st.Fields[g.index].Type
}

// IsNullable implements the Expression interface.
func (g *GetStructField) IsNullable() bool {
	if g.Child.IsNullable() {
		return true
	}
	st, ok := g.Child.Type().(sql.StructType)
	if !ok || g.index < 0 || g.index >= len(st.Fields) {
		return true
	}
	return st.Fields[g.index].Nullable
}

// Eval implements the Expression interface.
func (g *GetStructField) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	val, err := g.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}

	fields, ok := val.([]interface{})
	if !ok {
		return nil, sql.ErrNotStruct.New(val)
	}
	if g.index < 0 || g.index >= len(fields) {
		return nil, sql.ErrFieldNotFound.New(g.name)
	}
	return fields[g.index], nil
}

// WithChildren implements the Expression interface.
func (g *GetStructField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}
	n := *g
	n.Child = children[0]
	return &n, nil
}

func (g *GetStructField) String() string {
	return fmt.Sprintf("%s.%s", g.Child, g.name)
}

// WithField returns a copy of a struct value with one field replaced, or
// with a new field appended when no field of that name exists.
type WithField struct {
	Struct sql.Expression
	Name   string
	Value  sql.Expression
}

var _ sql.Expression = (*WithField)(nil)

// NewWithField creates a WithField expression.
func NewWithField(st sql.Expression, name string, value sql.Expression) *WithField {
	return &WithField{Struct: st, Name: name, Value: value}
}

// Resolved implements the Expression interface.
func (w *WithField) Resolved() bool {
	return w.Struct.Resolved() && w.Value.Resolved()
}

// IsNullable implements the Expression interface.
func (w *WithField) IsNullable() bool { return w.Struct.IsNullable() }

// Children implements the Expression interface.
func (w *WithField) Children() []sql.Expression {
	return []sql.Expression{w.Struct, w.Value}
}

// Type implements the Expression interface.
func (w *WithField) Type() sql.Type {
	st, ok := w.Struct.Type().(sql.StructType)
	if !ok {
		return sql.Null
	}

	newField := sql.StructField{
		Name:     w.Name,
		Type:     w.Value.Type(),
		Nullable: w.Value.IsNullable(),
	}

	fields := make([]sql.StructField, len(st.Fields))
	copy(fields, st.Fields)
	if idx := st.IndexOf(w.Name, false); idx >= 0 {
		fields[idx] = newField
	} else {
		fields = append(fields, newField)
	}
	return sql.Struct(fields...)
}

// Eval implements the Expression interface.
func (w *WithField) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	val, err := w.Struct.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}

	fields, ok := val.([]interface{})
	if !ok {
		return nil, sql.ErrNotStruct.New(val)
	}

	fieldVal, err := w.Value.Eval(ctx, row)
	if err != nil {
		return nil, err
	}

	st, ok := w.Struct.Type().(sql.StructType)
	if !ok {
		return nil, sql.ErrNotStruct.New(w.Struct.Type())
	}

	result := make([]interface{}, len(fields))
	copy(result, fields)
	if idx := st.IndexOf(w.Name, false); idx >= 0 && idx < len(result) {
		result[idx] = fieldVal
	} else {
		result = append(result, fieldVal)
	}
	return result, nil
}

// WithChildren implements the Expression interface.
func (w *WithField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(w, len(children), 2)
	}
	return NewWithField(children[0], w.Name, children[1]), nil
}

func (w *WithField) String() string {
	return fmt.Sprintf("with_field(%s, %s: %s)", w.Struct, w.Name, w.Value)
}
