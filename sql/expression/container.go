package expression

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/corvusql/corvus/sql"
)

// CreateArray builds an array value out of its element expressions.
type CreateArray struct {
	values []sql.Expression
}

var _ sql.Expression = (*CreateArray)(nil)

// NewCreateArray creates an CreateArray expression.
func NewCreateArray(values []sql.Expression) *CreateArray {
	return &CreateArray{values}
}

// Resolved implements the Expression interface.
func (a *CreateArray) Resolved() bool {
	return sql.ExpressionsResolved(a.values...)
}

// IsNullable implements the Expression interface.
func (*CreateArray) IsNullable() bool { return false }

// Children implements the Expression interface.
func (a *CreateArray) Children() []sql.Expression { return a.values }

// Type implements the Expression interface. The element type is the type
// of the first element; an empty array is an array of nulls.
func (a *CreateArray) Type() sql.Type {
	if len(a.values) == 0 {
		return sql.Array(sql.Null)
	}
	return sql.Array(a.values[0].Type())
}

// Eval implements the Expression interface.
func (a *CreateArray) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	result := make([]interface{}, len(a.values))
	for i, v := range a.values {
		val, err := v.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		result[i] = val
	}
	return result, nil
}

// WithChildren implements the Expression interface.
func (a *CreateArray) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(a.values) {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), len(a.values))
	}
	return NewCreateArray(children), nil
}

func (a *CreateArray) String() string {
	var parts = make([]string, len(a.values))
	for i, v := range a.values {
		parts[i] = v.String()
	}
	return fmt.Sprintf("array(%s)", strings.Join(parts, ", "))
}

// CreateMap builds a map value out of alternating key and value
// expressions.
type CreateMap struct {
	entries []sql.Expression
}

var _ sql.Expression = (*CreateMap)(nil)

// NewCreateMap creates a CreateMap expression. The entries alternate key,
// value, key, value; their number must be even.
func NewCreateMap(entries []sql.Expression) *CreateMap {
	return &CreateMap{entries}
}

// Resolved implements the Expression interface.
func (m *CreateMap) Resolved() bool {
	return sql.ExpressionsResolved(m.entries...)
}

// IsNullable implements the Expression interface.
func (*CreateMap) IsNullable() bool { return false }

// Children implements the Expression interface.
func (m *CreateMap) Children() []sql.Expression { return m.entries }

// Type implements the Expression interface.
func (m *CreateMap) Type() sql.Type {
	if len(m.entries) < 2 {
		return sql.Map(sql.Null, sql.Null)
	}
	return sql.Map(m.entries[0].Type(), m.entries[1].Type())
}

// Eval implements the Expression interface.
func (m *CreateMap) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	result := make(map[interface{}]interface{}, len(m.entries)/2)
	for i := 0; i+1 < len(m.entries); i += 2 {
		key, err := m.entries[i].Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		val, err := m.entries[i+1].Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		result[key] = val
	}
	return result, nil
}

// WithChildren implements the Expression interface.
func (m *CreateMap) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(m.entries) {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), len(m.entries))
	}
	return NewCreateMap(children), nil
}

func (m *CreateMap) String() string {
	var parts = make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = e.String()
	}
	return fmt.Sprintf("map(%s)", strings.Join(parts, ", "))
}

// ElementAt returns the element of an array at a 1-based ordinal, or the
// value of a map under a key. An out-of-bounds ordinal or missing key
// yields null.
type ElementAt struct {
	BinaryExpression
}

var _ sql.Expression = (*ElementAt)(nil)

// NewElementAt creates an ElementAt expression.
func NewElementAt(container, index sql.Expression) *ElementAt {
	return &ElementAt{BinaryExpression{Left: container, Right: index}}
}

// Type implements the Expression interface.
func (e *ElementAt) Type() sql.Type {
	switch t := e.Left.Type().(type) {
	case sql.ArrayType:
		return t.Elem
	case sql.MapType:
		return t.Value
	}
	return sql.Null
}

// IsNullable implements the Expression interface.
func (*ElementAt) IsNullable() bool { return true }

// Eval implements the Expression interface.
func (e *ElementAt) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	container, err := e.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if container == nil {
		return nil, nil
	}

	index, err := e.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if index == nil {
		return nil, nil
	}

	switch c := container.(type) {
	case []interface{}:
		i, err := cast.ToInt64E(index)
		if err != nil {
			return nil, sql.ErrInvalidType.New(e.Right.Type())
		}
		if i < 1 || int(i) > len(c) {
			return nil, nil
		}
		return c[i-1], nil
	case map[interface{}]interface{}:
		return c[index], nil
	}
	return nil, sql.ErrInvalidType.New(e.Left.Type())
}

// WithChildren implements the Expression interface.
func (e *ElementAt) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewElementAt(children[0], children[1]), nil
}

func (e *ElementAt) String() string {
	return fmt.Sprintf("element_at(%s, %s)", e.Left, e.Right)
}
