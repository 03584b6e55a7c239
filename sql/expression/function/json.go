package function

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
)

// ToJSON serializes its child value as a JSON string.
type ToJSON struct {
	expression.UnaryExpression
}

var _ sql.Expression = (*ToJSON)(nil)

// NewToJSON creates a new ToJSON function.
func NewToJSON(child sql.Expression) sql.Expression {
	return &ToJSON{expression.UnaryExpression{Child: child}}
}

// Type implements the Expression interface.
func (*ToJSON) Type() sql.Type { return sql.Text }

func (t *ToJSON) String() string {
	return fmt.Sprintf("to_json(%s)", t.Child)
}

// WithChildren implements the Expression interface.
func (t *ToJSON) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), 1)
	}
	return NewToJSON(children[0]), nil
}

// Eval implements the Expression interface.
func (t *ToJSON) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := t.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	encodable := toEncodable(t.Child.Type(), v)
	out, err := json.Marshal(encodable)
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

// toEncodable rewrites struct values ([]interface{} plus a StructType) and
// maps with interface keys into forms encoding/json can handle.
func toEncodable(typ sql.Type, v interface{}) interface{} {
	switch t := typ.(type) {
	case sql.StructType:
		fields, ok := v.([]interface{})
		if !ok {
			return v
		}
		m := make(map[string]interface{}, len(fields))
		for i, f := range t.Fields {
			if i < len(fields) {
				m[f.Name] = toEncodable(f.Type, fields[i])
			}
		}
		return m
	case sql.ArrayType:
		elems, ok := v.([]interface{})
		if !ok {
			return v
		}
		result := make([]interface{}, len(elems))
		for i, e := range elems {
			result[i] = toEncodable(t.Elem, e)
		}
		return result
	case sql.MapType:
		entries, ok := v.(map[interface{}]interface{})
		if !ok {
			return v
		}
		m := make(map[string]interface{}, len(entries))
		for k, val := range entries {
			m[fmt.Sprint(k)] = toEncodable(t.Value, val)
		}
		return m
	}
	return v
}

// FromJSON parses a JSON string into a value of the given type. Options
// tune the parse; an expression with any option set never cancels out a
// matching ToJSON.
type FromJSON struct {
	expression.UnaryExpression
	typ     sql.Type
	options map[string]string
}

var _ sql.Expression = (*FromJSON)(nil)

// NewFromJSON builds a FromJSON from registry arguments: the string child
// and a literal naming the result type.
func NewFromJSON(args ...sql.Expression) (sql.Expression, error) {
	if len(args) != 2 {
		return nil, sql.ErrInvalidArgumentNumber.New("from_json", 2, len(args))
	}

	lit, ok := args[1].(*expression.Literal)
	if !ok {
		return nil, sql.ErrInvalidType.New(args[1].Type())
	}
	name, ok := lit.Value().(string)
	if !ok {
		return nil, sql.ErrInvalidType.New(args[1].Type())
	}

	typ, err := typeFromName(name)
	if err != nil {
		return nil, err
	}
	return NewFromJSONWithType(args[0], typ, nil), nil
}

// NewFromJSONWithType creates a FromJSON with the result type and parse
// options given.
func NewFromJSONWithType(child sql.Expression, typ sql.Type, options map[string]string) *FromJSON {
	return &FromJSON{expression.UnaryExpression{Child: child}, typ, options}
}

func typeFromName(name string) (sql.Type, error) {
	switch strings.ToLower(name) {
	case "boolean":
		return sql.Boolean, nil
	case "bigint", "long":
		return sql.Int64, nil
	case "double":
		return sql.Float64, nil
	case "string":
		return sql.Text, nil
	default:
		return nil, sql.ErrInvalidType.New(name)
	}
}

// ResultType returns the type the JSON string is parsed into.
func (f *FromJSON) ResultType() sql.Type { return f.typ }

// HasOptions reports whether any parse option is set.
func (f *FromJSON) HasOptions() bool { return len(f.options) > 0 }

// Type implements the Expression interface.
func (f *FromJSON) Type() sql.Type { return f.typ }

// IsNullable implements the Expression interface. Malformed input yields
// null.
func (*FromJSON) IsNullable() bool { return true }

func (f *FromJSON) String() string {
	if len(f.options) == 0 {
		return fmt.Sprintf("from_json(%s, %s)", f.Child, f.typ)
	}
	keys := make([]string, 0, len(f.options))
	for k := range f.options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	opts := make([]string, len(keys))
	for i, k := range keys {
		opts[i] = fmt.Sprintf("%s=%s", k, f.options[k])
	}
	return fmt.Sprintf("from_json(%s, %s, %s)", f.Child, f.typ, strings.Join(opts, ", "))
}

// WithChildren implements the Expression interface.
func (f *FromJSON) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 1)
	}
	return NewFromJSONWithType(children[0], f.typ, f.options), nil
}

// Eval implements the Expression interface.
func (f *FromJSON) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := f.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	s, ok := v.(string)
	if !ok {
		return nil, sql.ErrInvalidType.New(f.Child.Type())
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, nil
	}

	converted, err := f.typ.Convert(decoded)
	if err != nil {
		return nil, nil
	}
	return converted, nil
}
