package sql

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
	errors "gopkg.in/src-d/go-errors.v1"
)

// Type represents a data type of a column or expression. The set of types
// is closed; rules and traversals switch exhaustively over it.
type Type interface {
	fmt.Stringer
	// Convert a value of a compatible type to the type, or return
	// ErrConvertingToType if it cannot represent the value.
	Convert(v interface{}) (interface{}, error)
	// Compare two values of the type. Returns -1, 0 or 1. Comparing
	// against nil: nil sorts first.
	Compare(a, b interface{}) (int, error)
	// Zero returns the zero value of the type.
	Zero() interface{}
}

// ErrConvertingToType is returned when a value cannot be converted to the
// requested type.
var ErrConvertingToType = errors.NewKind("value %v can't be converted to %s")

// ErrNotTuple is returned when a value is not a tuple of the expected size.
var ErrNotTuple = errors.NewKind("value of type %T is not a tuple")

// ErrNotStruct is returned when a value is not a struct value.
var ErrNotStruct = errors.NewKind("value of type %T is not a struct")

var (
	// Null represents the type of NULL values.
	Null nullT
	// Boolean is a boolean type.
	Boolean booleanT
	// Int64 is an integer of 64 bits.
	Int64 int64T
	// Float64 is a floating point number of 64 bits.
	Float64 float64T
	// Text is a string type.
	Text textT
	// Timestamp is a date and a time.
	Timestamp timestampT
)

type nullT struct{}

func (t nullT) String() string { return "NULL" }
func (t nullT) Convert(v interface{}) (interface{}, error) {
	if v != nil {
		return nil, ErrConvertingToType.New(v, t.String())
	}
	return nil, nil
}
func (t nullT) Compare(a, b interface{}) (int, error) { return 0, nil }
func (t nullT) Zero() interface{}                     { return nil }

type booleanT struct{}

func (t booleanT) String() string { return "BOOLEAN" }
func (t booleanT) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToBoolE(v)
}
func (t booleanT) Compare(a, b interface{}) (int, error) {
	if cmp, done := compareNulls(a, b); done {
		return cmp, nil
	}
	av, err := t.Convert(a)
	if err != nil {
		return 0, err
	}
	bv, err := t.Convert(b)
	if err != nil {
		return 0, err
	}
	if av == bv {
		return 0, nil
	}
	if !av.(bool) {
		return -1, nil
	}
	return 1, nil
}
func (t booleanT) Zero() interface{} { return false }

type int64T struct{}

func (t int64T) String() string { return "BIGINT" }
func (t int64T) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToInt64E(v)
}
func (t int64T) Compare(a, b interface{}) (int, error) {
	if cmp, done := compareNulls(a, b); done {
		return cmp, nil
	}
	av, err := cast.ToInt64E(a)
	if err != nil {
		return 0, err
	}
	bv, err := cast.ToInt64E(b)
	if err != nil {
		return 0, err
	}
	switch {
	case av < bv:
		return -1, nil
	case av > bv:
		return 1, nil
	}
	return 0, nil
}
func (t int64T) Zero() interface{} { return int64(0) }

type float64T struct{}

func (t float64T) String() string { return "DOUBLE" }
func (t float64T) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToFloat64E(v)
}
func (t float64T) Compare(a, b interface{}) (int, error) {
	if cmp, done := compareNulls(a, b); done {
		return cmp, nil
	}
	av, err := cast.ToFloat64E(a)
	if err != nil {
		return 0, err
	}
	bv, err := cast.ToFloat64E(b)
	if err != nil {
		return 0, err
	}
	switch {
	case av < bv:
		return -1, nil
	case av > bv:
		return 1, nil
	}
	return 0, nil
}
func (t float64T) Zero() interface{} { return float64(0) }

type textT struct{}

func (t textT) String() string { return "TEXT" }
func (t textT) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return cast.ToStringE(v)
}
func (t textT) Compare(a, b interface{}) (int, error) {
	if cmp, done := compareNulls(a, b); done {
		return cmp, nil
	}
	av, err := cast.ToStringE(a)
	if err != nil {
		return 0, err
	}
	bv, err := cast.ToStringE(b)
	if err != nil {
		return 0, err
	}
	return strings.Compare(av, bv), nil
}
func (t textT) Zero() interface{} { return "" }

// TimestampLayout is the layout of the timestamp type.
const TimestampLayout = "2006-01-02 15:04:05"

type timestampT struct{}

func (t timestampT) String() string { return "TIMESTAMP" }
func (t timestampT) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch value := v.(type) {
	case time.Time:
		return value.UTC(), nil
	case string:
		t, err := time.Parse(TimestampLayout, value)
		if err != nil {
			return nil, ErrConvertingToType.New(v, "TIMESTAMP")
		}
		return t.UTC(), nil
	default:
		ts, err := Int64.Convert(v)
		if err != nil {
			return nil, ErrConvertingToType.New(v, "TIMESTAMP")
		}
		return time.Unix(ts.(int64), 0).UTC(), nil
	}
}
func (t timestampT) Compare(a, b interface{}) (int, error) {
	if cmp, done := compareNulls(a, b); done {
		return cmp, nil
	}
	av := a.(time.Time)
	bv := b.(time.Time)
	switch {
	case av.Before(bv):
		return -1, nil
	case av.After(bv):
		return 1, nil
	}
	return 0, nil
}
func (t timestampT) Zero() interface{} { return time.Time{} }

// ArrayType is an array of values of an underlying type.
type ArrayType struct {
	Elem Type
}

// Array returns a new array type of the given element type.
func Array(elem Type) Type { return ArrayType{elem} }

func (t ArrayType) String() string { return fmt.Sprintf("ARRAY<%s>", t.Elem) }
func (t ArrayType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch v := v.(type) {
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, e := range v {
			c, err := t.Elem.Convert(e)
			if err != nil {
				return nil, err
			}
			result[i] = c
		}
		return result, nil
	default:
		return nil, ErrConvertingToType.New(v, t.String())
	}
}
func (t ArrayType) Compare(a, b interface{}) (int, error) {
	if cmp, done := compareNulls(a, b); done {
		return cmp, nil
	}
	av := a.([]interface{})
	bv := b.([]interface{})
	for i := 0; i < len(av) && i < len(bv); i++ {
		cmp, err := t.Elem.Compare(av[i], bv[i])
		if err != nil {
			return 0, err
		}
		if cmp != 0 {
			return cmp, nil
		}
	}
	switch {
	case len(av) < len(bv):
		return -1, nil
	case len(av) > len(bv):
		return 1, nil
	}
	return 0, nil
}
func (t ArrayType) Zero() interface{} { return []interface{}(nil) }

// MapType is a map with keys and values of underlying types. Maps are not
// orderable.
type MapType struct {
	Key   Type
	Value Type
}

// Map returns a new map type with the given key and value types.
func Map(key, value Type) Type { return MapType{key, value} }

func (t MapType) String() string {
	return fmt.Sprintf("MAP<%s, %s>", t.Key, t.Value)
}
func (t MapType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch v := v.(type) {
	case map[interface{}]interface{}:
		return v, nil
	default:
		return nil, ErrConvertingToType.New(v, t.String())
	}
}
func (t MapType) Compare(a, b interface{}) (int, error) {
	return 0, ErrUnorderableType.New(t.String())
}
func (t MapType) Zero() interface{} { return map[interface{}]interface{}(nil) }

// StructField is a single named field of a struct type.
type StructField struct {
	Name     string
	Type     Type
	Nullable bool
}

// StructType is an ordered collection of named fields. Struct values are
// represented as []interface{} in field declaration order. Structs are not
// orderable.
type StructType struct {
	Fields []StructField
}

// Struct returns a new struct type with the given fields.
func Struct(fields ...StructField) Type { return StructType{fields} }

func (t StructType) String() string {
	var fields = make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = fmt.Sprintf("%s %s", f.Name, f.Type)
	}
	return fmt.Sprintf("STRUCT<%s>", strings.Join(fields, ", "))
}

// IndexOf returns the position of the field with the given name, or -1. The
// caseSensitive flag controls name folding; with case-insensitive matching
// the first declared match wins.
func (t StructType) IndexOf(name string, caseSensitive bool) int {
	for i, f := range t.Fields {
		if f.Name == name || (!caseSensitive && strings.EqualFold(f.Name, name)) {
			return i
		}
	}
	return -1
}

func (t StructType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	vals, ok := v.([]interface{})
	if !ok {
		return nil, ErrNotStruct.New(v)
	}
	if len(vals) != len(t.Fields) {
		return nil, ErrConvertingToType.New(v, t.String())
	}
	result := make([]interface{}, len(vals))
	for i, f := range t.Fields {
		c, err := f.Type.Convert(vals[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}
func (t StructType) Compare(a, b interface{}) (int, error) {
	return 0, ErrUnorderableType.New(t.String())
}
func (t StructType) Zero() interface{} { return []interface{}(nil) }

// TupleType is a fixed-size ordered set of values of heterogeneous types,
// used for IN lists and multi-value comparisons.
type TupleType []Type

// Tuple returns a new tuple type with the given element types.
func Tuple(types ...Type) Type { return TupleType(types) }

func (t TupleType) String() string {
	var elems = make([]string, len(t))
	for i, el := range t {
		elems[i] = el.String()
	}
	return fmt.Sprintf("TUPLE(%s)", strings.Join(elems, ", "))
}
func (t TupleType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if vals, ok := v.([]interface{}); ok {
		if len(vals) != len(t) {
			return nil, ErrNotTuple.New(v)
		}
		result := make([]interface{}, len(t))
		for i, typ := range t {
			var err error
			result[i], err = typ.Convert(vals[i])
			if err != nil {
				return nil, err
			}
		}
		return result, nil
	}
	return nil, ErrNotTuple.New(v)
}
func (t TupleType) Compare(a, b interface{}) (int, error) {
	if cmp, done := compareNulls(a, b); done {
		return cmp, nil
	}
	av, err := t.Convert(a)
	if err != nil {
		return 0, err
	}
	bv, err := t.Convert(b)
	if err != nil {
		return 0, err
	}
	as := av.([]interface{})
	bs := bv.([]interface{})
	for i := range t {
		cmp, err := t[i].Compare(as[i], bs[i])
		if err != nil {
			return 0, err
		}
		if cmp != 0 {
			return cmp, nil
		}
	}
	return 0, nil
}
func (t TupleType) Zero() interface{} { return []interface{}(nil) }

// compareNulls compares two values when either can be nil. The second
// return value reports whether the comparison is already decided.
func compareNulls(a, b interface{}) (int, bool) {
	if a == nil && b == nil {
		return 0, true
	}
	if a == nil {
		return -1, true
	}
	if b == nil {
		return 1, true
	}
	return 0, false
}

// IsNull reports whether the type is the NULL type.
func IsNull(t Type) bool { return t == Null }

// IsNumber reports whether the type is a numeric type.
func IsNumber(t Type) bool { return t == Int64 || t == Float64 }

// IsText reports whether the type is a text type.
func IsText(t Type) bool { return t == Text }

// IsArray reports whether the type is an array type.
func IsArray(t Type) bool { _, ok := t.(ArrayType); return ok }

// IsMap reports whether the type is a map type.
func IsMap(t Type) bool { _, ok := t.(MapType); return ok }

// IsStruct reports whether the type is a struct type.
func IsStruct(t Type) bool { _, ok := t.(StructType); return ok }

// IsTuple reports whether the type is a tuple type.
func IsTuple(t Type) bool { _, ok := t.(TupleType); return ok }

// IsOrderable reports whether values of the type admit a total order and
// thus can be used as sort or range keys.
func IsOrderable(t Type) bool {
	switch t.(type) {
	case MapType, StructType:
		return false
	}
	return true
}

// TypesEqual reports whether two types are the same type.
func TypesEqual(a, b Type) bool {
	return reflect.DeepEqual(a, b)
}
