package sql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInt64Convert(t *testing.T) {
	require := require.New(t)

	v, err := Int64.Convert("5")
	require.NoError(err)
	require.Equal(int64(5), v)

	v, err = Int64.Convert(nil)
	require.NoError(err)
	require.Nil(v)

	_, err = Int64.Convert("not a number")
	require.Error(err)
}

func TestTextCompare(t *testing.T) {
	require := require.New(t)

	cmp, err := Text.Compare("a", "b")
	require.NoError(err)
	require.Equal(-1, cmp)

	// nulls sort first
	cmp, err = Text.Compare(nil, "a")
	require.NoError(err)
	require.Equal(-1, cmp)

	cmp, err = Text.Compare(nil, nil)
	require.NoError(err)
	require.Equal(0, cmp)
}

func TestTimestampConvert(t *testing.T) {
	require := require.New(t)

	v, err := Timestamp.Convert("2026-08-25 10:30:00")
	require.NoError(err)
	require.Equal(time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC), v)

	_, err = Timestamp.Convert("25/08/2026")
	require.Error(err)
	require.True(ErrConvertingToType.Is(err))
}

func TestArrayConvert(t *testing.T) {
	require := require.New(t)

	arr := Array(Int64)
	v, err := arr.Convert([]interface{}{"1", 2})
	require.NoError(err)
	require.Equal([]interface{}{int64(1), int64(2)}, v)

	_, err = arr.Convert("nope")
	require.Error(err)
	require.True(ErrConvertingToType.Is(err))
}

func TestArrayCompare(t *testing.T) {
	require := require.New(t)

	arr := Array(Int64)
	cmp, err := arr.Compare(
		[]interface{}{int64(1), int64(2)},
		[]interface{}{int64(1), int64(3)},
	)
	require.NoError(err)
	require.Equal(-1, cmp)

	// a shorter prefix sorts first
	cmp, err = arr.Compare(
		[]interface{}{int64(1)},
		[]interface{}{int64(1), int64(0)},
	)
	require.NoError(err)
	require.Equal(-1, cmp)
}

func TestStructConvertAndIndexOf(t *testing.T) {
	require := require.New(t)

	st := Struct(
		StructField{Name: "a", Type: Int64},
		StructField{Name: "B", Type: Text},
	)

	v, err := st.Convert([]interface{}{"1", 2})
	require.NoError(err)
	require.Equal([]interface{}{int64(1), "2"}, v)

	_, err = st.Convert([]interface{}{int64(1)})
	require.Error(err)

	fields := st.(StructType)
	require.Equal(0, fields.IndexOf("a", true))
	require.Equal(-1, fields.IndexOf("b", true))
	require.Equal(1, fields.IndexOf("b", false))
}

func TestUnorderableTypes(t *testing.T) {
	require := require.New(t)

	m := Map(Text, Int64)
	_, err := m.Compare(nil, nil)
	require.Error(err)
	require.True(ErrUnorderableType.Is(err))

	require.False(IsOrderable(m))
	require.False(IsOrderable(Struct(StructField{Name: "a", Type: Int64})))
	require.True(IsOrderable(Int64))
	require.True(IsOrderable(Array(Int64)))
}

func TestTupleCompare(t *testing.T) {
	require := require.New(t)

	tup := Tuple(Int64, Text)
	cmp, err := tup.Compare(
		[]interface{}{int64(1), "a"},
		[]interface{}{int64(1), "b"},
	)
	require.NoError(err)
	require.Equal(-1, cmp)

	_, err = tup.Convert([]interface{}{int64(1)})
	require.Error(err)
	require.True(ErrNotTuple.Is(err))
}

func TestTypesEqual(t *testing.T) {
	require := require.New(t)

	require.True(TypesEqual(Array(Text), Array(Text)))
	require.False(TypesEqual(Array(Text), Array(Int64)))
	require.True(TypesEqual(Int64, Int64))
	require.False(TypesEqual(Int64, Float64))
}
