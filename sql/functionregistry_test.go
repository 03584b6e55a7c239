package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFunctionRegistryLookup(t *testing.T) {
	require := require.New(t)

	registry := NewFunctionRegistry()
	registry.Register(Function1{Name: "identity", Fn: func(e Expression) Expression { return e }})

	fn, err := registry.Function("identity")
	require.NoError(err)
	require.Equal("identity", fn.FunctionName())
}

func TestFunctionRegistryNotFound(t *testing.T) {
	require := require.New(t)

	registry := NewFunctionRegistry()
	_, err := registry.Function("upper")
	require.Error(err)
	require.True(ErrFunctionNotFound.Is(err))

	// a close name is suggested in the error
	registry.Register(Function1{Name: "upper", Fn: func(e Expression) Expression { return e }})
	_, err = registry.Function("uper")
	require.Error(err)
	require.True(ErrFunctionNotFound.Is(err))
	require.Contains(err.Error(), "upper")
}

func TestFunctionRegistryOverride(t *testing.T) {
	require := require.New(t)

	registry := NewFunctionRegistry()
	registry.Register(Function0{Name: "f", Fn: func() Expression { return nil }})
	registry.Register(Function1{Name: "f", Fn: func(e Expression) Expression { return e }})

	fn, err := registry.Function("f")
	require.NoError(err)

	// the later registration won: it takes one argument, not zero
	_, err = fn.NewInstance(nil)
	require.Error(err)
	require.True(ErrInvalidArgumentNumber.Is(err))
}

func TestFunctionArgumentCounts(t *testing.T) {
	require := require.New(t)

	fn := Function2{Name: "pair", Fn: func(e1, e2 Expression) Expression { return e1 }}

	_, err := fn.NewInstance(nil)
	require.Error(err)
	require.True(ErrInvalidArgumentNumber.Is(err))

	_, err = fn.NewInstance(make([]Expression, 2))
	require.NoError(err)
}
