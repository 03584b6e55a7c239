package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestViewRegistryRegisterAndLookup(t *testing.T) {
	require := require.New(t)

	registry := NewViewRegistry()
	view := NewView("myview", nil, "mydb", []string{"other"})
	require.NoError(registry.Register("", view))

	got, ok := registry.View("", "myview")
	require.True(ok)
	require.Equal("myview", got.Name())
	require.Equal("mydb", got.Namespace())
	require.Equal([]string{"other"}, got.TempSnapshot())

	_, ok = registry.View("", "unknown")
	require.False(ok)

	// same name under another database is a different view
	_, ok = registry.View(GlobalTempDatabase, "myview")
	require.False(ok)
}

func TestViewRegistryDuplicate(t *testing.T) {
	require := require.New(t)

	registry := NewViewRegistry()
	require.NoError(registry.Register("", NewView("v", nil, "mydb", nil)))

	err := registry.Register("", NewView("v", nil, "mydb", nil))
	require.Error(err)
	require.True(ErrExistingView.Is(err))

	// registering under the global namespace is not a duplicate
	require.NoError(registry.Register(GlobalTempDatabase, NewView("v", nil, "mydb", nil)))
}

func TestViewRegistryDelete(t *testing.T) {
	require := require.New(t)

	registry := NewViewRegistry()
	require.NoError(registry.Register("", NewView("v", nil, "mydb", nil)))
	require.NoError(registry.Delete("", "v"))

	_, ok := registry.View("", "v")
	require.False(ok)

	err := registry.Delete("", "v")
	require.Error(err)
	require.True(ErrNonExistingView.Is(err))
}

func TestViewRegistryNames(t *testing.T) {
	require := require.New(t)

	registry := NewViewRegistry()
	require.NoError(registry.Register("", NewView("a", nil, "mydb", nil)))
	require.NoError(registry.Register("", NewView("b", nil, "mydb", nil)))
	require.NoError(registry.Register(GlobalTempDatabase, NewView("c", nil, "mydb", nil)))

	names := registry.Names("")
	require.ElementsMatch([]string{"a", "b"}, names)
	require.Equal([]string{"c"}, registry.Names(GlobalTempDatabase))
}
