package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	t.Run("AbsentKey", func(t *testing.T) {
		_, ok, err := fs.Load("portfolio")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SaveLoadRoundtrip", func(t *testing.T) {
		require.NoError(t, fs.Save("portfolio", `[{"coin_id":"bitcoin"}]`))

		value, ok, err := fs.Load("portfolio")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, `[{"coin_id":"bitcoin"}]`, value)
	})

	t.Run("OverwriteReplaces", func(t *testing.T) {
		require.NoError(t, fs.Save("portfolio", "first"))
		require.NoError(t, fs.Save("portfolio", "second"))

		value, _, err := fs.Load("portfolio")
		require.NoError(t, err)
		assert.Equal(t, "second", value)
	})

	t.Run("UnsafeKeyCharacters", func(t *testing.T) {
		require.NoError(t, fs.Save("a/b..c", "data"))

		value, ok, err := fs.Load("a/b..c")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "data", value)
	})
}
