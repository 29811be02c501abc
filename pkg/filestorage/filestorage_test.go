package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalFileStorage(dir)
	require.NoError(t, err)

	basename, err := storage.Save(strings.NewReader("содержимое"), "png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(basename, ".png"))
	assert.NotContains(t, basename, string(os.PathSeparator))

	data, err := os.ReadFile(filepath.Join(dir, basename))
	require.NoError(t, err)
	assert.Equal(t, "содержимое", string(data))

	require.NoError(t, storage.Delete(basename))
	_, err = os.Stat(filepath.Join(dir, basename))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalFileStorage_DeleteMissingIsNoop(t *testing.T) {
	storage, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, storage.Delete("нет-такого-файла.png"))
}

func TestLocalFileStorage_UniqueNames(t *testing.T) {
	storage, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	first, err := storage.Save(strings.NewReader("a"), "jpg")
	require.NoError(t, err)
	second, err := storage.Save(strings.NewReader("a"), "jpg")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalFileStorage_CreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	_, err := NewLocalFileStorage(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
