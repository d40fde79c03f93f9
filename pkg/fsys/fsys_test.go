package fsys_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/keepsake/pkg/fsys"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// contract runs the behavior every FileSystem must share.
func contract(t *testing.T, store types.FileSystem, root string) {
	t.Helper()
	dir := filepath.Join(root, "a", "b")
	file := filepath.Join(dir, "settings.json")

	assert.False(t, store.Exists(dir))
	require.NoError(t, store.MkdirAll(dir))
	assert.True(t, store.Exists(dir))
	assert.True(t, store.Exists(filepath.Join(root, "a")))

	_, err := store.ReadFile(file)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, store.CreateFile(file, []byte("{}")))
	assert.True(t, store.Exists(file))
	assert.ErrorIs(t, store.CreateFile(file, []byte("[]")), fs.ErrExist)

	data, err := store.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	require.NoError(t, store.WriteFile(file, []byte(`{"a":1}`)))
	data, err = store.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	err = store.WriteFile(filepath.Join(root, "missing", "x.json"), []byte("{}"))
	assert.Error(t, err)
}

func TestOS(t *testing.T) {
	contract(t, fsys.OS{}, t.TempDir())
}

func TestOS_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "settings.json")
	require.NoError(t, fsys.OS{}.WriteFile(file, []byte("{}")))
	require.NoError(t, fsys.OS{}.WriteFile(file, []byte(`{"x":2}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "settings.json", entries[0].Name())

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, fsys.FilePerm, info.Mode().Perm())
}

func TestMemory(t *testing.T) {
	contract(t, fsys.NewMemory(), "/data")
}

func TestMemory_Bookkeeping(t *testing.T) {
	m := fsys.NewMemory()
	require.NoError(t, m.MkdirAll("/cfg"))
	require.NoError(t, m.CreateFile("/cfg/b.json", []byte("{}")))
	require.NoError(t, m.WriteFile("/cfg/a.json", []byte("{}")))
	require.NoError(t, m.WriteFile("/cfg//a.json", []byte("{}")))

	assert.Equal(t, 3, m.Writes())
	assert.Equal(t, []string{"/cfg/a.json", "/cfg/b.json"}, m.Files())
}

func TestMemory_ReadReturnsCopy(t *testing.T) {
	m := fsys.NewMemory()
	require.NoError(t, m.WriteFile("/f", []byte("abc")))

	data, err := m.ReadFile("/f")
	require.NoError(t, err)
	data[0] = 'x'

	again, err := m.ReadFile("/f")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemory_DirectoryConflicts(t *testing.T) {
	m := fsys.NewMemory()
	require.NoError(t, m.MkdirAll("/d"))
	assert.ErrorIs(t, m.WriteFile("/d", []byte("{}")), fs.ErrExist)

	require.NoError(t, m.WriteFile("/f", []byte("{}")))
	assert.ErrorIs(t, m.MkdirAll("/f/sub"), fs.ErrExist)
}
