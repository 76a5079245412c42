package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
)

func statFile(t *testing.T, body string) (string, os.FileInfo) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zlib.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return path, info
}

func zlibDocument() binderyv1alpha1.Document {
	r := &binderyv1alpha1.Recipe{}
	r.Name = "zlib"
	r.Spec.Version = "1.3.1"
	r.Spec.Provides = []string{"libz"}
	return binderyv1alpha1.Document{Recipe: r}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestManifests_StoreAndLookup(t *testing.T) {
	m, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer m.Close()

	path, info := statFile(t, "kind: Recipe")

	_, ok := m.Lookup(path, info)
	assert.False(t, ok)

	require.NoError(t, m.Store(path, info, zlibDocument()))
	doc, ok := m.Lookup(path, info)
	require.True(t, ok)
	require.NotNil(t, doc.Recipe)
	assert.Equal(t, "zlib", doc.Recipe.GetName())
	assert.Equal(t, []string{"libz"}, doc.Recipe.Spec.Provides)

	n, err := m.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestManifests_ChangedFileMisses(t *testing.T) {
	m, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer m.Close()

	path, info := statFile(t, "kind: Recipe")
	require.NoError(t, m.Store(path, info, zlibDocument()))

	require.NoError(t, os.WriteFile(path, []byte("kind: Recipe\n# grown"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	changed, err := os.Stat(path)
	require.NoError(t, err)

	_, ok := m.Lookup(path, changed)
	assert.False(t, ok)
}

func TestManifests_Purge(t *testing.T) {
	m, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer m.Close()

	path, info := statFile(t, "kind: Recipe")
	require.NoError(t, m.Store(path, info, zlibDocument()))
	require.NoError(t, m.Purge())

	_, ok := m.Lookup(path, info)
	assert.False(t, ok)
}

func TestManifests_PersistAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	path, info := statFile(t, "kind: Recipe")

	m, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, m.Store(path, info, zlibDocument()))
	require.NoError(t, m.Close())

	reopened, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	_, ok := reopened.Lookup(path, info)
	assert.True(t, ok)
}
