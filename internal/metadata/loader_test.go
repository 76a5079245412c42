package metadata_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
	"github.com/bayleafwalker/bindery-graph/internal/metadata"
)

func writeManifest(t *testing.T, dir, rel, body string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const header = "apiVersion: recipes.bindery.dev/v1alpha1\n"

func TestLoad_Corpus(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "core/zlib.yaml", header+`kind: Recipe
metadata:
  name: zlib
spec:
  version: "1.3.1"
`)
	writeManifest(t, root, "core/openssl.yaml", header+`kind: Recipe
metadata:
  name: openssl
spec:
  version: "3.2.0"
  depends: [zlib]
`)
	writeManifest(t, root, "appends/openssl.yml", header+`kind: RecipeAppend
metadata:
  name: openssl-extra
spec:
  recipe: openssl
  version: "3.%"
  rdepends: [ca-certificates]
`)
	writeManifest(t, root, "conf/site.yaml", header+`kind: Configuration
metadata:
  name: site
spec:
  preferredProviders:
    virtual/ssl: openssl
  assumeProvided: [quilt-native]
`)
	writeManifest(t, root, ".git/config.yaml", "not: a manifest")
	writeManifest(t, root, "README.md", "ignored")

	snap, err := metadata.Load(context.Background(), metadata.LoadOptions{Paths: []string{root}})
	require.NoError(t, err)

	openssl := filepath.Join(root, "core/openssl.yaml")
	assert.Equal(t, []string{filepath.Join(root, "core/openssl.yaml"), filepath.Join(root, "core/zlib.yaml")}, snap.Files())
	assert.Equal(t, []string{"zlib"}, snap.DeclaredDependencies(openssl, metadata.Build))
	assert.Equal(t, []string{"ca-certificates"}, snap.DeclaredDependencies(openssl, metadata.Run))
	assert.Equal(t, []string{filepath.Join(root, "appends/openssl.yml")}, snap.AppendOverlaysFor(openssl))
	assert.Equal(t, "openssl", snap.Configuration().Spec.PreferredProviders["virtual/ssl"])
	assert.True(t, snap.IsIgnored("quilt-native"))
}

func TestLoad_ConfigurationPrecedence(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "conf/layer.yaml", header+`kind: Configuration
metadata:
  name: layer
spec:
  preferredProviders:
    virtual/kernel: linux-yocto
    virtual/libc: glibc
`)
	explicit := writeManifest(t, t.TempDir(), "local.yaml", header+`kind: Configuration
metadata:
  name: local
spec:
  preferredProviders:
    virtual/kernel: linux-custom
`)

	snap, err := metadata.Load(context.Background(), metadata.LoadOptions{
		Paths:             []string{root},
		ConfigurationFile: explicit,
		Overrides: binderyv1alpha1.ConfigurationSpec{
			PreferredProviders: map[string]string{"virtual/libc": "musl"},
		},
	})
	require.NoError(t, err)

	prefs := snap.Configuration().Spec.PreferredProviders
	assert.Equal(t, "linux-custom", prefs["virtual/kernel"])
	assert.Equal(t, "musl", prefs["virtual/libc"])
}

func TestLoad_OverrideMasksSkipDiscovery(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "good/a.yaml", header+"kind: Recipe\nmetadata:\n  name: a\n")
	writeManifest(t, root, "broken/b.yaml", "{{{ this is not yaml")

	snap, err := metadata.Load(context.Background(), metadata.LoadOptions{
		Paths:     []string{root},
		Overrides: binderyv1alpha1.ConfigurationSpec{Masks: []string{"/broken/"}},
	})
	require.NoError(t, err)
	assert.Len(t, snap.Files(), 1)
}

func TestLoad_AggregatesDecodeErrors(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "a.yaml", header+"kind: Widget\nmetadata:\n  name: a\n")
	writeManifest(t, root, "b.yaml", "apiVersion: apps/v1\nkind: Deployment\n")

	_, err := metadata.Load(context.Background(), metadata.LoadOptions{Paths: []string{root}, Workers: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.yaml")
	assert.Contains(t, err.Error(), "b.yaml")
}

func TestLoad_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "a.yaml", header+"kind: Recipe\nmetadata:\n  name: a\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := metadata.Load(ctx, metadata.LoadOptions{Paths: []string{root}})
	require.ErrorIs(t, err, context.Canceled)
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]binderyv1alpha1.Document
	lookups int
}

func (c *mapCache) Lookup(file string, _ fs.FileInfo) (binderyv1alpha1.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	doc, ok := c.entries[file]
	return doc, ok
}

func (c *mapCache) Store(file string, _ fs.FileInfo, doc binderyv1alpha1.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[file] = doc
	return nil
}

func TestLoad_UsesCache(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, "a.yaml", header+"kind: Recipe\nmetadata:\n  name: a\n")

	cache := &mapCache{entries: map[string]binderyv1alpha1.Document{}}
	_, err := metadata.Load(context.Background(), metadata.LoadOptions{Paths: []string{root}, Cache: cache})
	require.NoError(t, err)
	require.Contains(t, cache.entries, path)

	// A cached document wins over the file on disk.
	require.NoError(t, os.WriteFile(path, []byte("garbage: ["), 0o644))
	snap, err := metadata.Load(context.Background(), metadata.LoadOptions{Paths: []string{root}, Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, snap.Files())
	assert.Equal(t, 2, cache.lookups)
}

type readOnlyCache struct{}

func (readOnlyCache) Lookup(string, fs.FileInfo) (binderyv1alpha1.Document, bool) {
	return binderyv1alpha1.Document{}, false
}

func (readOnlyCache) Store(string, fs.FileInfo, binderyv1alpha1.Document) error {
	return errors.New("read-only database")
}

func TestLoad_CacheWriteFailureIsLogged(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, "a.yaml", header+"kind: Recipe\nmetadata:\n  name: a\n")

	var (
		mu    sync.Mutex
		lines []string
	)
	log := funcr.New(func(_, args string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	snap, err := metadata.Load(context.Background(), metadata.LoadOptions{Paths: []string{root}, Cache: readOnlyCache{}, Logger: log})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, snap.Files())

	mu.Lock()
	defer mu.Unlock()
	var found bool
	for _, l := range lines {
		if strings.Contains(l, "manifest cache write failed") && strings.Contains(l, "read-only database") {
			found = true
		}
	}
	assert.True(t, found, "cache write failure is logged: %v", lines)
}
