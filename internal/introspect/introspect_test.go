package introspect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
	"github.com/bayleafwalker/bindery-graph/internal/metadata"
	"github.com/bayleafwalker/bindery-graph/internal/metrics"
	"github.com/bayleafwalker/bindery-graph/internal/registry"
	"github.com/bayleafwalker/bindery-graph/internal/resolver"
)

const header = "apiVersion: recipes.bindery.dev/v1alpha1\n"

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(header+body), 0o644))
	}
	return root
}

func newIntrospector(t *testing.T, root string, parser Parser) (*Introspector, *metadata.Snapshot) {
	t.Helper()
	snap, err := metadata.Load(context.Background(), metadata.LoadOptions{Paths: []string{root}})
	require.NoError(t, err)
	res := resolver.NewDefault(snap, resolver.PolicyFromConfiguration(snap.Configuration()), logr.Discard(), resolver.Options{})
	reg := registry.New(snap, res, logr.Discard())
	return New(snap, reg, parser, logr.Discard()), snap
}

var corpus = map[string]string{
	"recipes/curl.yaml": `kind: Recipe
metadata:
  name: curl
spec:
  version: "8.6.0"
  provides: [libcurl]
  depends: [zlib]
  layer: core
  variables:
    SUMMARY: Command line tool for transferring data
    DISTRO: recipe-override
`,
	"recipes/zlib.yaml": `kind: Recipe
metadata:
  name: zlib
spec:
  version: "1.3.1"
`,
	"appends/curl.yaml": `kind: RecipeAppend
metadata:
  name: curl-openssl
spec:
  recipe: curl
  depends: [openssl]
  variables:
    PACKAGECONFIG: ssl
`,
	"conf/site.yaml": `kind: Configuration
metadata:
  name: site
spec:
  preferredProviders:
    virtual/libc: glibc
  assumeProvided: [quilt-native]
  layers:
  - name: core
    priority: 5
  variables:
    DISTRO: poky
`,
}

func TestIntrospector_ParseTargetMetadata(t *testing.T) {
	root := writeCorpus(t, corpus)
	in, _ := newIntrospector(t, root, ManifestParser{})

	data, err := in.ParseTargetMetadata(context.Background(), "libcurl")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "recipes/curl.yaml"), data["FILE"])
	assert.Equal(t, "curl", data["PN"])
	assert.Equal(t, "8.6.0", data["PV"])
	assert.Equal(t, "curl libcurl", data["PROVIDES"])
	assert.Equal(t, "zlib openssl", data["DEPENDS"], "append overlays are applied")
	assert.Equal(t, "ssl", data["PACKAGECONFIG"])
	assert.Equal(t, "recipe-override", data["DISTRO"], "recipe variables win over global ones")
	assert.Equal(t, "glibc", data["PREFERRED_PROVIDER_virtual/libc"])
	assert.Equal(t, "core", data["LAYER"])

	v, ok := data.Get("SUMMARY")
	assert.True(t, ok)
	assert.Equal(t, "Command line tool for transferring data", v)
	assert.IsIncreasing(t, data.Keys())
}

func TestIntrospector_GlobalData(t *testing.T) {
	in, _ := newIntrospector(t, writeCorpus(t, corpus), ManifestParser{})

	data, err := in.ParseTargetMetadata(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "poky", data["DISTRO"])
	assert.Equal(t, "quilt-native", data["ASSUME_PROVIDED"])
	assert.Equal(t, "5", data["LAYER_PRIORITY_core"])
	_, ok := data.Get("PN")
	assert.False(t, ok)

	// The returned map is a copy.
	data["DISTRO"] = "changed"
	again, err := in.ParseTargetMetadata(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "poky", again["DISTRO"])
}

func TestIntrospector_UnknownTarget(t *testing.T) {
	in, _ := newIntrospector(t, writeCorpus(t, corpus), ManifestParser{})

	_, err := in.ParseTargetMetadata(context.Background(), "libnope")
	assert.ErrorIs(t, err, resolver.ErrUnknownTarget)
}

type failingParser struct {
	err   error
	calls int
}

func (p *failingParser) Parse(context.Context, string, []string) (*binderyv1alpha1.Recipe, error) {
	p.calls++
	return nil, p.err
}

func TestIntrospector_ParseFailureIsReturnedUnchanged(t *testing.T) {
	root := writeCorpus(t, corpus)
	boom := errors.New("syntax error on line 3")
	parser := &failingParser{err: boom}
	in, _ := newIntrospector(t, root, parser)

	before := testutil.ToFloat64(metrics.ParseFailuresTotal)
	_, err := in.ParseDefinition(context.Background(), filepath.Join(root, "recipes/zlib.yaml"))
	assert.Same(t, boom, err)
	assert.Equal(t, 1, parser.calls, "failures are not retried")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ParseFailuresTotal))
}

func TestManifestParser_RejectsWrongKind(t *testing.T) {
	root := writeCorpus(t, corpus)
	_, err := ManifestParser{}.Parse(context.Background(), filepath.Join(root, "conf/site.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected Recipe")

	_, err = ManifestParser{}.Parse(context.Background(), filepath.Join(root, "recipes/curl.yaml"),
		[]string{filepath.Join(root, "recipes/zlib.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected RecipeAppend")
}
