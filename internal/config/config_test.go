package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindery-graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.Empty(t, cfg.Corpus.Paths)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
corpus:
  paths: [layers/core, layers/bsp]
  workers: 4
cache:
  dir: /tmp/bindery-cache
policy:
  preferredProviders:
    virtual/kernel: linux-yocto
  preferredVersions:
    linux-yocto: "6.6%"
  assumeProvided: [git-native]
output:
  format: json
`)

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"layers/core", "layers/bsp"}, cfg.Corpus.Paths)
	assert.Equal(t, 4, cfg.Corpus.Workers)
	assert.Equal(t, "/tmp/bindery-cache", cfg.Cache.Dir)
	assert.Equal(t, "json", cfg.Output.Format)

	overrides := cfg.Overrides()
	assert.Equal(t, "linux-yocto", overrides.PreferredProviders["virtual/kernel"])
	assert.Equal(t, "6.6%", overrides.PreferredVersions["linux-yocto"])
	assert.Equal(t, []string{"git-native"}, overrides.AssumeProvided)
}

func TestLoad_PolicyKeysKeepCase(t *testing.T) {
	path := writeConfig(t, `
policy:
  preferredProviders:
    virtual/libGL: mesa
  preferredRuntimeProviders:
    SSH-Server: dropbear
  preferredVersions:
    Qt6-Base: "6.5%"
`)

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	overrides := cfg.Overrides()
	assert.Equal(t, map[string]string{"virtual/libGL": "mesa"}, overrides.PreferredProviders)
	assert.Equal(t, map[string]string{"SSH-Server": "dropbear"}, overrides.PreferredRuntimeProviders)
	assert.Equal(t, map[string]string{"Qt6-Base": "6.5%"}, overrides.PreferredVersions)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "output:\n  format: json\n")
	t.Setenv("BINDERY_GRAPH_OUTPUT_FORMAT", "yaml")
	t.Setenv("BINDERY_GRAPH_SERVE_ADDR", "127.0.0.1:9090")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "127.0.0.1:9090", cfg.Serve.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(New(), writeConfig(t, "output:\n  format: xml\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")

	_, err = Load(New(), writeConfig(t, "corpus:\n  workers: -1\n"))
	require.Error(t, err)

	_, err = Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "an explicit config file must exist")
}
