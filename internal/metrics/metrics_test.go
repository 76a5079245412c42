package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCollectsEverything(t *testing.T) {
	n, err := testutil.GatherAndCount(Registry, "bindery_graph_parse_failures_total", "bindery_graph_corpus_definition_files")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWriteTextfile(t *testing.T) {
	CorpusFiles.Set(42)
	ResolutionsTotal.WithLabelValues("build", "resolved").Inc()

	path := filepath.Join(t.TempDir(), "bindery-graph.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bindery_graph_corpus_definition_files 42")
	assert.Contains(t, string(data), `bindery_graph_resolutions_total{kind="build",outcome="resolved"}`)
}
