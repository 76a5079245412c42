package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every collector of this process. The server exposes it at
// /metrics and the CLI can dump it to a textfile.
var Registry = prometheus.NewRegistry()

var (
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bindery_graph_resolutions_total",
			Help: "Number of target resolutions by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	RegistryTargets = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bindery_graph_registry_targets",
			Help: "Number of targets held by the most recently updated registry, by kind.",
		},
		[]string{"kind"},
	)

	TraversalVisitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bindery_graph_traversal_visits_total",
			Help: "Number of nodes yielded by graph queries.",
		},
		[]string{"query"},
	)

	TraversalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bindery_graph_traversal_duration_seconds",
			Help:    "Time taken to answer a graph query.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	CorpusFiles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bindery_graph_corpus_definition_files",
			Help: "Number of definition files in the most recently loaded corpus.",
		},
	)

	CorpusLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bindery_graph_corpus_load_duration_seconds",
			Help:    "Time taken to load and index a corpus.",
			Buckets: prometheus.DefBuckets,
		},
	)

	ManifestCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bindery_graph_manifest_cache_lookups_total",
			Help: "Manifest cache lookups by result (hit or miss).",
		},
		[]string{"result"},
	)

	ParseFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bindery_graph_parse_failures_total",
			Help: "Number of definition parses that failed in the introspector.",
		},
	)
)

func init() {
	Registry.MustRegister(
		ResolutionsTotal,
		RegistryTargets,
		TraversalVisitsTotal,
		TraversalDuration,
		CorpusFiles,
		CorpusLoadDuration,
		ManifestCacheLookupsTotal,
		ParseFailuresTotal,
	)
}

// WriteTextfile writes the current state of Registry in the text exposition
// format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
