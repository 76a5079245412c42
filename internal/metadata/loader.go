package metadata

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
	"github.com/bayleafwalker/bindery-graph/internal/metrics"
)

// Cache stores decoded manifests between runs. Implementations must treat a
// changed size or modification time as a miss.
type Cache interface {
	Lookup(file string, info fs.FileInfo) (binderyv1alpha1.Document, bool)
	Store(file string, info fs.FileInfo, doc binderyv1alpha1.Document) error
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Paths are corpus roots. Their order is the declaration order.
	Paths []string
	// ConfigurationFile is an optional Configuration manifest outside the
	// corpus roots, merged over any Configuration found inside them.
	ConfigurationFile string
	// Overrides is merged last, over every Configuration manifest.
	Overrides binderyv1alpha1.ConfigurationSpec
	// Workers bounds concurrent file decoding. Defaults to GOMAXPROCS.
	Workers int
	Cache   Cache
	Logger  logr.Logger
}

type decoded struct {
	file string
	doc  binderyv1alpha1.Document
}

// Load walks the corpus roots, decodes every manifest and builds a Snapshot.
//
// Files are decoded concurrently; decode failures are collected and returned
// together as an aggregate, in which case no Snapshot is produced.
func Load(ctx context.Context, opts LoadOptions) (*Snapshot, error) {
	start := time.Now()
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	earlyMasks, err := CompileMasks(opts.Overrides.Masks)
	if err != nil {
		return nil, err
	}

	files, err := discover(opts.Paths, earlyMasks)
	if err != nil {
		return nil, err
	}
	var configFile string
	if opts.ConfigurationFile != "" {
		if configFile, err = filepath.Abs(opts.ConfigurationFile); err != nil {
			return nil, fmt.Errorf("resolve configuration path: %w", err)
		}
		files = append(files, configFile)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]decoded, len(files))
	var (
		mu   sync.Mutex
		errs []error
		hits int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, hit, err := decodeFile(file, opts.Cache, log)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", file, err))
				return nil
			}
			if hit {
				hits++
			}
			results[i] = decoded{file: file, doc: doc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if agg := utilerrors.NewAggregate(errs); agg != nil {
		return nil, fmt.Errorf("load corpus: %w", agg)
	}

	config := &binderyv1alpha1.Configuration{}
	b := NewBuilder()
	var explicit *binderyv1alpha1.Configuration
	for _, r := range results {
		switch {
		case r.doc.Recipe != nil:
			b.AddRecipe(r.file, r.doc.Recipe)
		case r.doc.Append != nil:
			b.AddAppend(r.file, r.doc.Append)
		case r.doc.Configuration != nil:
			if configFile != "" && r.file == configFile {
				explicit = r.doc.Configuration
				continue
			}
			config.Merge(r.doc.Configuration.Spec)
		}
	}
	if explicit != nil {
		config.Merge(explicit.Spec)
	}
	config.Merge(opts.Overrides)

	snap, err := b.WithConfiguration(config).Build()
	if err != nil {
		return nil, err
	}

	metrics.CorpusFiles.Set(float64(len(snap.Files())))
	metrics.CorpusLoadDuration.Observe(time.Since(start).Seconds())
	log.V(1).Info("loaded corpus",
		"roots", len(opts.Paths),
		"manifests", len(files),
		"definitionFiles", len(snap.Files()),
		"cacheHits", hits,
		"duration", time.Since(start),
	)
	return snap, nil
}

// discover lists manifest files under every root, root order first and
// lexical order inside a root. Hidden directories are skipped.
func discover(roots []string, masks []*regexp.Regexp) ([]string, error) {
	var files []string
	for _, root := range roots {
		root, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve corpus path: %w", err)
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !isManifest(path) || Masked(masks, path) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk corpus %s: %w", root, err)
		}
	}
	return files, nil
}

func isManifest(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func decodeFile(file string, cache Cache, log logr.Logger) (binderyv1alpha1.Document, bool, error) {
	info, err := os.Stat(file)
	if err != nil {
		return binderyv1alpha1.Document{}, false, err
	}
	if cache != nil {
		if doc, ok := cache.Lookup(file, info); ok {
			metrics.ManifestCacheLookupsTotal.WithLabelValues("hit").Inc()
			return doc, true, nil
		}
		metrics.ManifestCacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return binderyv1alpha1.Document{}, false, err
	}
	doc, err := binderyv1alpha1.Decode(data)
	if err != nil {
		return binderyv1alpha1.Document{}, false, err
	}
	if cache != nil {
		// Cache writes are best effort.
		if err := cache.Store(file, info, doc); err != nil {
			log.V(1).Info("manifest cache write failed", "file", file, "error", err.Error())
		}
	}
	return doc, false, nil
}
