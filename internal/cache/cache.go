// Package cache persists decoded manifests in an embedded BadgerDB so repeated
// loads of a large corpus skip YAML decoding for files that did not change.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-logr/logr"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
	"github.com/bayleafwalker/bindery-graph/internal/metadata"
)

// entryVersion is bumped whenever the entry or API layout changes so stale
// entries written by older binaries are treated as misses.
const entryVersion = 1

const keyPrefix = "manifest/"

type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	Logger     logr.Logger
}

func DefaultConfig(path string) Config {
	return Config{Path: path}
}

func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Manifests is a metadata.Cache backed by BadgerDB.
type Manifests struct {
	db  *badger.DB
	log logr.Logger
}

var _ metadata.Cache = (*Manifests)(nil)

type entry struct {
	Version       int                            `json:"version"`
	Size          int64                          `json:"size"`
	ModTime       int64                          `json:"modTime"`
	Recipe        *binderyv1alpha1.Recipe        `json:"recipe,omitempty"`
	Append        *binderyv1alpha1.RecipeAppend  `json:"append,omitempty"`
	Configuration *binderyv1alpha1.Configuration `json:"configuration,omitempty"`
}

// badgerLogger routes BadgerDB's internal logging through logr. Badger is
// chatty at info level, so everything but errors goes to V(2).
type badgerLogger struct {
	log logr.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(nil, fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.V(1).Info(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.V(2).Info(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.V(3).Info(fmt.Sprintf(format, args...))
}

// Open opens or creates the cache database.
func Open(cfg Config) (*Manifests, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("cache path is required for a persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	opts = opts.WithLogger(badgerLogger{log: log.WithName("badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open manifest cache: %w", err)
	}
	return &Manifests{db: db, log: log}, nil
}

func (m *Manifests) Close() error {
	return m.db.Close()
}

// Lookup returns the cached document for file when its size and modification
// time still match info.
func (m *Manifests) Lookup(file string, info fs.FileInfo) (binderyv1alpha1.Document, bool) {
	var e entry
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + file))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			m.log.V(1).Info("manifest cache read failed", "file", file, "error", err.Error())
		}
		return binderyv1alpha1.Document{}, false
	}
	if e.Version != entryVersion || e.Size != info.Size() || e.ModTime != info.ModTime().UnixNano() {
		return binderyv1alpha1.Document{}, false
	}
	doc := binderyv1alpha1.Document{Recipe: e.Recipe, Append: e.Append, Configuration: e.Configuration}
	if doc.Kind() == "" {
		return binderyv1alpha1.Document{}, false
	}
	return doc, true
}

func (m *Manifests) Store(file string, info fs.FileInfo, doc binderyv1alpha1.Document) error {
	val, err := json.Marshal(entry{
		Version:       entryVersion,
		Size:          info.Size(),
		ModTime:       info.ModTime().UnixNano(),
		Recipe:        doc.Recipe,
		Append:        doc.Append,
		Configuration: doc.Configuration,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry for %s: %w", file, err)
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+file), val)
	})
}

// Len returns the number of cached manifests.
func (m *Manifests) Len() (int, error) {
	n := 0
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Purge drops every cached manifest.
func (m *Manifests) Purge() error {
	return m.db.DropPrefix([]byte(keyPrefix))
}
