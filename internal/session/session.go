// Package session wires a corpus snapshot to the resolver, registry, walker
// and introspector, and is the API the CLI and the server talk to.
//
// A Session is not safe for concurrent use. Independent sessions may share a
// snapshot.
package session

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/bindery-graph/internal/graph"
	"github.com/bayleafwalker/bindery-graph/internal/introspect"
	"github.com/bayleafwalker/bindery-graph/internal/metadata"
	"github.com/bayleafwalker/bindery-graph/internal/registry"
	"github.com/bayleafwalker/bindery-graph/internal/resolver"
)

type Options struct {
	Logger logr.Logger
	// Parser defaults to introspect.ManifestParser.
	Parser introspect.Parser
	// Quiet suppresses notes about targets with several providers.
	Quiet bool
}

type Session struct {
	store        metadata.Store
	resolver     resolver.Resolver
	registry     *registry.Registry
	walker       *graph.Walker
	introspector *introspect.Introspector
	log          logr.Logger
}

func New(store metadata.Store, opts Options) *Session {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	parser := opts.Parser
	if parser == nil {
		parser = introspect.ManifestParser{}
	}

	res := resolver.NewDefault(store, resolver.PolicyFromConfiguration(store.Configuration()),
		log.WithName("resolver"), resolver.Options{Quiet: opts.Quiet})
	reg := registry.New(store, res, log.WithName("registry"))
	return &Session{
		store:        store,
		resolver:     res,
		registry:     reg,
		walker:       graph.NewWalker(reg),
		introspector: introspect.New(store, reg, parser, log.WithName("introspect")),
		log:          log,
	}
}

// Open loads a corpus and starts a session over it.
func Open(ctx context.Context, load metadata.LoadOptions, opts Options) (*Session, error) {
	if load.Logger.GetSink() == nil {
		load.Logger = opts.Logger
	}
	snap, err := metadata.Load(ctx, load)
	if err != nil {
		return nil, err
	}
	return New(snap, opts), nil
}

func (s *Session) Store() metadata.Store {
	return s.store
}

// AddTargets grows the target set without producing a report.
func (s *Session) AddTargets(ctx context.Context, names []string, kind metadata.Kind) error {
	return s.registry.AddTargets(ctx, names, kind)
}

// Resolve adds targets and reports their outcome. Unknown and ambiguous
// targets are logged with their reasons; ignored ones are not.
func (s *Session) Resolve(ctx context.Context, targets []string, kind metadata.Kind) (registry.Report, error) {
	report, err := s.registry.Resolve(ctx, targets, kind)
	if err != nil {
		return registry.Report{}, err
	}
	for _, st := range report.Targets {
		if st.Err == nil || errors.Is(st.Err, registry.ErrIgnoredTarget) {
			continue
		}
		s.log.Error(st.Err, "unable to resolve target", "target", st.Name, "kind", st.Kind, "reasons", registry.Reasons(st.Err))
	}
	return report, nil
}

// LookupFile accepts either a definition file path or a build provide name
// and returns the definition file it designates.
func (s *Session) LookupFile(ctx context.Context, nameOrPath string) (string, error) {
	if abs, err := filepath.Abs(nameOrPath); err == nil {
		if _, ok := s.store.Definition(abs); ok {
			return abs, nil
		}
	}
	return s.registry.TargetFile(ctx, nameOrPath, metadata.Build)
}

func (s *Session) PreferredFiles(ctx context.Context) ([]string, error) {
	return s.registry.PreferredFiles(ctx)
}

func (s *Session) AllKnownFiles() []string {
	return s.registry.AllKnownFiles()
}

func (s *Session) TargetFiles() []string {
	return s.registry.TargetFiles()
}

func (s *Session) Requests(file string) []registry.Request {
	return s.registry.Requests(file)
}

func (s *Session) ParseDefinition(ctx context.Context, file string) (introspect.Data, error) {
	return s.introspector.ParseDefinition(ctx, file)
}

func (s *Session) ParseTargetMetadata(ctx context.Context, name string) (introspect.Data, error) {
	return s.introspector.ParseTargetMetadata(ctx, name)
}

// DependeesOf lists the files depending on file through edges of the given
// kinds. No kinds means every kind.
func (s *Session) DependeesOf(ctx context.Context, file string, kinds []metadata.Kind, recursive bool, opts ...QueryOption) (Result, error) {
	if recursive {
		return collect(ctx, "dependees", s.walker.RecursiveDependees(file, kinds...), opts)
	}
	return collect(ctx, "dependees", direct(s.walker.DirectDependees(file, kinds...)), opts)
}

// DependersOf lists the files that file depends on through edges of the
// given kinds. No kinds means every kind.
func (s *Session) DependersOf(ctx context.Context, file string, kinds []metadata.Kind, recursive bool, opts ...QueryOption) (Result, error) {
	if recursive {
		return collect(ctx, "dependers", s.walker.RecursiveDependers(file, kinds...), opts)
	}
	return collect(ctx, "dependers", direct(s.walker.DirectDependers(file, kinds...)), opts)
}
