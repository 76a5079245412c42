// Package introspect parses resolved definition files into flat metadata.
package introspect

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/bindery-graph/internal/metadata"
	"github.com/bayleafwalker/bindery-graph/internal/metrics"
)

// TargetFiles binds a provide name to its definition file.
type TargetFiles interface {
	TargetFile(ctx context.Context, name string, kind metadata.Kind) (string, error)
}

type Introspector struct {
	store   metadata.Store
	targets TargetFiles
	parser  Parser
	log     logr.Logger

	global Data
}

func New(store metadata.Store, targets TargetFiles, parser Parser, log logr.Logger) *Introspector {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Introspector{
		store:   store,
		targets: targets,
		parser:  parser,
		log:     log,
		global:  configurationData(store.Configuration()),
	}
}

// ParseDefinition parses file together with its append overlays. Parser
// errors are returned unchanged.
func (i *Introspector) ParseDefinition(ctx context.Context, file string) (Data, error) {
	appends := i.store.AppendOverlaysFor(file)
	i.log.V(2).Info("parsing definition", "file", file, "appends", len(appends))

	recipe, err := i.parser.Parse(ctx, file, appends)
	if err != nil {
		metrics.ParseFailuresTotal.Inc()
		return nil, err
	}
	return recipeData(file, recipe, i.global), nil
}

// ParseTargetMetadata resolves name as a build target and parses its file.
// An empty name returns the global configuration data.
func (i *Introspector) ParseTargetMetadata(ctx context.Context, name string) (Data, error) {
	if name == "" {
		out := make(Data, len(i.global))
		for k, v := range i.global {
			out[k] = v
		}
		return out, nil
	}
	file, err := i.targets.TargetFile(ctx, name, metadata.Build)
	if err != nil {
		return nil, err
	}
	return i.ParseDefinition(ctx, file)
}
