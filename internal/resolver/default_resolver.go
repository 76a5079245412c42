package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bayleafwalker/bindery-graph/internal/metadata"
	"github.com/bayleafwalker/bindery-graph/internal/semver"
)

// DefaultResolver ranks candidates the way a layered recipe corpus expects:
// version preferences first, then layer priority, then explicit provider
// preferences.
type DefaultResolver struct {
	catalog Catalog
	policy  Policy
	log     logr.Logger
	opts    Options
}

var _ Resolver = (*DefaultResolver)(nil)

func NewDefault(catalog Catalog, policy Policy, log logr.Logger, opts Options) *DefaultResolver {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &DefaultResolver{
		catalog: catalog,
		policy:  policy,
		log:     log,
		opts:    opts,
	}
}

func (r *DefaultResolver) Resolve(ctx context.Context, name string, kind metadata.Kind) (Selection, error) {
	if err := ctx.Err(); err != nil {
		return Selection{}, err
	}

	files := r.catalog.CandidatesFor(name, kind)
	if len(files) == 0 {
		return Selection{}, unknownTarget(name, kind)
	}
	sel := Selection{Name: name, Kind: kind, Candidates: files}

	// Group by recipe name, keeping the order in which names first appear.
	var recipes []string
	versions := make(map[string][]*metadata.Definition)
	for _, file := range files {
		def, ok := r.catalog.Definition(file)
		if !ok {
			sel.Filtered = append(sel.Filtered, fmt.Sprintf("%s: not part of the corpus", file))
			continue
		}
		if def.Skipped() {
			sel.Filtered = append(sel.Filtered, fmt.Sprintf("%s: skipped: %s", file, def.Recipe.Spec.SkipReason))
			continue
		}
		if _, seen := versions[def.Name()]; !seen {
			recipes = append(recipes, def.Name())
		}
		versions[def.Name()] = append(versions[def.Name()], def)
	}

	eligible := make([]*metadata.Definition, 0, len(recipes))
	for _, pn := range recipes {
		best, reason := r.preferredVersion(pn, versions[pn])
		if best == nil {
			sel.Filtered = append(sel.Filtered, reason)
			continue
		}
		eligible = append(eligible, best)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Priority > eligible[j].Priority
	})

	eligible, err := r.preferredProvider(name, kind, eligible)
	if err != nil {
		return Selection{}, err
	}
	if len(eligible) == 0 {
		return Selection{}, ambiguousProvider(name, kind, sel.Filtered)
	}

	sel.File = eligible[0].File
	if len(files) > 1 {
		for _, file := range files {
			if file != sel.File {
				sel.Excluded = append(sel.Excluded, file)
			}
		}
	}
	return sel, nil
}

// preferredVersion picks one file among the versions of a single recipe.
// It returns nil and a reason when a version preference matches nothing.
func (r *DefaultResolver) preferredVersion(pn string, defs []*metadata.Definition) (*metadata.Definition, string) {
	if pattern := r.policy.PreferredVersions[pn]; pattern != "" {
		matched := make([]*metadata.Definition, 0, len(defs))
		available := make([]string, 0, len(defs))
		for _, def := range defs {
			available = append(available, def.Version())
			if semver.MatchPattern(pattern, def.Version()) {
				matched = append(matched, def)
			}
		}
		if len(matched) == 0 {
			return nil, fmt.Sprintf("%s: preferred version %q not available (have %s)",
				pn, pattern, strings.Join(available, ", "))
		}
		defs = matched
	}

	best := defs[0]
	for _, def := range defs[1:] {
		if outranks(def, best) {
			best = def
		}
	}
	return best, ""
}

func outranks(a, b *metadata.Definition) bool {
	if a.Recipe.Spec.DefaultPreference != b.Recipe.Spec.DefaultPreference {
		return a.Recipe.Spec.DefaultPreference > b.Recipe.Spec.DefaultPreference
	}
	if c := semver.CompareRaw(a.Version(), b.Version()); c != 0 {
		return c > 0
	}
	return a.Order < b.Order
}

// preferredProvider moves an explicitly preferred recipe to the front.
func (r *DefaultResolver) preferredProvider(name string, kind metadata.Kind, eligible []*metadata.Definition) ([]*metadata.Definition, error) {
	if len(eligible) < 2 {
		return eligible, nil
	}

	var wanted []string
	switch kind {
	case metadata.Build:
		if pn, ok := r.policy.PreferredProviders[name]; ok {
			wanted = []string{pn}
		}
	case metadata.Run:
		if pn, ok := r.policy.PreferredRuntimeProviders[name]; ok {
			wanted = []string{pn}
			break
		}
		// A recipe that is the preferred build provider of anything it
		// provides is preferred at runtime as well.
		for _, def := range eligible {
			for _, p := range def.Recipe.BuildProvides() {
				if r.policy.PreferredProviders[p] == def.Name() {
					wanted = append(wanted, def.Name())
					break
				}
			}
		}
	}

	switch len(wanted) {
	case 0:
		r.noteMultiple(name, kind, eligible)
		return eligible, nil
	case 1:
		for i, def := range eligible {
			if def.Name() != wanted[0] {
				continue
			}
			reordered := make([]*metadata.Definition, 0, len(eligible))
			reordered = append(reordered, def)
			reordered = append(reordered, eligible[:i]...)
			return append(reordered, eligible[i+1:]...), nil
		}
		r.log.V(1).Info("preferred provider is not among the eligible candidates",
			"target", name, "kind", kind, "preferred", wanted[0])
		return eligible, nil
	default:
		return nil, ambiguousProvider(name, kind, []string{
			fmt.Sprintf("conflicting preferred providers: %s", strings.Join(wanted, ", ")),
		})
	}
}

func (r *DefaultResolver) noteMultiple(name string, kind metadata.Kind, eligible []*metadata.Definition) {
	if r.opts.Quiet {
		return
	}
	names := make([]string, 0, len(eligible))
	for _, def := range eligible {
		names = append(names, def.Name())
	}
	r.log.V(1).Info("multiple providers available, set a preferred provider to choose one explicitly",
		"target", name, "kind", kind, "providers", names, "chosen", names[0])
}

func (r *DefaultResolver) PreferredFiles(ctx context.Context) ([]string, error) {
	chosen := sets.New[string]()
	excluded := sets.New[string]()
	for _, name := range r.catalog.ProvideNames(metadata.Build) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sel, err := r.Resolve(ctx, name, metadata.Build)
		if err != nil {
			continue
		}
		chosen.Insert(sel.File)
		excluded.Insert(sel.Excluded...)
	}
	return sets.List(chosen.Difference(excluded)), nil
}
