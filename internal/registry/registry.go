// Package registry binds targets to definition files and records who
// depends on whom.
//
// A Registry starts empty and only grows: every target added, resolved or
// not, is kept with its outcome for the lifetime of the session. It is not
// safe for concurrent use.
package registry

import (
	"context"
	"errors"
	"sort"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bayleafwalker/bindery-graph/internal/metadata"
	"github.com/bayleafwalker/bindery-graph/internal/metrics"
	"github.com/bayleafwalker/bindery-graph/internal/resolver"
)

type entry struct {
	file string
	err  error
	// requested is set once the target was asked for directly.
	requested bool
	dependees []string
	seen      sets.Set[string]
}

func (e *entry) addDependee(file string) {
	if e.seen.Has(file) {
		return
	}
	e.seen.Insert(file)
	e.dependees = append(e.dependees, file)
}

type binding struct {
	file string
	kind metadata.Kind
}

type Registry struct {
	store    metadata.Store
	resolver resolver.Resolver
	log      logr.Logger

	targets map[Target]*entry
	order   []Target
	bound   map[binding][]Target
}

func New(store metadata.Store, res resolver.Resolver, log logr.Logger) *Registry {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Registry{
		store:    store,
		resolver: res,
		log:      log,
		targets:  make(map[Target]*entry),
		bound:    make(map[binding][]Target),
	}
}

type pending struct {
	target   Target
	depender string
}

// journal records how to undo the changes of one AddTargets call.
type journal []func()

func (j journal) rollback() {
	for i := len(j) - 1; i >= 0; i-- {
		j[i]()
	}
}

// AddTargets resolves names of the given kind and, transitively, everything
// the bound files declare as dependencies. Names already present are not
// resolved again. Aggregates are expanded first and never stored.
//
// Resolution failures are kept on the affected targets. The only error
// returned is the context's, and then the registry is left as it was before
// the call.
func (r *Registry) AddTargets(ctx context.Context, names []string, kind metadata.Kind) error {
	var work []pending
	expanded := r.expand(names)
	// Pushed in reverse so the first requested name is processed first.
	for i := len(expanded) - 1; i >= 0; i-- {
		work = append(work, pending{target: Target{Name: expanded[i], Kind: kind}})
	}

	var undo journal
	added := 0
	for len(work) > 0 {
		next := work[len(work)-1]
		work = work[:len(work)-1]

		e, ok := r.targets[next.target]
		if !ok {
			var err error
			if e, err = r.bind(ctx, next.target, &undo); err != nil {
				undo.rollback()
				return err
			}
			added++
			if e.file != "" {
				work = r.pushDependencies(work, e.file)
			}
		}
		switch {
		case next.depender == "":
			if !e.requested {
				e.requested = true
				undo = append(undo, func() { e.requested = false })
			}
		case !e.seen.Has(next.depender):
			e.addDependee(next.depender)
			depender := next.depender
			undo = append(undo, func() {
				e.seen.Delete(depender)
				e.dependees = e.dependees[:len(e.dependees)-1]
			})
		}
	}

	if added > 0 {
		for _, k := range metadata.Kinds {
			metrics.RegistryTargets.WithLabelValues(string(k)).Set(float64(r.Len(k)))
		}
	}
	return nil
}

func (r *Registry) bind(ctx context.Context, t Target, undo *journal) (*entry, error) {
	e := &entry{seen: sets.New[string]()}
	outcome := "resolved"

	if r.store.IsIgnored(t.Name) {
		e.err = &TargetError{Target: t, Err: ErrIgnoredTarget}
		outcome = "ignored"
	} else {
		sel, err := r.resolver.Resolve(ctx, t.Name, t.Kind)
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, resolver.ErrUnknownTarget):
			e.err = &TargetError{Target: t, Err: err}
			outcome = "unknown"
		case err != nil:
			e.err = &TargetError{Target: t, Err: err}
			outcome = "ambiguous"
		default:
			e.file = sel.File
			b := binding{file: sel.File, kind: t.Kind}
			r.bound[b] = append(r.bound[b], t)
			*undo = append(*undo, func() {
				if ts := r.bound[b][:len(r.bound[b])-1]; len(ts) > 0 {
					r.bound[b] = ts
				} else {
					delete(r.bound, b)
				}
			})
		}
	}

	r.targets[t] = e
	r.order = append(r.order, t)
	*undo = append(*undo, func() {
		delete(r.targets, t)
		r.order = r.order[:len(r.order)-1]
	})
	metrics.ResolutionsTotal.WithLabelValues(string(t.Kind), outcome).Inc()
	if e.file != "" {
		r.log.V(2).Info("bound target", "target", t.Name, "kind", t.Kind, "file", e.file)
	} else {
		r.log.V(2).Info("target not bound", "target", t.Name, "kind", t.Kind, "outcome", outcome)
	}
	return e, nil
}

// pushDependencies queues the declared dependencies of file: build
// dependencies as build targets, run dependencies as run targets.
func (r *Registry) pushDependencies(work []pending, file string) []pending {
	for i := len(metadata.Kinds) - 1; i >= 0; i-- {
		kind := metadata.Kinds[i]
		deps := r.expand(r.store.DeclaredDependencies(file, kind))
		for j := len(deps) - 1; j >= 0; j-- {
			work = append(work, pending{target: Target{Name: deps[j], Kind: kind}, depender: file})
		}
	}
	return work
}

// expand replaces aggregates by their members and drops repeated names,
// keeping the first occurrence.
func (r *Registry) expand(names []string) []string {
	seen := sets.New[string]()
	out := make([]string, 0, len(names))
	for _, name := range names {
		members := []string{name}
		if m, ok := r.store.MembersOfAggregate(name); ok {
			members = m
		}
		for _, m := range members {
			if seen.Has(m) {
				continue
			}
			seen.Insert(m)
			out = append(out, m)
		}
	}
	return out
}

// Resolve adds names and reports the outcome of each of them.
func (r *Registry) Resolve(ctx context.Context, names []string, kind metadata.Kind) (Report, error) {
	if err := r.AddTargets(ctx, names, kind); err != nil {
		return Report{}, err
	}

	report := Report{Kind: kind}
	for _, name := range r.expand(names) {
		t := Target{Name: name, Kind: kind}
		e := r.targets[t]
		report.Targets = append(report.Targets, TargetStatus{Target: t, File: e.file, Err: e.err})
	}
	report.Diagnostics = r.Diagnostics()
	return report, nil
}

// Diagnostics returns every target that failed to bind, in the order the
// targets were added.
func (r *Registry) Diagnostics() Diagnostics {
	var d Diagnostics
	for _, t := range r.order {
		e := r.targets[t]
		switch {
		case e.err == nil:
		case isIgnored(e.err):
			d.Ignored = append(d.Ignored, t)
		default:
			d.Unresolved = append(d.Unresolved, TargetStatus{Target: t, Err: e.err})
		}
	}
	return d
}

// File returns the file bound to a target. Targets that were never added
// report resolver.ErrUnknownTarget.
func (r *Registry) File(name string, kind metadata.Kind) (string, error) {
	t := Target{Name: name, Kind: kind}
	e, ok := r.targets[t]
	if !ok {
		return "", &TargetError{Target: t, Err: resolver.ErrUnknownTarget}
	}
	return e.file, e.err
}

// TargetFile adds name and returns its bound file.
func (r *Registry) TargetFile(ctx context.Context, name string, kind metadata.Kind) (string, error) {
	if err := r.AddTargets(ctx, []string{name}, kind); err != nil {
		return "", err
	}
	return r.File(name, kind)
}

// TargetFiles returns every file bound to at least one target, sorted.
func (r *Registry) TargetFiles() []string {
	files := sets.New[string]()
	for b := range r.bound {
		files.Insert(b.file)
	}
	return sets.List(files)
}

// AllKnownFiles returns every definition file of the corpus.
func (r *Registry) AllKnownFiles() []string {
	return r.store.Files()
}

func (r *Registry) PreferredFiles(ctx context.Context) ([]string, error) {
	return r.resolver.PreferredFiles(ctx)
}

// Len returns the number of targets of kind, bound or not.
func (r *Registry) Len(kind metadata.Kind) int {
	n := 0
	for t := range r.targets {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// TargetsBoundTo returns the targets of kind bound to file, in the order
// they were added.
func (r *Registry) TargetsBoundTo(file string, kind metadata.Kind) []Target {
	return r.bound[binding{file: file, kind: kind}]
}

// Dependees returns the files that declared a dependency on t.
func (r *Registry) Dependees(t Target) []string {
	if e, ok := r.targets[t]; ok {
		return e.dependees
	}
	return nil
}

// Dependencies returns the files that the kind dependencies declared by file
// are bound to. Unbound dependencies are skipped.
func (r *Registry) Dependencies(file string, kind metadata.Kind) []string {
	var out []string
	seen := sets.New[string]()
	for _, name := range r.expand(r.store.DeclaredDependencies(file, kind)) {
		e, ok := r.targets[Target{Name: name, Kind: kind}]
		if !ok || e.file == "" || seen.Has(e.file) {
			continue
		}
		seen.Insert(e.file)
		out = append(out, e.file)
	}
	return out
}

// Requests explains why file is part of the target set, sorted by target
// and then depender.
func (r *Registry) Requests(file string) []Request {
	var out []Request
	for _, kind := range metadata.Kinds {
		for _, t := range r.TargetsBoundTo(file, kind) {
			e := r.targets[t]
			if e.requested {
				out = append(out, Request{Target: t})
			}
			for _, d := range e.dependees {
				out = append(out, Request{Target: t, Depender: d})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Target.Kind != out[j].Target.Kind {
			return out[i].Target.Kind < out[j].Target.Kind
		}
		if out[i].Target.Name != out[j].Target.Name {
			return out[i].Target.Name < out[j].Target.Name
		}
		return out[i].Depender < out[j].Depender
	})
	return out
}

func isIgnored(err error) bool {
	return errors.Is(err, ErrIgnoredTarget)
}
