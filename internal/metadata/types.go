// Package metadata holds the read-only view of a recipe corpus: which
// definition files exist, what they provide and what they declare as
// dependencies.
//
// A Snapshot is built once, before any resolution starts, and is never
// modified afterwards. It is safe to share between goroutines.
package metadata

import (
	"fmt"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
)

// Kind selects build-time or run-time relationships.
type Kind = binderyv1alpha1.DependencyKind

const (
	Build = binderyv1alpha1.DependencyKindBuild
	Run   = binderyv1alpha1.DependencyKindRun
)

// Kinds lists every dependency kind in a stable order.
var Kinds = []Kind{Build, Run}

// ParseKinds maps "build", "run" or "all" to kinds. "all" and the empty
// string yield nil, which queries treat as every kind.
func ParseKinds(s string) ([]Kind, error) {
	switch s {
	case "", "all":
		return nil, nil
	case string(Build):
		return []Kind{Build}, nil
	case string(Run):
		return []Kind{Run}, nil
	}
	return nil, fmt.Errorf("kind must be build, run or all, got %q", s)
}

// Store is the capability surface the resolver, registry and introspector
// consume. Snapshot is the only production implementation.
type Store interface {
	// CandidatesFor returns the definition files offering name, in
	// declaration order.
	CandidatesFor(name string, kind Kind) []string
	// MembersOfAggregate expands "world" or "universe". ok is false for
	// any other name.
	MembersOfAggregate(name string) (members []string, ok bool)
	DeclaredDependencies(file string, kind Kind) []string
	AppendOverlaysFor(file string) []string
	IsIgnored(name string) bool

	Definition(file string) (*Definition, bool)
	// ProvideNames returns every name with at least one candidate, sorted.
	ProvideNames(kind Kind) []string
	// Files returns every known definition file, sorted.
	Files() []string
	Configuration() *binderyv1alpha1.Configuration
}

// Definition is a loaded definition file with its append overlays applied.
type Definition struct {
	File     string
	Recipe   *binderyv1alpha1.Recipe
	Priority int
	// Order is the declaration position across the whole corpus.
	Order int
}

func (d *Definition) Name() string {
	return d.Recipe.GetName()
}

func (d *Definition) Version() string {
	return d.Recipe.Spec.Version
}

func (d *Definition) Skipped() bool {
	return d.Recipe.Spec.SkipReason != ""
}
