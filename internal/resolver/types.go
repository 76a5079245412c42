package resolver

import (
	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
	"github.com/bayleafwalker/bindery-graph/internal/metadata"
)

// Catalog is the part of the metadata store the resolver reads.
type Catalog interface {
	CandidatesFor(name string, kind metadata.Kind) []string
	Definition(file string) (*metadata.Definition, bool)
	ProvideNames(kind metadata.Kind) []string
}

// Policy holds the selection preferences of one corpus snapshot.
type Policy struct {
	// PreferredProviders maps a build provide name to a recipe name.
	PreferredProviders map[string]string
	// PreferredRuntimeProviders maps a runtime name to a recipe name.
	PreferredRuntimeProviders map[string]string
	// PreferredVersions maps a recipe name to a version pattern.
	PreferredVersions map[string]string
}

// PolicyFromConfiguration extracts the selection policy from a corpus
// configuration. A nil configuration yields an empty policy.
func PolicyFromConfiguration(c *binderyv1alpha1.Configuration) Policy {
	if c == nil {
		return Policy{}
	}
	return Policy{
		PreferredProviders:        c.Spec.PreferredProviders,
		PreferredRuntimeProviders: c.Spec.PreferredRuntimeProviders,
		PreferredVersions:         c.Spec.PreferredVersions,
	}
}

type Options struct {
	// Quiet suppresses the "multiple providers" notes.
	Quiet bool
}

// Selection is the outcome of resolving one name.
type Selection struct {
	Name string
	Kind metadata.Kind
	// File is the chosen definition file.
	File string
	// Candidates lists every file offering Name, in declaration order.
	Candidates []string
	// Excluded lists the candidates that were not chosen. It is empty when
	// there was a single candidate.
	Excluded []string
	// Filtered holds the reasons candidates were dropped before ranking.
	Filtered []string
}
