package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Recipe declares one buildable unit: what it provides and what it needs.
//
// The recipe name (metadata.name) is always provided at build time and, unless
// spec.packages says otherwise, is also the single runtime package.
type Recipe struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec RecipeSpec `json:"spec"`
}

type RecipeSpec struct {
	Version string `json:"version,omitempty"`

	// Provides lists additional build-time provide names.
	Provides []string `json:"provides,omitempty"`
	// Depends lists build-time provide names this recipe needs.
	Depends []string `json:"depends,omitempty"`

	// Packages lists the runtime names this recipe produces.
	// Defaults to the recipe name.
	Packages  []string `json:"packages,omitempty"`
	RProvides []string `json:"rprovides,omitempty"`
	RDepends  []string `json:"rdepends,omitempty"`

	// DefaultPreference ranks versions of the same recipe before version
	// ordering is applied. Negative values push a version down.
	DefaultPreference int `json:"defaultPreference,omitempty"`

	ExcludeFromWorld bool `json:"excludeFromWorld,omitempty"`

	// SkipReason marks a recipe that exists but can never be selected.
	SkipReason string `json:"skipReason,omitempty"`

	Layer string `json:"layer,omitempty"`

	Variables map[string]string `json:"variables,omitempty"`
}

// BuildProvides returns every build-time name the recipe satisfies, the
// recipe name first.
func (r *Recipe) BuildProvides() []string {
	return appendUnique([]string{r.GetName()}, r.Spec.Provides...)
}

// RuntimeProvides returns every runtime name the recipe satisfies.
func (r *Recipe) RuntimeProvides() []string {
	pkgs := r.Spec.Packages
	if len(pkgs) == 0 {
		pkgs = []string{r.GetName()}
	}
	return appendUnique(append([]string(nil), pkgs...), r.Spec.RProvides...)
}

// Dependencies returns the declared dependency names of the given kind.
func (r *Recipe) Dependencies(kind DependencyKind) []string {
	switch kind {
	case DependencyKindBuild:
		return r.Spec.Depends
	case DependencyKindRun:
		return r.Spec.RDepends
	default:
		return nil
	}
}

// ApplyAppend merges an append overlay into the recipe in place.
func (r *Recipe) ApplyAppend(a *RecipeAppend) {
	if a == nil {
		return
	}
	r.Spec.Provides = appendUnique(r.Spec.Provides, a.Spec.Provides...)
	r.Spec.Depends = appendUnique(r.Spec.Depends, a.Spec.Depends...)
	r.Spec.RProvides = appendUnique(r.Spec.RProvides, a.Spec.RProvides...)
	r.Spec.RDepends = appendUnique(r.Spec.RDepends, a.Spec.RDepends...)
	if len(a.Spec.Variables) > 0 && r.Spec.Variables == nil {
		r.Spec.Variables = make(map[string]string, len(a.Spec.Variables))
	}
	for k, v := range a.Spec.Variables {
		r.Spec.Variables[k] = v
	}
}
