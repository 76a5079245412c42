// Package metadatatest builds small in-memory corpora for tests.
package metadatatest

import (
	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
)

// Option mutates a recipe under construction.
type Option func(*binderyv1alpha1.Recipe)

// Recipe returns a Recipe manifest named name.
func Recipe(name string, opts ...Option) *binderyv1alpha1.Recipe {
	r := &binderyv1alpha1.Recipe{}
	r.APIVersion = binderyv1alpha1.GroupVersion.String()
	r.Kind = binderyv1alpha1.KindRecipe
	r.Name = name
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func Version(v string) Option {
	return func(r *binderyv1alpha1.Recipe) { r.Spec.Version = v }
}

func Provides(names ...string) Option {
	return func(r *binderyv1alpha1.Recipe) { r.Spec.Provides = append(r.Spec.Provides, names...) }
}

func Depends(names ...string) Option {
	return func(r *binderyv1alpha1.Recipe) { r.Spec.Depends = append(r.Spec.Depends, names...) }
}

func Packages(names ...string) Option {
	return func(r *binderyv1alpha1.Recipe) { r.Spec.Packages = append(r.Spec.Packages, names...) }
}

func RProvides(names ...string) Option {
	return func(r *binderyv1alpha1.Recipe) { r.Spec.RProvides = append(r.Spec.RProvides, names...) }
}

func RDepends(names ...string) Option {
	return func(r *binderyv1alpha1.Recipe) { r.Spec.RDepends = append(r.Spec.RDepends, names...) }
}

func DefaultPreference(p int) Option {
	return func(r *binderyv1alpha1.Recipe) { r.Spec.DefaultPreference = p }
}

func Layer(name string) Option {
	return func(r *binderyv1alpha1.Recipe) { r.Spec.Layer = name }
}

func Skip(reason string) Option {
	return func(r *binderyv1alpha1.Recipe) { r.Spec.SkipReason = reason }
}

func ExcludeFromWorld() Option {
	return func(r *binderyv1alpha1.Recipe) { r.Spec.ExcludeFromWorld = true }
}

func Variable(key, value string) Option {
	return func(r *binderyv1alpha1.Recipe) {
		if r.Spec.Variables == nil {
			r.Spec.Variables = map[string]string{}
		}
		r.Spec.Variables[key] = value
	}
}

// Append returns a RecipeAppend overlay for recipe.
func Append(recipe string, spec binderyv1alpha1.RecipeAppendSpec) *binderyv1alpha1.RecipeAppend {
	a := &binderyv1alpha1.RecipeAppend{}
	a.APIVersion = binderyv1alpha1.GroupVersion.String()
	a.Kind = binderyv1alpha1.KindRecipeAppend
	a.Name = recipe + "-append"
	spec.Recipe = recipe
	a.Spec = spec
	return a
}

// File returns the conventional test path for a recipe file.
func File(name string) string {
	return "/corpus/" + name + ".yaml"
}
