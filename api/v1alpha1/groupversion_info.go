// Package v1alpha1 contains the manifest types that make up a recipe corpus.
//
// Every definition file is a single YAML document in the usual
// apiVersion/kind/metadata/spec layout. Field names follow the JSON tags;
// documents are decoded with sigs.k8s.io/yaml.
package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var (
	// GroupVersion is the group and version of every corpus manifest.
	GroupVersion = schema.GroupVersion{Group: "recipes.bindery.dev", Version: "v1alpha1"}
)

const (
	KindRecipe        = "Recipe"
	KindRecipeAppend  = "RecipeAppend"
	KindConfiguration = "Configuration"
)

// GroupVersionKind returns the fully qualified kind for one of the kinds above.
func GroupVersionKind(kind string) schema.GroupVersionKind {
	return GroupVersion.WithKind(kind)
}
