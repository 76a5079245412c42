package introspect

import (
	"context"
	"fmt"
	"os"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
)

// Parser turns a definition file and its append overlays into a recipe.
type Parser interface {
	Parse(ctx context.Context, file string, appends []string) (*binderyv1alpha1.Recipe, error)
}

// ManifestParser reads Recipe manifests from disk and applies RecipeAppend
// overlays in the order given.
type ManifestParser struct{}

var _ Parser = ManifestParser{}

func (ManifestParser) Parse(ctx context.Context, file string, appends []string) (*binderyv1alpha1.Recipe, error) {
	doc, err := readManifest(file)
	if err != nil {
		return nil, err
	}
	if doc.Recipe == nil {
		return nil, fmt.Errorf("%s: expected %s, got %s", file, binderyv1alpha1.KindRecipe, doc.Kind())
	}
	recipe := doc.Recipe

	for _, path := range appends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := readManifest(path)
		if err != nil {
			return nil, err
		}
		if doc.Append == nil {
			return nil, fmt.Errorf("%s: expected %s, got %s", path, binderyv1alpha1.KindRecipeAppend, doc.Kind())
		}
		if doc.Append.Matches(recipe) {
			recipe.ApplyAppend(doc.Append)
		}
	}
	return recipe, nil
}

func readManifest(path string) (binderyv1alpha1.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return binderyv1alpha1.Document{}, err
	}
	doc, err := binderyv1alpha1.Decode(data)
	if err != nil {
		return binderyv1alpha1.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
