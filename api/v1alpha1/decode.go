package v1alpha1

import (
	"errors"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/yaml"
)

var (
	// ErrUnsupportedKind is returned for documents whose apiVersion or kind
	// is not part of this API.
	ErrUnsupportedKind = errors.New("unsupported manifest kind")
)

// Document is one decoded manifest. Exactly one field is set.
type Document struct {
	Recipe        *Recipe
	Append        *RecipeAppend
	Configuration *Configuration
}

// Kind returns the kind of the decoded document.
func (d Document) Kind() string {
	switch {
	case d.Recipe != nil:
		return KindRecipe
	case d.Append != nil:
		return KindRecipeAppend
	case d.Configuration != nil:
		return KindConfiguration
	default:
		return ""
	}
}

// Decode decodes a single YAML or JSON manifest.
func Decode(data []byte) (Document, error) {
	var tm metav1.TypeMeta
	if err := yaml.Unmarshal(data, &tm); err != nil {
		return Document{}, fmt.Errorf("decode type meta: %w", err)
	}
	gv, err := schema.ParseGroupVersion(tm.APIVersion)
	if err != nil {
		return Document{}, fmt.Errorf("parse apiVersion %q: %w", tm.APIVersion, err)
	}
	if gv != GroupVersion {
		return Document{}, fmt.Errorf("%w: apiVersion %q", ErrUnsupportedKind, tm.APIVersion)
	}

	switch tm.Kind {
	case KindRecipe:
		var r Recipe
		if err := yaml.UnmarshalStrict(data, &r); err != nil {
			return Document{}, fmt.Errorf("decode %s: %w", tm.Kind, err)
		}
		if r.GetName() == "" {
			return Document{}, fmt.Errorf("decode %s: metadata.name is required", tm.Kind)
		}
		return Document{Recipe: &r}, nil
	case KindRecipeAppend:
		var a RecipeAppend
		if err := yaml.UnmarshalStrict(data, &a); err != nil {
			return Document{}, fmt.Errorf("decode %s: %w", tm.Kind, err)
		}
		if a.Spec.Recipe == "" {
			return Document{}, fmt.Errorf("decode %s: spec.recipe is required", tm.Kind)
		}
		return Document{Append: &a}, nil
	case KindConfiguration:
		var c Configuration
		if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return Document{}, fmt.Errorf("decode %s: %w", tm.Kind, err)
		}
		return Document{Configuration: &c}, nil
	default:
		return Document{}, fmt.Errorf("%w: kind %q", ErrUnsupportedKind, tm.Kind)
	}
}
