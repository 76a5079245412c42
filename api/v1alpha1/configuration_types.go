package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Configuration carries the global settings of a corpus: provider and
// version preferences, ignored names, masks and layer priorities.
//
// At most one Configuration is expected per corpus.
type Configuration struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ConfigurationSpec `json:"spec"`
}

type ConfigurationSpec struct {
	// PreferredProviders maps a build provide name to the recipe that should
	// satisfy it.
	PreferredProviders map[string]string `json:"preferredProviders,omitempty"`
	// PreferredRuntimeProviders maps a runtime name to the recipe that should
	// satisfy it.
	PreferredRuntimeProviders map[string]string `json:"preferredRuntimeProviders,omitempty"`
	// PreferredVersions maps a recipe name to a version pattern.
	PreferredVersions map[string]string `json:"preferredVersions,omitempty"`

	// AssumeProvided lists names that are satisfied outside the corpus.
	AssumeProvided []string `json:"assumeProvided,omitempty"`

	// Masks are regular expressions; matching definition files are not loaded.
	Masks []string `json:"masks,omitempty"`

	Layers []LayerRef `json:"layers,omitempty"`

	Variables map[string]string `json:"variables,omitempty"`
}

// LayerPriority returns the priority of the named layer, 0 when unknown.
func (c *Configuration) LayerPriority(name string) int {
	if c == nil {
		return 0
	}
	for _, l := range c.Spec.Layers {
		if l.Name == name {
			return l.Priority
		}
	}
	return 0
}

// Merge layers other over c. Maps are merged key by key, lists are unioned.
func (c *Configuration) Merge(other ConfigurationSpec) {
	c.Spec.PreferredProviders = mergeMap(c.Spec.PreferredProviders, other.PreferredProviders)
	c.Spec.PreferredRuntimeProviders = mergeMap(c.Spec.PreferredRuntimeProviders, other.PreferredRuntimeProviders)
	c.Spec.PreferredVersions = mergeMap(c.Spec.PreferredVersions, other.PreferredVersions)
	c.Spec.Variables = mergeMap(c.Spec.Variables, other.Variables)
	c.Spec.AssumeProvided = appendUnique(c.Spec.AssumeProvided, other.AssumeProvided...)
	c.Spec.Masks = appendUnique(c.Spec.Masks, other.Masks...)
	for _, l := range other.Layers {
		replaced := false
		for i := range c.Spec.Layers {
			if c.Spec.Layers[i].Name == l.Name {
				c.Spec.Layers[i] = l
				replaced = true
			}
		}
		if !replaced {
			c.Spec.Layers = append(c.Spec.Layers, l)
		}
	}
}

func mergeMap(base, over map[string]string) map[string]string {
	if len(over) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(over))
	}
	for k, v := range over {
		base[k] = v
	}
	return base
}
