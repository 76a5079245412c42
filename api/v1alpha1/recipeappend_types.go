package v1alpha1

import (
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// RecipeAppend is an overlay applied on top of every matching recipe when it
// is parsed.
type RecipeAppend struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec RecipeAppendSpec `json:"spec"`
}

type RecipeAppendSpec struct {
	// Recipe is the name of the recipe this overlay applies to.
	Recipe string `json:"recipe"`
	// Version restricts the overlay to matching versions. A trailing "%"
	// matches any suffix. Empty matches every version.
	Version string `json:"version,omitempty"`

	Provides  []string          `json:"provides,omitempty"`
	Depends   []string          `json:"depends,omitempty"`
	RProvides []string          `json:"rprovides,omitempty"`
	RDepends  []string          `json:"rdepends,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
}

// Matches reports whether the overlay applies to r.
func (a *RecipeAppend) Matches(r *Recipe) bool {
	if a == nil || r == nil || a.Spec.Recipe != r.GetName() {
		return false
	}
	pattern := a.Spec.Version
	switch {
	case pattern == "":
		return true
	case strings.HasSuffix(pattern, "%"):
		return strings.HasPrefix(r.Spec.Version, strings.TrimSuffix(pattern, "%"))
	default:
		return pattern == r.Spec.Version
	}
}
