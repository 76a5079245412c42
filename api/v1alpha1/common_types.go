package v1alpha1

// DependencyKind separates build-time from run-time relationships.
type DependencyKind string

const (
	DependencyKindBuild DependencyKind = "build"
	DependencyKindRun   DependencyKind = "run"
)

// Aggregate target names. They expand to many recipe names and are never
// resolved directly.
const (
	AggregateWorld    = "world"
	AggregateUniverse = "universe"
)

// LayerRef assigns a priority to a named layer. Recipes in higher priority
// layers are preferred over recipes in lower priority layers.
type LayerRef struct {
	Name     string `json:"name"`
	Priority int    `json:"priority,omitempty"`
}

// appendUnique appends the values of extra that are not already in base,
// keeping first-seen order.
func appendUnique(base []string, extra ...string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	for _, v := range extra {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		base = append(base, v)
	}
	return base
}
