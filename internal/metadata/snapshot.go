package metadata

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
)

// Snapshot is an immutable, indexed corpus.
type Snapshot struct {
	config      *binderyv1alpha1.Configuration
	definitions map[string]*Definition
	files       []string

	providers  map[string][]string
	rproviders map[string][]string
	overlays   map[string][]string
	ignored    sets.Set[string]

	world    []string
	universe []string
}

var _ Store = (*Snapshot)(nil)

type recipeEntry struct {
	file   string
	recipe *binderyv1alpha1.Recipe
}

type appendEntry struct {
	file    string
	overlay *binderyv1alpha1.RecipeAppend
}

// Builder collects manifests and produces a Snapshot. Recipes keep the order
// in which they are added; that order is the declaration order used to break
// ties during provider selection.
type Builder struct {
	config  *binderyv1alpha1.Configuration
	recipes []recipeEntry
	appends []appendEntry
}

func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfiguration sets the global configuration. A nil configuration is
// treated as empty.
func (b *Builder) WithConfiguration(c *binderyv1alpha1.Configuration) *Builder {
	b.config = c
	return b
}

func (b *Builder) AddRecipe(file string, r *binderyv1alpha1.Recipe) *Builder {
	b.recipes = append(b.recipes, recipeEntry{file: filepath.Clean(file), recipe: r})
	return b
}

func (b *Builder) AddAppend(file string, a *binderyv1alpha1.RecipeAppend) *Builder {
	b.appends = append(b.appends, appendEntry{file: filepath.Clean(file), overlay: a})
	return b
}

// Build indexes everything added so far.
func (b *Builder) Build() (*Snapshot, error) {
	config := b.config.DeepCopy()
	if config == nil {
		config = &binderyv1alpha1.Configuration{}
	}

	masks, err := CompileMasks(config.Spec.Masks)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		config:      config,
		definitions: make(map[string]*Definition, len(b.recipes)),
		providers:   make(map[string][]string),
		rproviders:  make(map[string][]string),
		overlays:    make(map[string][]string),
		ignored:     sets.New(config.Spec.AssumeProvided...),
	}

	world := sets.New[string]()
	universe := sets.New[string]()

	for _, entry := range b.recipes {
		if Masked(masks, entry.file) {
			continue
		}
		if _, dup := s.definitions[entry.file]; dup {
			return nil, fmt.Errorf("definition file %s added twice", entry.file)
		}

		recipe := entry.recipe.DeepCopy()
		for _, a := range b.appends {
			if Masked(masks, a.file) || !a.overlay.Matches(recipe) {
				continue
			}
			recipe.ApplyAppend(a.overlay)
			s.overlays[entry.file] = append(s.overlays[entry.file], a.file)
		}

		def := &Definition{
			File:     entry.file,
			Recipe:   recipe,
			Priority: config.LayerPriority(recipe.Spec.Layer),
			Order:    len(s.files),
		}
		s.definitions[entry.file] = def
		s.files = append(s.files, entry.file)

		for _, name := range recipe.BuildProvides() {
			s.providers[name] = append(s.providers[name], entry.file)
		}
		for _, name := range recipe.RuntimeProvides() {
			s.rproviders[name] = append(s.rproviders[name], entry.file)
		}

		if def.Skipped() {
			continue
		}
		universe.Insert(def.Name())
		if !recipe.Spec.ExcludeFromWorld {
			world.Insert(def.Name())
		}
	}

	sort.Strings(s.files)
	s.world = sets.List(world)
	s.universe = sets.List(universe)
	return s, nil
}

// CompileMasks compiles mask expressions.
func CompileMasks(patterns []string) ([]*regexp.Regexp, error) {
	masks := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile mask %q: %w", p, err)
		}
		masks = append(masks, re)
	}
	return masks, nil
}

// Masked reports whether file matches any mask.
func Masked(masks []*regexp.Regexp, file string) bool {
	for _, re := range masks {
		if re.MatchString(file) {
			return true
		}
	}
	return false
}

func (s *Snapshot) index(kind Kind) map[string][]string {
	if kind == Run {
		return s.rproviders
	}
	return s.providers
}

func (s *Snapshot) CandidatesFor(name string, kind Kind) []string {
	return s.index(kind)[name]
}

func (s *Snapshot) MembersOfAggregate(name string) ([]string, bool) {
	switch name {
	case binderyv1alpha1.AggregateWorld:
		return s.world, true
	case binderyv1alpha1.AggregateUniverse:
		return s.universe, true
	default:
		return nil, false
	}
}

func (s *Snapshot) DeclaredDependencies(file string, kind Kind) []string {
	def, ok := s.definitions[file]
	if !ok {
		return nil
	}
	return def.Recipe.Dependencies(kind)
}

func (s *Snapshot) AppendOverlaysFor(file string) []string {
	return s.overlays[file]
}

func (s *Snapshot) IsIgnored(name string) bool {
	return s.ignored.Has(name)
}

func (s *Snapshot) Definition(file string) (*Definition, bool) {
	def, ok := s.definitions[file]
	return def, ok
}

func (s *Snapshot) ProvideNames(kind Kind) []string {
	idx := s.index(kind)
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Snapshot) Files() []string {
	return s.files
}

func (s *Snapshot) Configuration() *binderyv1alpha1.Configuration {
	return s.config
}
