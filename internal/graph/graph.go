// Package graph answers dependee and dependency queries over the edges
// recorded by a registry.
//
// Traversals keep no state between calls. The edges must not change while a
// traversal is running.
package graph

import (
	"iter"
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bayleafwalker/bindery-graph/internal/metadata"
	"github.com/bayleafwalker/bindery-graph/internal/registry"
)

// EdgeSource is the part of a registry the walker reads.
type EdgeSource interface {
	TargetsBoundTo(file string, kind metadata.Kind) []registry.Target
	Dependees(t registry.Target) []string
	Dependencies(file string, kind metadata.Kind) []string
}

var _ EdgeSource = (*registry.Registry)(nil)

// Visit is one step of a recursive traversal.
type Visit struct {
	File  string `json:"file"`
	Depth int    `json:"depth"`
	// Seen is set when File was already visited earlier in the same
	// traversal. Such a node is not expanded again.
	Seen bool `json:"seen,omitempty"`
}

type Walker struct {
	edges EdgeSource
}

func NewWalker(edges EdgeSource) *Walker {
	return &Walker{edges: edges}
}

func kindsOrAll(kinds []metadata.Kind) []metadata.Kind {
	if len(kinds) == 0 {
		return metadata.Kinds
	}
	return kinds
}

// DirectDependees returns the files that declared a dependency of one of the
// given kinds resolving to file. No kinds means every kind.
func (w *Walker) DirectDependees(file string, kinds ...metadata.Kind) []string {
	out := sets.New[string]()
	for _, kind := range kindsOrAll(kinds) {
		for _, t := range w.edges.TargetsBoundTo(file, kind) {
			out.Insert(w.edges.Dependees(t)...)
		}
	}
	out.Delete(file)
	return sets.List(out)
}

// AllDependees returns the build and run dependees of file.
func (w *Walker) AllDependees(file string) []string {
	return w.DirectDependees(file, metadata.Kinds...)
}

// DirectDependers returns the files that file's declared dependencies of the
// given kinds resolve to. No kinds means every kind.
func (w *Walker) DirectDependers(file string, kinds ...metadata.Kind) []string {
	out := sets.New[string]()
	for _, kind := range kindsOrAll(kinds) {
		out.Insert(w.edges.Dependencies(file, kind)...)
	}
	out.Delete(file)
	return sets.List(out)
}

// RecursiveDependees walks dependees of file depth first.
func (w *Walker) RecursiveDependees(file string, kinds ...metadata.Kind) iter.Seq[Visit] {
	return walk(file, func(f string) []string { return w.DirectDependees(f, kinds...) })
}

// RecursiveDependers walks dependencies of file depth first.
func (w *Walker) RecursiveDependers(file string, kinds ...metadata.Kind) iter.Seq[Visit] {
	return walk(file, func(f string) []string { return w.DirectDependers(f, kinds...) })
}

type frame struct {
	file  string
	depth int
}

// walk yields a pre-order traversal from root. Neighbours of root are at
// depth 0. The seen-set starts with root, so a path leading back to it is
// reported with Seen set. Neighbours are pushed in reverse so they are
// visited in the order next returns them.
func walk(root string, next func(string) []string) iter.Seq[Visit] {
	return func(yield func(Visit) bool) {
		seen := sets.New(root)
		var stack []frame
		push := func(files []string, depth int) {
			for _, f := range slices.Backward(files) {
				stack = append(stack, frame{file: f, depth: depth})
			}
		}
		push(next(root), 0)

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if seen.Has(top.file) {
				if !yield(Visit{File: top.file, Depth: top.depth, Seen: true}) {
					return
				}
				continue
			}
			seen.Insert(top.file)
			if !yield(Visit{File: top.file, Depth: top.depth}) {
				return
			}
			push(next(top.file), top.depth+1)
		}
	}
}
