// corpus-bench measures resolution and traversal against a synthetic corpus,
// or a real one with -corpus, using several concurrent sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
	"github.com/bayleafwalker/bindery-graph/internal/metadata"
	"github.com/bayleafwalker/bindery-graph/internal/session"
)

func main() {
	var recipes int
	var sessions int
	var corpus string
	var root string

	flag.IntVar(&recipes, "recipes", 20000, "Number of synthetic recipes")
	flag.IntVar(&sessions, "sessions", 4, "Number of concurrent sessions")
	flag.StringVar(&corpus, "corpus", "", "Load this corpus instead of generating one")
	flag.StringVar(&root, "root", "", "Target to walk dependees of (default: the first synthetic recipe)")
	flag.Parse()

	ctx := context.Background()
	start := time.Now()
	var store metadata.Store
	var err error
	if corpus != "" {
		store, err = metadata.Load(ctx, metadata.LoadOptions{Paths: []string{corpus}})
	} else {
		store, err = synthetic(recipes)
		if root == "" {
			root = recipeName(0)
		}
	}
	if err != nil {
		log.Fatalf("Error building corpus: %v", err)
	}
	fmt.Printf("Corpus of %d files ready in %v\n", len(store.Files()), time.Since(start))

	var wg sync.WaitGroup
	type sample struct {
		resolve, walk time.Duration
		visits        int
	}
	samples := make(chan sample, sessions)
	start = time.Now()

	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sess := session.New(store, session.Options{Logger: logr.Discard(), Quiet: true})

			t0 := time.Now()
			if err := sess.AddTargets(ctx, []string{binderyv1alpha1.AggregateUniverse}, metadata.Build); err != nil {
				fmt.Printf("Session %d: resolve failed: %v\n", id, err)
				return
			}
			resolved := time.Since(t0)

			if root == "" {
				samples <- sample{resolve: resolved}
				return
			}
			file, err := sess.LookupFile(ctx, root)
			if err != nil {
				fmt.Printf("Session %d: %v\n", id, err)
				return
			}
			res, err := sess.DependeesOf(ctx, file, nil, true)
			if err != nil {
				fmt.Printf("Session %d: walk failed: %v\n", id, err)
				return
			}
			samples <- sample{resolve: resolved, walk: res.Duration, visits: len(res.Visits)}
		}(i)
	}

	wg.Wait()
	close(samples)
	total := time.Since(start)

	var resolveSum, walkSum time.Duration
	count, visits := 0, 0
	for s := range samples {
		resolveSum += s.resolve
		walkSum += s.walk
		visits = s.visits
		count++
	}
	if count == 0 {
		fmt.Printf("Benchmark completed in %v. No session finished.\n", total)
		return
	}
	fmt.Printf("Benchmark completed in %v. Avg universe resolve: %v, avg dependee walk: %v (%d visits)\n",
		total, resolveSum/time.Duration(count), walkSum/time.Duration(count), visits)
}

func recipeName(i int) string {
	return fmt.Sprintf("synthetic-%06d", i)
}

// synthetic builds n recipes where recipe i depends on i-1 and i/2, and every
// tenth recipe has a second provider of its name in a higher layer.
func synthetic(n int) (*metadata.Snapshot, error) {
	b := metadata.NewBuilder().WithConfiguration(&binderyv1alpha1.Configuration{
		Spec: binderyv1alpha1.ConfigurationSpec{
			Layers: []binderyv1alpha1.LayerRef{{Name: "base", Priority: 1}, {Name: "overlay", Priority: 2}},
		},
	})
	for i := 0; i < n; i++ {
		r := &binderyv1alpha1.Recipe{
			TypeMeta:   metav1.TypeMeta{APIVersion: binderyv1alpha1.GroupVersion.String(), Kind: binderyv1alpha1.KindRecipe},
			ObjectMeta: metav1.ObjectMeta{Name: recipeName(i)},
			Spec:       binderyv1alpha1.RecipeSpec{Version: "1.0", Layer: "base"},
		}
		if i > 0 {
			r.Spec.Depends = []string{recipeName(i - 1), recipeName(i / 2)}
			r.Spec.RDepends = []string{recipeName(i - 1)}
		}
		b.AddRecipe(fmt.Sprintf("/synthetic/base/%s.yaml", r.Name), r)

		if i%10 == 0 {
			alt := r.DeepCopy()
			alt.Spec.Layer = "overlay"
			alt.Spec.Version = "1.1"
			b.AddRecipe(fmt.Sprintf("/synthetic/overlay/%s.yaml", r.Name), alt)
		}
	}
	return b.Build()
}
