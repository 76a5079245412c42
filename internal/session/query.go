package session

import (
	"context"
	"iter"
	"time"

	"github.com/bayleafwalker/bindery-graph/internal/graph"
	"github.com/bayleafwalker/bindery-graph/internal/metrics"
)

// ctxCheckInterval is how many visits a traversal yields between context
// checks.
const ctxCheckInterval = 100

type queryOptions struct {
	limit int
}

type QueryOption func(*queryOptions)

// WithLimit stops a query after n visits. Zero means no limit.
func WithLimit(n int) QueryOption {
	return func(o *queryOptions) {
		o.limit = n
	}
}

// Result holds the visits of one query.
type Result struct {
	Visits []graph.Visit `json:"visits"`
	// Truncated is set when the limit stopped the query early.
	Truncated bool          `json:"truncated,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Files returns the distinct files of the result, in visit order.
func (r Result) Files() []string {
	out := make([]string, 0, len(r.Visits))
	for _, v := range r.Visits {
		if !v.Seen {
			out = append(out, v.File)
		}
	}
	return out
}

func direct(files []string) iter.Seq[graph.Visit] {
	return func(yield func(graph.Visit) bool) {
		for _, f := range files {
			if !yield(graph.Visit{File: f}) {
				return
			}
		}
	}
}

// collect drains seq. A cancelled context discards everything collected so
// far.
func collect(ctx context.Context, query string, seq iter.Seq[graph.Visit], opts []QueryOption) (Result, error) {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	var res Result
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	for v := range seq {
		if n := len(res.Visits); n > 0 && n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		if o.limit > 0 && len(res.Visits) >= o.limit {
			res.Truncated = true
			break
		}
		res.Visits = append(res.Visits, v)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res.Duration = time.Since(start)

	metrics.TraversalVisitsTotal.WithLabelValues(query).Add(float64(len(res.Visits)))
	metrics.TraversalDuration.WithLabelValues(query).Observe(res.Duration.Seconds())
	return res, nil
}
