package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
	"github.com/bayleafwalker/bindery-graph/internal/metadata"
	"github.com/bayleafwalker/bindery-graph/internal/session"
)

type queryFlags struct {
	kind      string
	recursive bool
	limit     int
	scope     []string
}

func (f *queryFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.kind, "kind", "k", "all", "Dependency kind to follow: build, run or all")
	fs.BoolVarP(&f.recursive, "recursive", "R", false, "Follow edges transitively")
	fs.IntVar(&f.limit, "limit", 0, "Stop after this many visits; 0 means no limit")
	addScopeFlag(fs, &f.scope)
}

func addScopeFlag(fs *pflag.FlagSet, scope *[]string) {
	fs.StringSliceVar(scope, "scope", []string{binderyv1alpha1.AggregateUniverse},
		"Targets to load before querying; world and universe expand to the corpus")
}

// loadScope binds the scope targets for both kinds so every edge between
// them is known before a query runs.
func loadScope(ctx context.Context, sess *session.Session, scope []string) error {
	for _, kind := range metadata.Kinds {
		if err := sess.AddTargets(ctx, scope, kind); err != nil {
			return err
		}
	}
	return nil
}

type queryFunc func(s *session.Session, ctx context.Context, file string, kinds []metadata.Kind, recursive bool, opts ...session.QueryOption) (session.Result, error)

func dependeesCmd(a *app) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "dependees TARGET|FILE",
		Short: "List the files that depend on a target",
		Long: `List the definition files whose declared dependencies resolve to the file
providing TARGET. With --recursive the walk continues through dependees of
dependees; a file reached a second time is marked (seen) and not expanded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.query(cmd.Context(), f, args[0], (*session.Session).DependeesOf)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func dependersCmd(a *app) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "dependers TARGET|FILE",
		Short: "List the files a target depends on",
		Long: `List the definition files that the declared dependencies of the file
providing TARGET resolve to. With --recursive the walk continues through
their own dependencies.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.query(cmd.Context(), f, args[0], (*session.Session).DependersOf)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (a *app) query(ctx context.Context, f *queryFlags, arg string, run queryFunc) error {
	kinds, err := metadata.ParseKinds(f.kind)
	if err != nil {
		return err
	}
	if f.limit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", f.limit)
	}

	sess, err := a.open(ctx)
	if err != nil {
		return err
	}
	if err := loadScope(ctx, sess, f.scope); err != nil {
		return err
	}
	file, err := sess.LookupFile(ctx, arg)
	if err != nil {
		return err
	}

	res, err := run(sess, ctx, file, kinds, f.recursive, session.WithLimit(f.limit))
	if err != nil {
		return err
	}
	a.log.V(1).Info("query finished", "root", file, "visits", len(res.Visits), "duration", res.Duration)
	return a.printer.Visits(file, res.Visits, res.Truncated)
}
