package commands

import (
	"github.com/spf13/cobra"

	"github.com/bayleafwalker/bindery-graph/internal/metadata"
)

func resolveCmd(a *app) *cobra.Command {
	var runtime bool

	cmd := &cobra.Command{
		Use:   "resolve TARGET...",
		Short: "Resolve provide names to their preferred definition files",
		Long: `Resolve each TARGET and everything it transitively depends on, then print
the file chosen for every requested target. The aggregates "world" and
"universe" expand to every recipe in the corpus.

The command exits non-zero when a target is unknown or has conflicting
preferred providers. Names listed under assumeProvided are reported but do
not count as failures.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := metadata.Build
			if runtime {
				kind = metadata.Run
			}

			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			report, err := sess.Resolve(cmd.Context(), args, kind)
			if err != nil {
				return err
			}
			if err := a.printer.Report(report); err != nil {
				return err
			}
			if report.Failed() {
				return errTargetsFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&runtime, "runtime", "r", false, "Resolve runtime provides instead of build provides")
	return cmd
}
