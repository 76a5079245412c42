package commands

import (
	"github.com/spf13/cobra"
)

func showCmd(a *app) *cobra.Command {
	var vars []string
	cmd := &cobra.Command{
		Use:   "show [TARGET]",
		Short: "Print the metadata of a target or the global configuration",
		Long: `Parse the file providing TARGET with its appends applied and print its
variables. Without TARGET the global configuration is printed. With a single
--var only the raw value is written, which is handy in scripts:

  bindery-graph show busybox --var PV`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			data, err := sess.ParseTargetMetadata(cmd.Context(), name)
			if err != nil {
				return err
			}
			return a.printer.Data(data, vars)
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Only print this variable; repeatable")
	return cmd
}

func whyCmd(a *app) *cobra.Command {
	var scope []string
	cmd := &cobra.Command{
		Use:   "why TARGET|FILE",
		Short: "Explain which requests bound a definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.open(ctx)
			if err != nil {
				return err
			}
			if err := loadScope(ctx, sess, scope); err != nil {
				return err
			}
			file, err := sess.LookupFile(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printer.Requests(file, sess.Requests(file))
		},
	}
	addScopeFlag(cmd.Flags(), &scope)
	return cmd
}
