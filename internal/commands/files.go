package commands

import (
	"github.com/spf13/cobra"
)

func preferredCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preferred",
		Short: "List the preferred definition file of every provide name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			files, err := sess.PreferredFiles(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Files(files)
		},
	}
}

func filesCmd(a *app) *cobra.Command {
	var (
		targets bool
		scope   []string
	)
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the definition files of the corpus",
		Long: `List every definition file in the corpus, including masked and skipped ones.
With --targets only the files bound to a target of --scope are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if !targets {
				return a.printer.Files(sess.AllKnownFiles())
			}
			if err := loadScope(cmd.Context(), sess, scope); err != nil {
				return err
			}
			return a.printer.Files(sess.TargetFiles())
		},
	}
	cmd.Flags().BoolVarP(&targets, "targets", "t", false, "Only list files bound to a target")
	addScopeFlag(cmd.Flags(), &scope)
	return cmd
}
