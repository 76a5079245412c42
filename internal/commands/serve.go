package commands

import (
	"github.com/spf13/cobra"

	"github.com/bayleafwalker/bindery-graph/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var scope []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resolution and graph queries over HTTP",
		Long: `Load the corpus and the --scope targets once, then answer queries over HTTP
until interrupted. Prometheus metrics are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.open(ctx)
			if err != nil {
				return err
			}
			if err := loadScope(ctx, sess, scope); err != nil {
				return err
			}
			return server.New(sess, a.log).Run(ctx, a.cfg.Serve.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	_ = a.v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))
	addScopeFlag(cmd.Flags(), &scope)
	return cmd
}
