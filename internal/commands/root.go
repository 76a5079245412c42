package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/bayleafwalker/bindery-graph/internal/cache"
	"github.com/bayleafwalker/bindery-graph/internal/config"
	"github.com/bayleafwalker/bindery-graph/internal/metadata"
	"github.com/bayleafwalker/bindery-graph/internal/metrics"
	"github.com/bayleafwalker/bindery-graph/internal/output"
	"github.com/bayleafwalker/bindery-graph/internal/session"
)

// Version is set at build time.
var Version = "dev"

// errTargetsFailed makes the process exit non-zero after the failures were
// already reported.
var errTargetsFailed = errors.New("one or more targets could not be resolved")

// app carries state shared by every subcommand of one invocation.
type app struct {
	v          *viper.Viper
	configPath string
	verbose    bool
	metrics    string
	zapOpts    zap.Options

	cfg     *config.Config
	log     logr.Logger
	printer *output.Printer
	stderr  io.Writer

	cache   *cache.Manifests
	session *session.Session
}

// RootCmd creates the bindery-graph command tree. Callers that run it
// themselves must call the returned cleanup afterwards.
func RootCmd() (*cobra.Command, func() error) {
	a := &app{
		v:       config.New(),
		zapOpts: zap.Options{Development: true, StacktraceLevel: zapcore.PanicLevel},
	}

	cmd := &cobra.Command{
		Use:   "bindery-graph",
		Short: "Resolve recipe providers and query the dependency graph of a corpus",
		Long: `bindery-graph loads a corpus of recipe manifests, resolves provide names to
their preferred definition files and answers dependency questions:

  bindery-graph resolve busybox              # which file provides busybox
  bindery-graph dependees zlib --recursive   # what is affected if zlib changes
  bindery-graph dependers busybox            # what busybox needs
  bindery-graph why /corpus/zlib.yaml        # why zlib is part of the build`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default ./bindery-graph.yaml)")
	flags.StringSlice("corpus", nil, "Corpus root directory; repeat for several roots")
	flags.String("cache-dir", "", "Directory of the manifest cache; empty disables caching")
	flags.StringP("output", "o", "text", "Output format: text, json or yaml")
	flags.String("color", "auto", "Colour text output: auto, always or never")
	flags.StringVar(&a.metrics, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	gofs := flag.NewFlagSet("zap", flag.ContinueOnError)
	a.zapOpts.BindFlags(gofs)
	flags.AddGoFlagSet(gofs)

	for key, name := range map[string]string{
		"corpus.paths":  "corpus",
		"cache.dir":     "cache-dir",
		"output.format": "output",
		"output.color":  "color",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	cmd.AddCommand(
		resolveCmd(a),
		dependeesCmd(a),
		dependersCmd(a),
		preferredCmd(a),
		filesCmd(a),
		showCmd(a),
		whyCmd(a),
		serveCmd(a),
	)
	return cmd, a.teardown
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd, cleanup := RootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := errors.Join(cmd.ExecuteContext(ctx), cleanup())
	if err != nil && !errors.Is(err, errTargetsFailed) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.stderr = cmd.ErrOrStderr()

	switch {
	case a.verbose:
		a.zapOpts.Level = uberzap.NewAtomicLevelAt(zapcore.Level(-2))
	case a.zapOpts.Level == nil:
		a.zapOpts.Level = uberzap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	a.zapOpts.DestWriter = a.stderr
	a.log = zap.New(zap.UseFlagOptions(&a.zapOpts))

	a.printer, err = output.New(cmd.OutOrStdout(), cfg.Output.Format, cfg.Output.Color)
	return err
}

func (a *app) teardown() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.metrics != "" {
		errs = append(errs, metrics.WriteTextfile(a.metrics))
	}
	return errors.Join(errs...)
}

// open loads the corpus once per invocation.
func (a *app) open(ctx context.Context) (*session.Session, error) {
	if a.session != nil {
		return a.session, nil
	}
	if len(a.cfg.Corpus.Paths) == 0 {
		return nil, errors.New("no corpus configured: pass --corpus or set corpus.paths")
	}

	load := metadata.LoadOptions{
		Paths:             a.cfg.Corpus.Paths,
		ConfigurationFile: a.cfg.Corpus.Configuration,
		Overrides:         a.cfg.Overrides(),
		Workers:           a.cfg.Corpus.Workers,
		Logger:            a.log.WithName("loader"),
	}
	if a.cfg.Cache.Dir != "" {
		c, err := cache.Open(cache.Config{Path: a.cfg.Cache.Dir, Logger: a.log.WithName("cache")})
		if err != nil {
			return nil, err
		}
		a.cache = c
		load.Cache = c
	}

	err := output.Status(a.stderr, "Loading corpus", func() error {
		s, err := session.Open(ctx, load, session.Options{Logger: a.log})
		a.session = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return a.session, nil
}
