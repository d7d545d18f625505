package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/joeydtaylor/steeze-phases/pkg/core"
	"github.com/joeydtaylor/steeze-phases/pkg/manifest"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/metrics"
	"github.com/spf13/cobra"
)

var errNotLinked = errors.New("handler is not linked into this binary")

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the sorted pipeline for a manifest",
	Long: `Print the layers of the pipeline a manifest produces, in execution order.

Inproc handlers that are not linked into this binary are shown with a
placeholder so the plan can still be computed.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	path := manifestPath()
	cfg, err := manifest.Load(path)
	if err != nil {
		return err
	}
	for _, rt := range cfg.Routes {
		if rt.Handler.Type != manifest.HandlerInproc {
			continue
		}
		if _, ok := core.LookupInproc(rt.Handler.Name); !ok {
			core.RegisterInproc(rt.Handler.Name, func(context.Context, []byte) ([]byte, int, error) {
				return nil, http.StatusNotImplemented, errNotLinked
			})
		}
	}

	_, s, err := core.BuildRouter(cfg, core.BuildDeps{
		Auth:      auth.ProvideAuthentication(),
		LogMW:     logger.NewMiddleware(nil),
		Collector: metrics.NewCollector(),
		Metrics:   metrics.ProvideMetrics(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s (%s)\n", path, manifest.FormatOf(path))
	fmt.Fprintf(out, "%3s  %-16s %-5s %-24s %s\n", "#", "PHASE", "KIND", "PATH", "HANDLERS")
	for _, e := range s.Plan() {
		fmt.Fprintln(out, e)
	}
	return nil
}
