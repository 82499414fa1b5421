package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"github.com/hupe1980/learnedbench"
	"github.com/hupe1980/learnedbench/bench"
	"github.com/hupe1980/learnedbench/observability"
)

type runFlags struct {
	config      string
	format      string
	output      string
	kinds       []string
	readers     int
	metricsAddr string
	pushURL     string
}

func newRunCmd(root *rootFlags) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "build every configured kind and run the workload",
		Long: `
Load a YAML config, load or generate its dataset, then build each kind in
turn, run the sampled range and kNN workload on it and print a report.

Without --config a 100k point uniform 2-D dataset is benchmarked on every kind.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := root.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runBench(cmd.Context(), cmd, flags, logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.config, "config", "c", "", "YAML config file")
	f.StringVar(&flags.format, "format", "", "report format: text or json (overrides the config)")
	f.StringVarP(&flags.output, "output", "o", "", "write the report to this file instead of stdout")
	f.StringSliceVar(&flags.kinds, "kinds", nil, "kinds to run (overrides the config)")
	f.IntVar(&flags.readers, "readers", 0, "concurrent query readers (overrides the config)")
	f.StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	f.StringVar(&flags.pushURL, "push-gateway", "", "push metrics to this Pushgateway URL when done")

	return cmd
}

func loadRunConfig(flags runFlags) (bench.Config, error) {
	cfg := bench.DefaultConfig()
	if flags.config != "" {
		var err error
		if cfg, err = bench.LoadConfigFile(flags.config); err != nil {
			return bench.Config{}, err
		}
	}
	if len(flags.kinds) > 0 {
		cfg.Kinds = flags.kinds
	}
	if flags.readers > 0 {
		cfg.Readers = flags.readers
	}
	if flags.format != "" {
		cfg.Format = bench.Format(flags.format)
	}
	return cfg, cfg.Validate()
}

func runBench(ctx context.Context, cmd *cobra.Command, flags runFlags, logger *learnedbench.Logger) error {
	cfg, err := loadRunConfig(flags)
	if err != nil {
		return err
	}

	var (
		buildOpts []learnedbench.Option
		reg       *prometheus.Registry
	)
	if flags.metricsAddr != "" || flags.pushURL != "" {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector, err := observability.NewPrometheusCollector(reg)
		if err != nil {
			return err
		}
		buildOpts = append(buildOpts, learnedbench.WithMetricsCollector(collector))
	}

	if flags.metricsAddr != "" {
		stop, err := serveMetrics(flags.metricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	points, name, err := cfg.LoadPoints(ctx)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "dataset loaded", "name", name, "points", len(points))

	suite, err := bench.NewSuite(cfg, logger, buildOpts...)
	if err != nil {
		return err
	}
	results, err := suite.Run(ctx, points)
	if err != nil {
		return err
	}

	if flags.pushURL != "" {
		if err := push.New(flags.pushURL, "learnedbench").Gatherer(reg).PushContext(ctx); err != nil {
			return fmt.Errorf("push metrics: %w", err)
		}
	}

	rep, err := bench.NewReport(name, results)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if flags.output != "" {
		f, err := os.Create(flags.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	format, _ := bench.ParseFormat(string(cfg.Format))
	if err := rep.Write(out, format); err != nil {
		return err
	}
	if f, ok := out.(*os.File); ok && flags.output != "" {
		return f.Sync()
	}
	return nil
}

// serveMetrics exposes reg on addr/metrics until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *learnedbench.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
