package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/paveg/rframe/internal/collect"
	"github.com/paveg/rframe/internal/config"
	"github.com/paveg/rframe/internal/io"
	"github.com/paveg/rframe/internal/logging"
	"github.com/paveg/rframe/internal/monitoring"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var (
		configPath    string
		metricsServer *http.Server
	)

	root := &cobra.Command{
		Use:           "rframe",
		Short:         "Inspect and convert tabular data files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			config.SetGlobalConfig(cfg)

			if err := logging.Init(logging.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding}); err != nil {
				return err
			}
			if cfg.MetricsCollection {
				monitoring.EnableGlobalMonitoring()
			}
			if cfg.MetricsAddr != "" {
				srv, err := monitoring.Listen(monitoring.EnableGlobalMonitoring(), cfg.MetricsAddr)
				if err != nil {
					return err
				}
				metricsServer = srv
				logging.Named("cli").Info("serving metrics", zap.String("addr", srv.Addr))
			}
			logging.Named("cli").Debug("configuration loaded",
				zap.String("command", cmd.Name()), zap.Int("workers", cfg.Workers()))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if metricsServer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := metricsServer.Shutdown(ctx); err != nil {
					return fmt.Errorf("stopping metrics server: %w", err)
				}
				metricsServer = nil
			}
			if !monitoring.IsGlobalMonitoringEnabled() {
				return nil
			}
			return printMetrics(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	flags.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.String("log-encoding", config.DefaultLogEncoding, "Log encoding (console, json)")
	flags.Int("worker-pool-size", 0, "Worker goroutines for parallel operations (0 = number of CPUs)")
	flags.Int("group-parallel-threshold", config.DefaultGroupParallelThreshold, "Minimum group count processed in parallel")
	flags.Int("collect-chunk-size", config.DefaultCollectChunkSize, "Items per parallel collection chunk")
	flags.Bool("string-fallback", true, "Store values with no column mapping as text")
	flags.Bool("metrics-collection", false, "Record operation metrics and print them on exit")
	flags.String("metrics-addr", "", "Serve /metrics, /summary and /health on this address while the command runs")

	root.AddCommand(newSummarizeCmd(), newConvertCmd(), newHeadCmd(), newVersionCmd())
	return root
}

type metricRow struct {
	operation string
	duration  time.Duration
	rows      int64
	parallel  bool
	failed    bool
}

func printMetrics(cmd *cobra.Command) error {
	recorded := monitoring.GlobalMetrics()
	items := make([]metricRow, len(recorded))
	for i, m := range recorded {
		items[i] = metricRow{m.Operation, m.Duration, m.RowsProcessed, m.Parallel, m.Failed}
	}

	df, err := collect.NewCollector([]collect.Rule[metricRow]{
		collect.Mapping("operation", func(m metricRow) any { return m.operation }),
		collect.Mapping("duration", func(m metricRow) any { return m.duration.String() }),
		collect.Mapping("rows", func(m metricRow) any { return m.rows }),
		collect.Mapping("parallel", func(m metricRow) any { return m.parallel }),
		collect.Mapping("failed", func(m metricRow) any { return m.failed }),
	}).Collect(items)
	if err != nil {
		return fmt.Errorf("collecting metrics: %w", err)
	}
	return io.NewTableWriter(cmd.ErrOrStderr(), io.TableOptions{Title: "metrics"}).Write(df)
}
