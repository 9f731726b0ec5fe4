package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"learninghour/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "learninghour",
	Short: "Learning Hour content generator for technical coaches",
	Long: "Generates Learning Hour session plans and refactoring examples with an LLM, " +
		"finds real code smell examples on GitHub and lays sessions out on Miro boards",
	SilenceUsage: true,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the tool server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			cfg.MetricsAddr = addr
		}
		logger := logging.NewStderr(cfg.LogLevel)

		reg := prometheus.NewRegistry()
		server, err := newServer(cfg, logger, reg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.MetricsAddr != "" {
			metricsSrv := &http.Server{
				Addr:              cfg.MetricsAddr,
				Handler:           metricsMux(reg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				logger.Info("serving metrics", "addr", cfg.MetricsAddr)
				if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server failed", "error", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsSrv.Shutdown(shutdownCtx)
			}()
		}

		err = server.Run(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

func init() {
	mcpCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090); defaults to METRICS_ADDR")

	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	for _, c := range toolCommands() {
		rootCmd.AddCommand(c)
	}
}

func Execute() error {
	return rootCmd.Execute()
}

