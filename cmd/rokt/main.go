// Command rokt starts the document-store server: it loads configuration,
// opens the encrypted catalog, and serves the request pipeline until it
// receives an interrupt or termination signal.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/cuemby/rokt/pkg/config"
	"github.com/cuemby/rokt/pkg/cryptox"
	"github.com/cuemby/rokt/pkg/log"
	"github.com/cuemby/rokt/pkg/metrics"
	"github.com/cuemby/rokt/pkg/pipeline"
	"github.com/cuemby/rokt/pkg/storage"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

const (
	configPath = "config.json"
	dataDir    = "."
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "rokt",
	Short:   "rokt - single-node encrypted document store",
	Version: Version,
	RunE:    run,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("rokt version %s\nCommit: %s\n", Version, Commit))
}

func run(cmd *cobra.Command, args []string) error {
	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: false})
	logger := log.Component("main").Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	cipher, err := cryptox.New(cfg.Encryption.Passphrase, cfg.Encryption.IV)
	if err != nil {
		return fmt.Errorf("initialising cipher: %w", err)
	}

	cat, err := storage.Open(afero.NewOsFs(), cipher, dataDir)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}

	srv := pipeline.New(cat, pipeline.Config{
		MaxWorkers:   cfg.Thread.MaxWorkers,
		MaxQueueSize: cfg.Thread.MaxTaskQueueSize,
	})

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Network.Port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", cfg.Network.Port, err)
	}

	collector := metrics.NewCollector(srv)
	collector.Start()

	metrics.SetVersion(Version)
	metrics.RegisterComponent("storage", true, "ready")
	metrics.RegisterComponent("pipeline", true, "ready")

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsMux.HandleFunc("/health", metrics.HealthHandler())
	metricsMux.HandleFunc("/ready", metrics.ReadyHandler())
	metricsMux.HandleFunc("/live", metrics.LivenessHandler())

	metricsAddr := fmt.Sprintf("127.0.0.1:%d", cfg.Metrics.Port)
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: metricsMux}
	metricsErrCh := make(chan error, 1)
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			metricsErrCh <- err
		}
	}()

	serveErrCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil {
			serveErrCh <- err
		}
	}()

	logger.Info().Int("port", cfg.Network.Port).Str("metrics_addr", metricsAddr).Msg("rokt listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("shutdown signal received")
	case err := <-serveErrCh:
		logger.Error().Err(err).Msg("pipeline server error")
	case err := <-metricsErrCh:
		logger.Error().Err(err).Msg("metrics server error")
	}

	srv.Shutdown()
	_ = ln.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("metrics server shutdown error")
	}
	collector.Stop()

	logger.Info().Msg("shutdown complete")
	return nil
}
