/* main.go - Compliance Server Entry Point

PURPOSE:
  Starts the CPE compliance tracking API server. Wires the store, the
  window generator, the HTTP router, and the renewal monitor together
  from configuration, then runs until interrupted.

STARTUP SEQUENCE:
  1. Load configuration (file, environment, defaults)
  2. Open the SQLite store
  3. Resolve the active rule table (registered jurisdiction or file)
  4. Build the window generator and HTTP router
  5. Start the renewal monitor (if enabled)
  6. Serve until SIGINT/SIGTERM, then shut down gracefully

CONFIGURATION:
  --config path to a YAML config file. Every setting has a default,
  so the server also runs with no file at all. Environment variables
  use the COMPLIANCE_ prefix (COMPLIANCE_SERVER_ADDR, ...).

EXAMPLES:
  # Defaults: :8080, ./compliance.db, nh-cpa rules
  ./compliance-server

  # Explicit config file
  ./compliance-server --config ./config.yaml

  # In-memory store for demos
  COMPLIANCE_STORAGE_PATH=":memory:" ./compliance-server

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM the server stops accepting connections, waits up
  to server.shutdown_timeout for in-flight requests, stops the
  renewal monitor, and closes the store.

SEE ALSO:
  - config/config.go: settings and defaults
  - api/server.go: router configuration
  - api/monitor.go: renewal deadline monitor
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/compliance-engine/api"
	"github.com/warp/compliance-engine/config"
	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/factory"
	"github.com/warp/compliance-engine/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "compliance-server",
		Short:         "CPE compliance tracking API server",
		Long:          "Tracks CPA license renewals, reporting windows, and continuing education compliance.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	st, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open store at %s: %w", cfg.Storage.Path, err)
	}
	defer st.Close()

	rules, err := factory.NewRuleTableFactory().Resolve(cfg.Rules.TableFile, cfg.Rules.Jurisdiction)
	if err != nil {
		return err
	}
	generator, err := engine.NewGenerator(rules)
	if err != nil {
		return err
	}

	handler := api.NewHandler(st, generator)
	router := api.NewRouter(handler, logger, cfg.Server.CORSOrigins)

	if cfg.Monitor.Enabled {
		monitor := api.NewRenewalMonitor(st, generator, logger)
		monitor.Interval = cfg.Monitor.Interval
		monitor.HorizonDays = cfg.Monitor.HorizonDays
		monitor.Start()
		defer monitor.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Str("jurisdiction", rules.Jurisdiction).
			Str("storage", cfg.Storage.Path).
			Bool("monitor", cfg.Monitor.Enabled).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
