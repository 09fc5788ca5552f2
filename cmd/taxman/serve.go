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

	"github.com/warp/taxman/api"
	"github.com/warp/taxman/bas"
	"github.com/warp/taxman/logging"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Starts the REST API and, unless TAXMAN_SCHEDULER_ENABLED=false, the
scheduler that snapshots every BAS period once it has ended.

On SIGINT/SIGTERM the server stops accepting connections, waits up to
TAXMAN_SHUTDOWN_TIMEOUT for active requests, stops the scheduler and
closes the database.`,
		Example: `  # Run with file database
  taxman serve --db ./data/taxman.db

  # Run with in-memory database on another port
  TAXMAN_PORT=3000 taxman serve --db :memory:`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	store, err := a.openStore()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	basis, frequency, fyStartMonth := a.cfg.ReportDefaults()
	handler := api.NewHandler(store, api.Options{
		Defaults:    bas.Defaults{Basis: basis, Frequency: frequency, FYStartMonth: fyStartMonth},
		Parallelism: a.cfg.Report.Parallelism,
	}, a.log)

	if a.cfg.Scheduler.Enabled {
		scheduler, err := api.NewBasScheduler(handler, a.cfg.Scheduler.Spec, a.log)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      api.NewRouter(handler, a.cfg.Server.CORSOrigins),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	log := logging.WithComponent("server")
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
