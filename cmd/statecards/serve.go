package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"covidtracking.org/statecards/internal/config"
	"covidtracking.org/statecards/internal/dataset"
	"covidtracking.org/statecards/internal/definitions"
	"covidtracking.org/statecards/internal/httpserver"
	"covidtracking.org/statecards/internal/observability"
	"covidtracking.org/statecards/internal/panel"
)

func serveCmd(load func() (config.Config, error)) *cobra.Command {
	var addr, datasetPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve state pages over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}
			if datasetPath != "" {
				cfg.Data.DatasetPath = datasetPath
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides STATECARDS_ADDR)")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "dataset file (overrides STATECARDS_DATASET)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	glossary, err := definitions.LoadGlossary(cfg.Data.GlossaryPath)
	if err != nil {
		return err
	}

	store := newStore(cfg.Data.DatasetPath)
	metrics := httpserver.NewMetrics()
	n, err := store.Reload(ctx)
	metrics.DatasetReloaded(n, err)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("dataset loaded", zap.Int("records", n), zap.Int("glossary_fields", glossary.Len()))

	registry := panel.NewRegistry(panel.RegistryConfig{
		TTL:         cfg.Pages.TTL,
		MaxSessions: cfg.Pages.MaxSessions,
		Observer:    metrics,
	})

	scheduler, err := dataset.NewScheduler(ctx, logger,
		instrumentedReload(store, cfg.Data.ReloadSchedule, logger, metrics),
		sweepJob(registry, cfg.Pages.SweepSchedule, logger, metrics),
	)
	if err != nil {
		return fmt.Errorf("schedule jobs: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv, err := httpserver.New(httpserver.Config{
		Address:      cfg.Server.Address,
		Logger:       logger,
		Store:        store,
		Glossary:     glossary,
		Registry:     registry,
		Metrics:      metrics,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("statecards server listening", zap.String("addr", cfg.Server.Address), zap.String("version", Version))

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("statecards server stopped")
	return nil
}

func instrumentedReload(store *dataset.Store, schedule string, logger *zap.Logger, metrics *httpserver.Metrics) dataset.Job {
	job := dataset.ReloadJob(store, schedule, logger)
	run := job.Run
	job.Run = func(ctx context.Context) error {
		err := run(ctx)
		metrics.DatasetReloaded(len(store.List()), err)
		return err
	}
	return job
}

func sweepJob(registry *panel.Registry, schedule string, logger *zap.Logger, metrics *httpserver.Metrics) dataset.Job {
	return dataset.Job{
		Name:     "page-sweep",
		Schedule: schedule,
		Run: func(context.Context) error {
			if n := registry.Sweep(); n > 0 {
				logger.Debug("idle page sessions unmounted", zap.Int("count", n))
			}
			metrics.SetActivePages(registry.Len())
			return nil
		},
	}
}
