package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/plantrec/internal/api/handlers"
	"github.com/cloo-solutions/plantrec/internal/database"
	"github.com/cloo-solutions/plantrec/internal/engine"
	"github.com/cloo-solutions/plantrec/internal/jobs"
	"github.com/cloo-solutions/plantrec/internal/logging"
	"github.com/cloo-solutions/plantrec/internal/server"
	"github.com/cloo-solutions/plantrec/internal/service"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the plant recommendation API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PLANTREC_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", database.DefaultMigrationsSource, "Migrations source URL")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.cfg

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		source, _ := cmd.Flags().GetString("migrations")
		if err := database.Migrate(cfg.DatabaseURL, source); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	recommender := service.NewRecommendationService(rt.catalog, engine.New(), rt.requests, rt.cache, cfg.CacheDefaultTTL)

	router := server.NewRouter(server.RouterConfig{
		RecommendationHandler: handlers.NewRecommendationHandler(recommender, rt.requests),
		PlantHandler:          handlers.NewPlantHandler(rt.catalog),
		Cache:                 rt.cache,
		CatalogTTL:            cfg.CacheCatalogTTL,
		AggregateTTL:          cfg.CacheAggregateTTL,
	})

	var sweeper *jobs.Worker
	if rt.memory != nil {
		sweeper = jobs.NewWorker(jobs.NewCacheSweeper(rt.memory), cfg.CacheSweepInterval)
		go sweeper.Start(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	logging.Info().Msg("shutting down")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logging.Info().Msg("server exited")
	return nil
}
