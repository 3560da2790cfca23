package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/clubworks/clubcore/internal/adapter/fsm"
	"github.com/clubworks/clubcore/internal/adapter/otel"
	riveradapter "github.com/clubworks/clubcore/internal/adapter/river"
	"github.com/clubworks/clubcore/internal/adapter/sqlite"
	"github.com/clubworks/clubcore/internal/app"

	handler "github.com/clubworks/clubcore/internal/adapter/http"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "clubcore.db")

	sweepInterval, err := time.ParseDuration(envOrDefault("SWEEP_INTERVAL", "6h"))
	if err != nil {
		return fmt.Errorf("parsing SWEEP_INTERVAL: %w", err)
	}

	ctx := context.Background()

	// --- Observability ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}

	// --- Adapters (out) ---
	db, err := otel.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	members := otel.NewTracingMemberRepository(store.Members)
	validator := fsm.New()

	// The sweep worker must be registered before the river client exists,
	// but the sweep service needs the river-backed publisher. The handle
	// is bound below, before the client starts.
	sweeper := &sweeperHandle{}

	riverClient, err := riveradapter.Setup(ctx, db, sweeper, sweepInterval)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}

	publisher := otel.NewTracingPublisher(riveradapter.NewPublisher(riverClient))
	clock := app.SystemClock{}

	// --- Application ---
	lifecycle := app.NewLifecycleService(members, validator, publisher, clock)
	sequences := app.NewSequenceService(store.Sequences, clock)
	sweeper.svc = app.NewSweepService(members, store.History, lifecycle, clock, 0)

	svc := handler.Services{
		Onboarding: app.NewOnboardingService(members, sequences, publisher, clock),
		Lifecycle:  lifecycle,
		History:    app.NewHistoryService(members, store.History, clock),
		Sequences:  sequences,
	}

	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware("clubcore", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("clubcore", "0.1.0"))
	handler.Register(api, svc)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("clubcore listening on :%s", port)
		log.Printf("API docs: http://localhost:%s/docs", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if err := riverClient.Stop(shutdownCtx); err != nil {
		log.Printf("river stop: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}

	log.Println("stopped")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// sweeperHandle defers binding the sweep service until after the river
// client, which the service's publisher depends on, exists.
type sweeperHandle struct {
	svc riveradapter.Sweeper
}

func (h *sweeperHandle) Run(ctx context.Context) (app.SweepResult, error) {
	return h.svc.Run(ctx)
}
