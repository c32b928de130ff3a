// Package main is the entry point for the Trip Companion API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
	"github.com/pkordes/trip-companion/backend/internal/config"
	"github.com/pkordes/trip-companion/backend/internal/feed"
	"github.com/pkordes/trip-companion/backend/internal/handler"
	"github.com/pkordes/trip-companion/backend/internal/lookup"
	"github.com/pkordes/trip-companion/backend/internal/middleware"
	"github.com/pkordes/trip-companion/backend/internal/repo"
	"github.com/pkordes/trip-companion/backend/internal/service"
	"github.com/pkordes/trip-companion/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- Services ---------------------------------------------------------
	trips := repo.NewTripRepo(pool)
	messages := repo.NewMessageRepo(pool)

	lookupOpts := func(baseURL, key string) lookup.Options {
		return lookup.Options{BaseURL: baseURL, APIKey: key, Timeout: cfg.LookupTimeout}
	}
	photos := lookup.NewPlaceClient(lookupOpts(cfg.PlacesBaseURL, cfg.PlacesAPIKey))
	weather := lookup.NewWeatherClient(lookupOpts(cfg.WeatherBaseURL, cfg.WeatherAPIKey))
	if !photos.Enabled() {
		slog.Info("place photo lookup disabled, using placeholder images")
	}
	if !weather.Enabled() {
		slog.Info("weather lookup disabled")
	}
	enricher := service.NewEnricher(photos, weather, logger)

	clock := calendar.NewClock(cfg.Location)
	membership := service.NewMembershipService(trips, repo.NewUserLocker(pool), enricher, clock, service.MembershipOptions{
		CheckConflictOnCreate: cfg.CheckConflictOnCreate,
		SerializeJoins:        cfg.SerializeJoins,
	})

	hub := feed.NewHub(logger)
	listener := feed.NewListener(pool, hub, logger)

	server := handler.NewServer(handler.Deps{
		Trips:          membership,
		Chat:           service.NewChatService(trips, messages),
		Export:         service.NewExportService(trips),
		Feed:           trips,
		Weather:        enricher,
		Hub:            hub,
		Clock:          clock,
		PageSize:       cfg.PageSize,
		AllowedOrigins: cfg.CORSOrigins,
		Logger:         logger,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer →
	// CORS → body limit → rate limit. Authentication is applied per route group
	// inside server.Routes so /healthz stays public.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewRateLimiter(cfg.RatePerMinute, cfg.RateBurst).Handler)
	r.Mount("/", server.Routes(middleware.NewAuthenticator([]byte(cfg.JWTSecret))))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WebSocket connections clear these deadlines on upgrade.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	srv.RegisterOnShutdown(server.CloseSockets)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listener.Run(gctx)
	})
	g.Go(func() error {
		return hub.RunDayRollover(gctx, clock)
	})
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Graceful shutdown: on signal (or a failed sibling), give in-flight
		// requests up to 15 seconds to complete before forcefully closing.
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations through a database/sql handle
// borrowed from pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close() //nolint:errcheck // does not close the pool

	provider, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "count", len(results))
	return nil
}
