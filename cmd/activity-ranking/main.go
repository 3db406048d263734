package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
	"googlemaps.github.io/maps"

	graphqlapi "github.com/i474232898/activity-ranking/internal/api/graphql"
	httpapi "github.com/i474232898/activity-ranking/internal/api/http"
	"github.com/i474232898/activity-ranking/internal/common"
	"github.com/i474232898/activity-ranking/internal/config"
	"github.com/i474232898/activity-ranking/internal/geocode"
	"github.com/i474232898/activity-ranking/internal/ranker"
	"github.com/i474232898/activity-ranking/internal/scheduler"
	"github.com/i474232898/activity-ranking/internal/store"
	"github.com/i474232898/activity-ranking/internal/weather"
	"github.com/i474232898/activity-ranking/internal/weather/providers"
)

const serviceName = "activity-ranking"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	common.InitLog(cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			log.Fatalf("failed to init sentry: %v", err)
		}
	}

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		reportFailure(sentry.CurrentHub(), err)
		common.Logger("main").Fatal(err)
	}
}

// reportFailure sends err to Sentry and waits for delivery, since the process
// exits right after. It is a no-op when Sentry is not initialized.
func reportFailure(hub *sentry.Hub, err error) {
	hub.CaptureException(err)
	hub.Flush(2 * time.Second)
}

// run wires the service and serves until ctx is done or the listener fails.
func run(ctx context.Context, cfg *config.AppConfig) error {
	mainLog := common.Logger("main")

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Open-Meteo forecast and marine endpoints behind circuit breakers.
	provider := providers.NewOpenMeteoProvider(httpClient, providers.OpenMeteoOptions{
		ForecastURL:  cfg.ForecastURL,
		MarineURL:    cfg.MarineURL,
		ForecastDays: cfg.ForecastDays,
		MaxRetries:   cfg.MaxRetries,
	})
	aggregator := weather.NewAggregator(provider)

	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   "activity_ranking",
		Reporter: tally.NullStatsReporter,
	}, time.Second)
	defer closer.Close()

	opts := []ranker.Option{
		ranker.WithMetricsScope(scope),
		ranker.WithUpstreamName(provider.Name()),
	}
	if cfg.GoogleMapsAPIKey != "" {
		geocoder, err := geocode.NewGoogleGeocoder(cfg.GoogleMapsAPIKey, maps.WithHTTPClient(httpClient))
		if err != nil {
			return fmt.Errorf("create geocoder: %w", err)
		}
		opts = append(opts, ranker.WithGeocoder(geocoder))
	} else {
		mainLog.Info("GOOGLE_MAPS_API_KEY not set; address ranking disabled")
	}

	// Core service: aggregator -> scorer.
	service := ranker.NewService(aggregator, opts...)

	// Upstream probe status with configured retention.
	probes := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	sched := scheduler.New(
		weather.Location{Latitude: cfg.ProbeLatitude, Longitude: cfg.ProbeLongitude},
		cfg.ProbeInterval,
		service,
		probes,
	)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	schema, err := graphqlapi.NewSchema(graphqlapi.NewResolver(service))
	if err != nil {
		return fmt.Errorf("parse graphql schema: %w", err)
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))
	app.Use(compress.New())

	httpapi.RegisterHealth(app, serviceName, provider.Name(), probes)
	httpapi.RegisterRoutes(app, service, probes)
	graphqlapi.Register(app, schema, "/api", "/graphql")

	// Start server with graceful shutdown
	listenErr := make(chan error, 1)
	go func() {
		mainLog.Infof("listening on :%s", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
