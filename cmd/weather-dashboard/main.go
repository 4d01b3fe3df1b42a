package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if !cfg.EnvFileLoaded {
		lg.Info("no .env file found; using environment and defaults")
	}
	if cfg.File != "" {
		lg.Info("loaded config file", zap.String("path", cfg.File))
	}

	// Shared HTTP client for calls to the weather API.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	backoff := providers.DefaultBackoff()
	backoff.MaxRetries = cfg.FetchMaxRetries

	readings := providers.NewReadingsClient(httpClient, cfg.WeatherAPIURL, backoff, lg)
	predictions := providers.NewPredictionsClient(httpClient, cfg.WeatherAPIURL, backoff, lg)

	memStore := store.NewMemoryStore(cfg.DatasetMaxAge)

	service := weather.NewService(memStore, readings, predictions, weather.ServiceConfig{
		FetchOnRequest: cfg.FetchOnRequest,
		Aggregation:    weather.Options{Missing: cfg.MissingPolicy()},
	}, lg)

	// Background refresh; a refresh fetches both data sets in sequence.
	sched := scheduler.New(cfg.RefreshInterval, 2*cfg.HTTPTimeout, service, lg)
	if err := sched.Start(); err != nil {
		lg.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowMethods: "GET,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})

	minDate, maxDate := cfg.DateBounds()
	httpapi.RegisterRoutes(app, service, httpapi.Bounds{Min: minDate, Max: maxDate})

	go func() {
		lg.Info("listening", zap.String("port", cfg.Port), zap.String("weather_api", cfg.WeatherAPIURL))
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error("error during shutdown", zap.Error(err))
	}
}
