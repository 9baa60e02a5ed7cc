package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/tianqi-aggregator/internal/api/http"
	"github.com/i474232898/tianqi-aggregator/internal/client"
	"github.com/i474232898/tianqi-aggregator/internal/config"
	"github.com/i474232898/tianqi-aggregator/internal/logging"
	"github.com/i474232898/tianqi-aggregator/internal/provider"
	"github.com/i474232898/tianqi-aggregator/internal/scheduler"
)

const appName = "tianqi-aggregator"

func main() {
	// Load configuration (reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.AppEnv, appName)

	// Deployments may configure an address instead of raw coordinates.
	lat, lng := cfg.Latitude, cfg.Longitude
	if lat == nil && cfg.GeocodeCity != "" && cfg.GeocoderAPIKey != "" {
		glat, glng, err := provider.GeocodeCoordinates(cfg.GeocoderAPIKey, cfg.GeocodeCity, cfg.GeocodeCountry)
		if err != nil {
			log.Fatalf("failed to geocode configured address: %v", err)
		}
		lat, lng = &glat, &glng
		logger.Info("geocoded default coordinates", "city", cfg.GeocodeCity, "lat", glat, "lng", glng)
	}

	prov, err := provider.New(provider.Options{
		Domain:      cfg.Domain,
		InsecureTLS: cfg.InsecureTLS,
		Timeout:     cfg.HTTPTimeout,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
		DefaultLat:  lat,
		DefaultLng:  lng,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to build provider: %v", err)
	}

	// One client per configuration entry; a single-station daemon has one.
	registry := client.NewRegistry()
	cl, err := registry.Create("default", func() (*client.Client, error) {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		defer cancel()
		return client.New(ctx, prov, cfg.AreaID, logger)
	})
	if err != nil {
		log.Fatalf("failed to initialize station client: %v", err)
	}
	defer registry.Destroy("default")

	// One timer per facet; every job runs its first refresh immediately.
	sched := scheduler.New([]scheduler.Job{
		{Name: "summary", Interval: cfg.SummaryInterval, Run: cl.UpdateSummary},
		{Name: "alarms", Interval: cfg.AlarmsInterval, Run: cl.UpdateAlarms},
		{Name: "daily", Interval: cfg.DailyInterval, Run: cl.UpdateDailies},
		{Name: "hourly", Interval: cfg.HourlyInterval, Run: cl.UpdateHourlies},
		{Name: "minutely", Interval: cfg.MinutelyInterval, Run: cl.UpdateMinutely},
		{Name: "observe", Interval: cfg.ObserveInterval, Run: cl.UpdateObserve},
	}, cfg.HTTPTimeout+10*time.Second, logger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
			"station": cl.Station().DisplayCode(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, cl, prov)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "error", err)
		}
	}()
	logger.Info("listening", "port", cfg.Port, "area", cl.Station().AreaID)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
}
