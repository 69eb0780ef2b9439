// Package main is the entry point for the rates HTTP service.
// It loads configuration, connects storage, wires the rates service
// and serves the API until interrupted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"ratesvc/internal/config"
	"ratesvc/internal/handlers"
	"ratesvc/internal/logger"
	"ratesvc/internal/repositories"
	"ratesvc/internal/routes"
	"ratesvc/internal/services/rates"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envFileFlag := flag.String("env-file", ".env", "dotenv file to load before reading the environment")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging (or set VERBOSE=true env var)")
	portFlag := flag.String("port", "", "HTTP listen port (or set PORT env var)")
	flushCacheFlag := flag.Bool("flush-cache", true, "flush the redis cache on startup")
	flag.Parse()

	config.LoadEnv(*envFileFlag)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *portFlag != "" {
		cfg.Port = *portFlag
	}

	log := logger.New(*verboseFlag || cfg.Verbose)
	slog.SetDefault(log)

	if err := repositories.InitDB(cfg); err != nil {
		return err
	}
	defer repositories.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := repositories.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("connected to database with connection pooling")

	if *flushCacheFlag {
		if err := repositories.CacheService.FlushAll(ctx); err != nil {
			log.Warn("failed to flush redis cache", "error", err)
		} else {
			log.Info("redis cache flushed on startup")
		}
	}

	go reportPoolStats(ctx, log)

	metrics := rates.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	ratesService, err := rates.NewService(
		repositories.NewRatesRepository(repositories.DB),
		repositories.CacheService,
		rates.ServiceConfig{ContractAddress: cfg.ContractAddress, Logger: log},
		metrics,
	)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		RatesService: ratesService,
		HealthChecks: map[string]handlers.HealthCheck{
			"database": repositories.Ping,
			"redis":    repositories.CacheService.HealthCheck,
		},
		Gatherer: prometheus.DefaultGatherer,
		Auth:     cfg.Auth,
		Limiter:  cfg.Limiter,
		Logger:   log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("rates service listening", "port", cfg.Port, "contract", cfg.ContractAddress)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// reportPoolStats periodically logs database and redis connection pool usage.
func reportPoolStats(ctx context.Context, log *slog.Logger) {
	sqlDB, err := repositories.DB.DB()
	if err != nil {
		log.Warn("failed to get database instance", "error", err)
		return
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		stats := sqlDB.Stats()
		log.Debug("db pool stats",
			"open", stats.OpenConnections, "idle", stats.Idle, "in_use", stats.InUse,
			"wait_count", stats.WaitCount, "wait_duration", stats.WaitDuration)
		if rs := repositories.CacheService.GetStats(); rs != nil {
			log.Debug("redis pool stats", "hits", rs.Hits, "misses", rs.Misses, "timeouts", rs.Timeouts, "total_conns", rs.TotalConns)
		}
	}
}
