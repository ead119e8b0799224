package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/atlas-mapquest/internal/config"
	"github.com/UnknownOlympus/atlas-mapquest/internal/geocoding"
	"github.com/UnknownOlympus/atlas-mapquest/internal/logging"
	"github.com/UnknownOlympus/atlas-mapquest/internal/metrics"
	"github.com/UnknownOlympus/atlas-mapquest/internal/repository"
	"github.com/UnknownOlympus/atlas-mapquest/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// googleRequestsPerSecond is shared between all workers.
const googleRequestsPerSecond = 50

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := logging.Setup(cfg.Env, os.Stdout)

	// Create a separate registry for metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, logger)

	providerConfig := cfg.Provider.Geocoding(logger)
	if providerConfig.Type == geocoding.ProviderTypeGoogle {
		providerConfig.RateLimit = max(googleRequestsPerSecond/cfg.Workers, 1)
	}

	geoProvider, err := geocoding.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}

	logger.InfoContext(ctx, "Geocoding provider initialized",
		"type", cfg.Provider.Type,
		"name", geoProvider.Name(),
		"licensed", cfg.Provider.Licensed,
	)

	geoService := service.NewGeocodingService(logger, repo, geoProvider, appMetrics, service.Options{
		Workers:       cfg.Workers,
		PollInterval:  cfg.Interval,
		AddressPrefix: cfg.AddrPrefix,
		ResultLimit:   cfg.Provider.ResultLimit,
	})

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	go startMonitoringServer(ctx, logger, reg, dtb, cfg.Port)
	go geoService.Run(ctx)

	<-ctx.Done()
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// startMonitoringServer serves /healthz and /metrics on the given port until ctx is done.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(req.Context(), "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := dtb.Ping(req.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(req.Context(), "failed to write reply", "error", err)
		}

		log.DebugContext(req.Context(), "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(readTimeout)*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Monitoring server shutdown failed", "error", err)
		}
	}()

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}
