// Package main runs the EDH Tracker REST API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api"
	"github.com/ramonehamilton/EDH-Tracker/internal/api/handlers"
	"github.com/ramonehamilton/EDH-Tracker/internal/app"
	"github.com/ramonehamilton/EDH-Tracker/internal/config"
	"github.com/ramonehamilton/EDH-Tracker/internal/logging"
)

var (
	configPath = flag.String("config", "", "Config file (default: ~/.edh-tracker/config.toml)")
	port       = flag.Int("port", 0, "API server port (overrides config)")
	backend    = flag.String("backend", "", "Storage backend: sqlite, redis or file (overrides config)")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.API.Port = *port
	}
	if *backend != "" {
		cfg.Storage.Backend = *backend
	}

	logger := logging.Init(cfg.Log)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("error closing store", zap.Error(err))
		}
	}()

	jobs, err := a.MaintenanceJobs()
	if err != nil {
		return err
	}
	adminJobs := make([]handlers.Job, 0, len(jobs))
	for _, job := range jobs {
		adminJobs = append(adminJobs, job)
	}

	server := api.NewServer(&api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
		AdminUsers:     cfg.API.AdminUsers,
	}, &api.Services{
		Friends:    a.Friends,
		Collection: a.Collection,
		Cards:      a.Cards,
		Jobs:       adminJobs,
	}, logger)

	if err := server.Start(); err != nil {
		return err
	}
	logger.Info("API server running",
		zap.Int("port", server.Port()),
		zap.String("backend", cfg.Storage.Backend))

	for _, job := range jobs {
		if err := job.Start(ctx); err != nil {
			return err
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	timeout, err := cfg.GetShutdownTimeout()
	if err != nil {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	for _, job := range jobs {
		if err := job.Stop(); err != nil {
			logger.Warn("error stopping job", zap.Error(err))
		}
		logger.Debug(job.Status().String())
	}

	stats := a.Cards.CacheStats()
	logger.Info("API server stopped",
		zap.Int("card_cache_entries", stats.Entries),
		zap.Int("card_cache_hits", stats.Hits),
		zap.Int("card_cache_evictions", stats.Evictions))
	return nil
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFrom(*configPath)
	}
	return config.Load()
}
