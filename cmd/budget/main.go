package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budget/internal/amqp"
	"budget/internal/cache"
	"budget/internal/cli"
	apphttp "budget/internal/http"
	"budget/internal/log"
	"budget/internal/pokeapi"
	"budget/internal/seeder"
	"budget/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional; expenses are stored either way.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, expense events disabled", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	} else {
		logger.Info("AMQP_URL not set, expense events disabled")
	}

	expenses := services.NewExpenseService(repo, publisher, logger)

	if cfg.SeedOnStart {
		report, err := seeder.New(cfg.SeedDir, repo, expenses, logger).Run(context.Background())
		if err != nil {
			logger.Error("Seeding failed", log.FieldError, err, "dir", cfg.SeedDir)
			os.Exit(1)
		}
		logger.Info("Seeding complete", "created", report.Created, "skipped", report.Skipped)
	}

	caches := cache.NewManager(logger)
	pokemonCache := cache.NewLRUCache[*pokeapi.Pokemon](cfg.CacheSize, cfg.CacheTTL)
	caches.Register(pokemonCache)
	caches.StartCleanup(cfg.CacheTTL)
	fetcher := pokeapi.NewClient(cfg.PokeAPIBaseURL, cfg.PokeAPITimeout, pokemonCache, logger)

	deps := apphttp.NewDeps(repo, expenses, services.NewPokemonService(repo.Pokemon, fetcher))
	srv, err := apphttp.NewServer(":"+cfg.Port, deps, apphttp.Options{
		RateLimit:    cfg.RateLimit,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, logger)
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
	})

	logger.Info("Starting budget server", "port", cfg.Port, log.FieldDBPath, cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
