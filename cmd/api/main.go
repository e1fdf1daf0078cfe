package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"pennywise/internal/amqp"
	"pennywise/internal/config"
	"pennywise/internal/database"
	"pennywise/internal/events"
	"pennywise/internal/logger"
	"pennywise/internal/router"
	"pennywise/internal/services"
	"pennywise/internal/validator"

	_ "pennywise/internal/docs" // Import swagger docs
)

// @title           Pennywise API
// @version         1.0
// @description     Pennywise is a personal finance ledger: accounts, categories, transactions, monthly budgets and cards, with backups and a change feed.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey AdminKey
// @in header
// @name X-API-Key
// @description Required on restore and reset when ADMIN_KEY is set.

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appConfig.Env, appConfig.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	broker := events.NewBroker(appConfig.EventBuffer)
	defer broker.Close()

	ledger := services.NewLedger(dbManager.DB(), broker, services.Options{
		TransferMode: services.TransferMode(appConfig.TransferMode),
		Location:     appConfig.Location,
	})

	if appConfig.SeedDefaults {
		seeded, err := ledger.Categories.EnsureDefaultCategories()
		if err != nil {
			return fmt.Errorf("failed to seed default categories: %w", err)
		}
		if seeded {
			log.Info("Seeded default categories")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if appConfig.AMQPURL != "" {
		client, err := amqp.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange)
		if err != nil {
			log.Warnw("AMQP unavailable, changes will not be forwarded", "error", err)
		} else {
			defer client.Close()
			forwarder := amqp.NewForwarder(client, broker)
			g.Go(func() error { return forwarder.Run(ctx) })
			log.Infow("Forwarding changes to AMQP", "exchange", appConfig.AMQPExchange)
		}
	}

	server := &http.Server{
		Addr:              appConfig.Addr(),
		Handler:           router.New(ledger, router.Options{AdminKey: appConfig.AdminKey}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Infof("Starting Pennywise server on %s (transfer mode %s)", appConfig.Addr(), appConfig.TransferMode)
		log.Infof("Swagger documentation available at http://%s/swagger/index.html", appConfig.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Event streams only end once their subscriptions close.
		broker.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
