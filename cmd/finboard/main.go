package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/cache"
	"finboard/internal/cli"
	apphttp "finboard/internal/http"
	applog "finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/store"
)

func main() {
	cfg, logger := cli.LoadConfig(applog.ComponentApp)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := cli.InitBackend(ctx, cfg, logger)
	defer cli.CloseBackend(result, logger)

	txns := store.NewTransactionStore()
	cats := store.NewCategoryStore()

	loader := services.NewLoader(result.Backend, txns, cats, services.LoaderConfig{
		Interval: cfg.RefreshInterval,
		Timeout:  cfg.RemoteTimeout,
	}, logger)

	coordOpts := []services.CoordinatorOption{
		services.WithRemoteTimeout(cfg.RemoteTimeout),
		services.WithCoordinatorLogger(logger),
	}
	// Mutation events are optional; without a broker the server still works.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, mutation events disabled", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			coordOpts = append(coordOpts, services.WithEventPublisher(amqpClient))
			logger.Info("Publishing mutation events", "exchange", cfg.AMQPExchange)
		}
	}
	coordinator := services.NewMutationCoordinator(txns, result.Backend, coordOpts...)

	dashboard := services.NewDashboardService(txns, cats, loader, cfg.WindowMonths)

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(dashboard.Cache())
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	if err := loader.Start(ctx); err != nil {
		logger.Error("Failed to start loader", applog.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Mutations:    coordinator,
		Loader:       loader,
		Dashboard:    dashboard,
		Transactions: txns,
		Categories:   cats,
		PageSize:     cfg.PageSize,
		Logger:       logger,
	})
	srv.MaxHeaderBytes = 1 << 16

	done := make(chan struct{})
	go func() {
		defer close(done)
		if !cli.WaitForSignal(ctx, logger) {
			return
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := loader.Stop(shutdownCtx); err != nil {
			logger.Error("Loader shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting finboard server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		cancel()
		<-done
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
