package main

import (
	"context"
	"errors"
	"os"

	"finboard/internal/amqp"
	"finboard/internal/cli"
	applog "finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/store"
	"finboard/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig(applog.ComponentWorker)
	logger.Info("Starting finboard-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := cli.InitBackend(ctx, cfg, logger)
	defer cli.CloseBackend(result, logger)

	txns := store.NewTransactionStore()
	cats := store.NewCategoryStore()
	// The worker refreshes on demand only.
	loader := services.NewLoader(result.Backend, txns, cats, services.LoaderConfig{Timeout: cfg.RemoteTimeout}, logger)
	dashboard := services.NewDashboardService(txns, cats, loader, cfg.WindowMonths)
	budgetWorker := worker.NewBudgetWorker(loader, dashboard, logger)

	// Overruns that happened while the worker was down are reported at start.
	if _, err := budgetWorker.Check(ctx, budgetWorker.CurrentMonth()); err != nil {
		logger.Error("Startup budget check failed", applog.FieldError, err)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	go func() {
		if err := amqpClient.ConsumeMutations(ctx, budgetWorker.HandleMutation); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
		}
		cancel()
	}()

	if !cli.WaitForSignal(ctx, logger) {
		logger.Info("Context cancelled")
	}
	cancel()
	logger.Info("Worker stopped")
}
