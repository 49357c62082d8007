package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rajesh096/InsightVerify/config"
	"github.com/rajesh096/InsightVerify/internal/service/verification"
	"github.com/rajesh096/InsightVerify/pkg/logger"
	"github.com/rajesh096/InsightVerify/pkg/worker"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	svc, err := verification.GetService(log)
	if err != nil {
		log.Error("Failed to initialize verification service", logger.Error(err))
		os.Exit(1)
	}

	queueCfg := config.GetQueueConfig()
	workerCfg := &worker.Config{
		RedisAddr:   queueCfg.RedisAddr,
		RedisDB:     queueCfg.RedisDB,
		Concurrency: queueCfg.Concurrency,
	}

	verificationWorker, err := worker.NewVerificationWorker(workerCfg, svc, log)
	if err != nil {
		log.Error("Failed to create verification worker", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := verificationWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	verificationWorker.Stop()
	log.Info("Worker stopped")
}
