package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/internal/service/verification"
	"github.com/rajesh096/InsightVerify/pkg/logger"
	"github.com/rajesh096/InsightVerify/pkg/queue"
)

// VerificationWorker runs queued verification jobs through the pipeline.
type VerificationWorker struct {
	BaseWorker
	service verification.Service
}

func NewVerificationWorker(cfg *Config, svc verification.Service, log logger.Logger) (*VerificationWorker, error) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &VerificationWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		service: svc,
	}

	w.mux.HandleFunc(queue.TaskTypeVerification, w.handleVerification)
	return w, nil
}

func (w *VerificationWorker) handleVerification(ctx context.Context, t *asynq.Task) error {
	taskID, ok := asynq.GetTaskID(ctx)
	if !ok {
		return fmt.Errorf("task has no ID")
	}

	var job models.VerificationJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		w.logger.Error("Failed to unmarshal verification job",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to unmarshal job: %w", err)
	}

	w.logger.Info("Processing verification job",
		logger.String("taskId", taskID),
		logger.String("documentType", job.DocumentType),
		logger.String("filename", job.Filename),
	)

	return w.service.HandleVerification(ctx, taskID, &job)
}

func (w *VerificationWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.stopChan:
		}
	}()

	return nil
}
