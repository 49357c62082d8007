package worker

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// Worker consumes queued verification jobs.
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
}

// Config of the asynq consumer.
type Config struct {
	RedisAddr   string
	RedisDB     int
	Concurrency int
}

type BaseWorker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	logger   logger.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

func (w *BaseWorker) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.server.Stop()
		w.server.Shutdown()
	})
	return nil
}
