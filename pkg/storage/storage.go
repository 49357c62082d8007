package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rajesh096/InsightVerify/pkg/logger"
	"github.com/rajesh096/InsightVerify/pkg/storage/minio"
	"github.com/rajesh096/InsightVerify/pkg/storage/s3"
)

// Backend identifies the artifact archive implementation.
type Backend string

const (
	BackendS3    Backend = "s3"
	BackendMinio Backend = "minio"
)

// Storage archives uploaded artifacts and run outputs so asynchronous
// verification can re-read an upload after the HTTP request has finished.
type Storage interface {
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// RunKey builds the object key for an artifact of one run.
func RunKey(runID, filename string) string {
	return fmt.Sprintf("runs/%s/%s", runID, filename)
}

// NewStorage builds the configured archive backend.
func NewStorage(backend Backend, log logger.Logger) (Storage, error) {
	switch backend {
	case BackendS3:
		return s3.GetClient(log)
	case BackendMinio:
		return minio.GetClient(log)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}
