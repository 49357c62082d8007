package verification

import (
	"context"
	"mime/multipart"

	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/internal/pipeline"
	"github.com/rajesh096/InsightVerify/pkg/queue"
)

// Service is the application boundary of the verification pipeline.
type Service interface {
	// ExtractText runs recognition only and returns the aggregated text.
	ExtractText(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*pipeline.RunResult, error)

	// Verify runs the full pipeline synchronously.
	Verify(ctx context.Context, file multipart.File, header *multipart.FileHeader, documentType string, expected []string, mode models.ValidationMode) (*pipeline.RunResult, error)

	// EnqueueVerification archives the upload and queues the run, returning
	// the task ID to poll.
	EnqueueVerification(ctx context.Context, file multipart.File, header *multipart.FileHeader, documentType string, expected []string, mode models.ValidationMode) (string, error)

	// HandleVerification executes one queued job. Called by the worker.
	HandleVerification(ctx context.Context, taskID string, job *models.VerificationJob) error

	// GetStatus returns the status of an asynchronous run.
	GetStatus(ctx context.Context, taskID string) (*queue.TaskStatus, error)

	// DocumentTypes lists the registered document types.
	DocumentTypes() []string

	// CleanupArchive removes archived artifacts past the retention period.
	CleanupArchive(ctx context.Context) error
}
