package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rajesh096/InsightVerify/config"
	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/internal/pipeline"
	"github.com/rajesh096/InsightVerify/internal/schema"
	"github.com/rajesh096/InsightVerify/pkg/logger"
	"github.com/rajesh096/InsightVerify/pkg/queue"
	"github.com/rajesh096/InsightVerify/pkg/storage"
)

const maxUploadSize = 50 * 1024 * 1024

type verificationService struct {
	orchestrator *pipeline.Orchestrator
	registry     *schema.Registry
	queue        queue.Queue
	archive      storage.Storage
	retention    time.Duration
	logger       logger.Logger
}

// NewService assembles a verification service from explicit components.
func NewService(orch *pipeline.Orchestrator, registry *schema.Registry, q queue.Queue, archive storage.Storage, log logger.Logger) Service {
	return &verificationService{
		orchestrator: orch,
		registry:     registry,
		queue:        q,
		archive:      archive,
		retention:    24 * time.Hour,
		logger:       log,
	}
}

// GetService wires the service from configuration. The workspace is cleared
// here, once, before any run can start.
func GetService(log logger.Logger) (Service, error) {
	cfg := config.GetPipelineConfig()

	ws := pipeline.NewWorkspace(cfg.WorkspaceRoot, log)
	if err := ws.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize workspace: %w", err)
	}

	registry := schema.NewRegistry(log)
	if cfg.SchemaFile != "" {
		if err := registry.LoadFile(cfg.SchemaFile); err != nil {
			return nil, fmt.Errorf("failed to load schema registry: %w", err)
		}
	}

	orch, err := pipeline.NewOrchestrator(ws, registry, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	archive, err := storage.NewStorage(storage.Backend(config.GetStorageConfig().Backend), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	q, err := queue.GetQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue: %w", err)
	}

	return NewService(orch, registry, q, archive, log), nil
}

func (s *verificationService) ExtractText(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*pipeline.RunResult, error) {
	artifact, err := readArtifact(file, header)
	if err != nil {
		return nil, err
	}
	return s.orchestrator.ExtractText(ctx, artifact)
}

func (s *verificationService) Verify(ctx context.Context, file multipart.File, header *multipart.FileHeader, documentType string, expected []string, mode models.ValidationMode) (*pipeline.RunResult, error) {
	artifact, err := readArtifact(file, header)
	if err != nil {
		return nil, err
	}
	return s.orchestrator.Verify(ctx, artifact, documentType, expected, mode)
}

func (s *verificationService) EnqueueVerification(ctx context.Context, file multipart.File, header *multipart.FileHeader, documentType string, expected []string, mode models.ValidationMode) (string, error) {
	artifact, err := readArtifact(file, header)
	if err != nil {
		return "", err
	}

	if _, ok := s.registry.Get(documentType); !ok {
		return "", fmt.Errorf("%w: unknown document type %q", pipeline.ErrInvalidArtifact, documentType)
	}

	taskID := uuid.New().String()
	runKey := storage.RunKey(taskID, artifact.Filename)

	if _, err := s.archive.Store(ctx, bytes.NewReader(artifact.Data), runKey); err != nil {
		return "", fmt.Errorf("failed to archive upload: %w", err)
	}

	job := &models.VerificationJob{
		RunKey:       runKey,
		Filename:     artifact.Filename,
		MediaType:    artifact.MediaType,
		DocumentType: documentType,
		Expected:     expected,
		Mode:         mode,
		EnqueuedAt:   time.Now(),
	}

	if err := s.queue.EnqueueVerification(ctx, taskID, job); err != nil {
		return "", fmt.Errorf("failed to enqueue verification: %w", err)
	}

	s.logger.Info("Verification queued",
		logger.String("taskId", taskID),
		logger.String("documentType", documentType),
		logger.String("filename", artifact.Filename),
	)

	return taskID, nil
}

func (s *verificationService) HandleVerification(ctx context.Context, taskID string, job *models.VerificationJob) error {
	log := s.logger.With(logger.String("taskId", taskID))

	reader, err := s.archive.Get(ctx, job.RunKey)
	if err != nil {
		return s.finish(ctx, taskID, job.EnqueuedAt, nil, fmt.Errorf("failed to fetch archived upload: %w", err))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return s.finish(ctx, taskID, job.EnqueuedAt, nil, fmt.Errorf("failed to read archived upload: %w", err))
	}

	artifact := models.Artifact{
		Data:      data,
		MediaType: job.MediaType,
		Filename:  job.Filename,
	}

	result, runErr := s.orchestrator.Verify(ctx, artifact, job.DocumentType, job.Expected, job.Mode)
	if runErr != nil {
		log.Error("Queued verification failed", logger.Error(runErr))
		return s.finish(ctx, taskID, job.EnqueuedAt, result, runErr)
	}

	log.Info("Queued verification completed",
		logger.String("verdict", string(result.Verdict.Status)),
	)
	return s.finish(ctx, taskID, job.EnqueuedAt, result, nil)
}

// finish records the terminal status of a queued run and reports the run
// error back to the queue for retry accounting.
func (s *verificationService) finish(ctx context.Context, taskID string, startedAt time.Time, result *pipeline.RunResult, runErr error) error {
	status := &queue.TaskStatus{
		TaskID:     taskID,
		Status:     "completed",
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}

	if runErr != nil {
		status.Status = "failed"
		status.Error = runErr.Error()
	}

	if result != nil {
		if data, err := json.Marshal(result); err == nil {
			status.Result = data
		}
	}

	if err := s.queue.SaveStatus(ctx, status); err != nil {
		s.logger.Error("Failed to save task status",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
	}

	// Artifact-level failures must not be retried; the upload will not get
	// better on a second attempt.
	if runErr != nil && pipeline.IsClientError(runErr) {
		return nil
	}
	return runErr
}

func (s *verificationService) GetStatus(ctx context.Context, taskID string) (*queue.TaskStatus, error) {
	return s.queue.GetTaskStatus(ctx, taskID)
}

func (s *verificationService) DocumentTypes() []string {
	return s.registry.Types()
}

func (s *verificationService) CleanupArchive(ctx context.Context) error {
	threshold := time.Now().Add(-s.retention)
	if err := s.archive.CleanupBefore(ctx, threshold); err != nil {
		return fmt.Errorf("failed to clean archive: %w", err)
	}
	s.logger.Info("Archive cleanup completed", logger.Time("threshold", threshold))
	return nil
}

// readArtifact reads the upload and determines its media type by sniffing the
// content, never by trusting the filename or the declared content type.
func readArtifact(file multipart.File, header *multipart.FileHeader) (models.Artifact, error) {
	if header.Size > maxUploadSize {
		return models.Artifact{}, fmt.Errorf("%w: file exceeds %d bytes", pipeline.ErrInvalidArtifact, maxUploadSize)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return models.Artifact{}, fmt.Errorf("%w: empty upload", pipeline.ErrInvalidArtifact)
	}

	mediaType := models.MediaType(http.DetectContentType(data))
	if !mediaType.Supported() {
		return models.Artifact{}, fmt.Errorf("%w: unsupported content type %s", pipeline.ErrInvalidArtifact, mediaType)
	}

	return models.Artifact{
		Data:      data,
		MediaType: mediaType,
		Filename:  header.Filename,
	}, nil
}
