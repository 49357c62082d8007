package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	cfg "github.com/rajesh096/InsightVerify/config"
	"github.com/rajesh096/InsightVerify/internal/models"
)

// TaskTypeVerification is the asynq task type of an asynchronous
// verification run.
const TaskTypeVerification = "verification:run"

const statusTTL = 24 * time.Hour

// Queue enqueues verification jobs and tracks their status.
type Queue interface {
	EnqueueVerification(ctx context.Context, taskID string, job *models.VerificationJob) error
	GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error)
	SaveStatus(ctx context.Context, status *TaskStatus) error
	CancelTask(ctx context.Context, taskID string) error
}

// TaskStatus is the externally visible state of an asynchronous run. Result
// carries the serialized run outcome once the worker finishes.
type TaskStatus struct {
	TaskID     string          `json:"taskId"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt,omitempty"`
}

// AsynqQueue is the Redis-backed Queue implementation.
type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	redis     *redis.Client
}

// GetQueue builds a queue from configuration.
func GetQueue() (*AsynqQueue, error) {
	qc := cfg.GetQueueConfig()
	return NewAsynqQueue(qc.RedisAddr, qc.RedisDB), nil
}

func NewAsynqQueue(redisAddr string, redisDB int) *AsynqQueue {
	redisOpt := asynq.RedisClientOpt{
		Addr: redisAddr,
		DB:   redisDB,
	}

	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
			DB:   redisDB,
		}),
	}
}

// EnqueueVerification queues one verification job under the given task ID.
func (q *AsynqQueue) EnqueueVerification(ctx context.Context, taskID string, job *models.VerificationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	opts := []asynq.Option{
		asynq.TaskID(taskID),
		asynq.MaxRetry(3),
		asynq.Timeout(10 * time.Minute),
	}

	t := asynq.NewTask(TaskTypeVerification, payload, opts...)
	if _, err := q.client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return q.SaveStatus(ctx, &TaskStatus{
		TaskID:    taskID,
		Status:    "pending",
		StartedAt: time.Now(),
	})
}

// GetTaskStatus returns the saved status of a task, falling back to the queue
// inspector for tasks the worker has not touched yet.
func (q *AsynqQueue) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	data, err := q.redis.Get(ctx, statusKey(taskID)).Bytes()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get status from redis: %w", err)
	}

	if err == nil {
		var status TaskStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status: %w", err)
		}
		return &status, nil
	}

	info, err := q.inspector.GetTaskInfo("default", taskID)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}

	return convertTaskInfo(info), nil
}

// SaveStatus persists a task status with an expiry so abandoned results do
// not accumulate.
func (q *AsynqQueue) SaveStatus(ctx context.Context, status *TaskStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	if err := q.redis.Set(ctx, statusKey(status.TaskID), data, statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}

	return nil
}

// CancelTask deletes a pending task from the queue.
func (q *AsynqQueue) CancelTask(ctx context.Context, taskID string) error {
	if err := q.inspector.DeleteTask("default", taskID); err != nil {
		return fmt.Errorf("failed to cancel task: %w", err)
	}
	return nil
}

func statusKey(taskID string) string {
	return fmt.Sprintf("task_status:%s", taskID)
}

func convertTaskInfo(info *asynq.TaskInfo) *TaskStatus {
	status := &TaskStatus{
		TaskID:    info.ID,
		StartedAt: info.NextProcessAt,
	}

	switch info.State {
	case asynq.TaskStatePending, asynq.TaskStateScheduled:
		status.Status = "pending"
	case asynq.TaskStateActive:
		status.Status = "running"
	case asynq.TaskStateCompleted:
		status.Status = "completed"
		status.FinishedAt = info.CompletedAt
	case asynq.TaskStateRetry, asynq.TaskStateArchived:
		status.Status = "failed"
		status.Error = info.LastErr
	default:
		status.Status = "unknown"
	}

	return status
}
