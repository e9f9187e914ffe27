package jobs

import (
	"context"
	"time"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeExportSnapshot represents a metrics-snapshot export job.
	JobTypeExportSnapshot JobType = "export_snapshot"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ExportSnapshotJob carries one computed metrics snapshot to the analytics
// sink. Snapshots are derived data: a lost or failed export never blocks a
// user-facing save.
type ExportSnapshotJob struct {
	JobID      string                  `json:"job_id"`
	UserID     string                  `json:"user_id"`
	SnapshotTS time.Time               `json:"snapshot_ts"`
	Metrics    domain.FinancialMetrics `json:"metrics"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ExportSnapshotJob) GetID() string { return j.JobID }

// GetType implements the Job interface.
func (j *ExportSnapshotJob) GetType() JobType { return JobTypeExportSnapshot }

// GetStatus implements the Job interface.
func (j *ExportSnapshotJob) GetStatus() JobStatus { return j.Status }

// Publisher defines the interface for publishing jobs to a queue.
// The in-memory queue serves single-instance deployments; a Pub/Sub
// implementation can replace it without touching callers.
type Publisher interface {
	PublishExportSnapshot(ctx context.Context, job *ExportSnapshotJob) error
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs; handler is called for each one.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to finish.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state for the jobs API.
type JobStore interface {
	SaveJob(ctx context.Context, job *ExportSnapshotJob) error
	GetJob(ctx context.Context, jobID string) (*ExportSnapshotJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExportSnapshotJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	UserID string
	Status JobStatus
	Limit  int
	Offset int
}
