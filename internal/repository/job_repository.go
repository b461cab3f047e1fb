package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// JobRepository persists background job metadata.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs the repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, type, params, status, progress, result, result_url, created_by, created_at, finished_at, error_message`

// Create inserts a new job row with generated defaults.
func (r *JobRepository) Create(ctx context.Context, job *models.ScheduleJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedule_jobs (` + jobColumns + `)
VALUES (:id, :type, :params, :status, :progress, :result, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create schedule job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.ScheduleJob, error) {
	const query = `SELECT ` + jobColumns + ` FROM schedule_jobs WHERE id = $1`
	var job models.ScheduleJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get schedule job: %w", err)
	}
	return &job, nil
}

// UpdateJobParams defines the mutable fields.
type UpdateJobParams struct {
	Status       *models.JobStatus
	Progress     *int
	Result       *models.BatchResult
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *JobRepository) Update(ctx context.Context, id string, params UpdateJobParams) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.Progress != nil {
		add("progress", *params.Progress)
	}
	if params.Result != nil {
		add("result", *params.Result)
	}
	if params.ResultURL != nil {
		add("result_url", *params.ResultURL)
	}
	if params.ErrorMessage != nil {
		add("error_message", *params.ErrorMessage)
	}
	if params.FinishedAt != nil {
		add("finished_at", *params.FinishedAt)
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE schedule_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update schedule job: %w", err)
	}
	return nil
}

// ListQueued fetches queued jobs (used for cold start recovery).
func (r *JobRepository) ListQueued(ctx context.Context, limit int) ([]models.ScheduleJob, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT ` + jobColumns + ` FROM schedule_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1`
	var jobs []models.ScheduleJob
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list queued schedule jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore retrieves finished or failed jobs completed before cutoff.
func (r *JobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ScheduleJob, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT ` + jobColumns + ` FROM schedule_jobs
WHERE status IN ('FINISHED', 'FAILED') AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2`
	var jobs []models.ScheduleJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished schedule jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes a job row.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_jobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule job: %w", err)
	}
	return nil
}
