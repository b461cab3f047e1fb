package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/repository"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
	"github.com/noah-isme/college-timetable-api/pkg/jobs"
	"github.com/noah-isme/college-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/college-timetable-api/pkg/storage"
)

type jobStore interface {
	Create(ctx context.Context, job *models.ScheduleJob) error
	GetByID(ctx context.Context, id string) (*models.ScheduleJob, error)
	Update(ctx context.Context, id string, params repository.UpdateJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ScheduleJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ScheduleJob, error)
	Delete(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportStore interface {
	Store(jobID string, file *ExportFile) (*StoredExport, error)
	Resolve(token string) (*os.File, storage.Grant, error)
	Delete(relPath string) error
	Cleanup(ttl time.Duration) ([]string, error)
}

// JobServiceConfig governs job retention.
type JobServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// JobDownload is a resolved export file ready to stream.
type JobDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// JobService manages the lifecycle of asynchronous batch scheduling and export jobs.
type JobService struct {
	repo    jobStore
	queue   jobDispatcher
	exports exportStore
	logger  *zap.Logger
	cfg     JobServiceConfig
}

// NewJobService constructs the job service.
func NewJobService(repo jobStore, queue jobDispatcher, exports exportStore, logger *zap.Logger, cfg JobServiceConfig) *JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	return &JobService{repo: repo, queue: queue, exports: exports, logger: logger, cfg: cfg}
}

// SetQueue binds the dispatcher once the worker pool exists.
func (s *JobService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// EnqueueTermBatch queues whole-term fixed placement for a term.
func (s *JobService) EnqueueTermBatch(ctx context.Context, termID string, req dto.TermScheduleRequest, actorID string) (*dto.JobResponse, error) {
	reset := req.Reset()
	create := dto.CreateJobRequest{
		Type:          models.JobTypeBatchSchedule,
		TermID:        termID,
		ResetExisting: &reset,
	}
	if req.DepartmentCode != "" {
		code := req.DepartmentCode
		create.DepartmentCode = &code
	}
	return s.CreateJob(ctx, create, actorID)
}

// CreateJob validates the request, persists the job and hands it to the queue.
func (s *JobService) CreateJob(ctx context.Context, req dto.CreateJobRequest, actorID string) (*dto.JobResponse, error) {
	params, err := jobParams(req)
	if err != nil {
		return nil, err
	}
	job := &models.ScheduleJob{
		Type:      req.Type,
		Params:    params,
		Status:    models.JobStatusQueued,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		s.finish(ctx, job.ID, models.JobStatusFailed, nil, nil, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue job")
	}
	s.logger.Info("job queued",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("actor_id", actorID),
		zap.String("request_id", requestid.FromContext(ctx)),
	)
	return jobResponse(job), nil
}

func jobParams(req dto.CreateJobRequest) (models.JobParams, error) {
	params := models.JobParams{
		TermID:         strings.TrimSpace(req.TermID),
		AcademicYearID: strings.TrimSpace(req.AcademicYearID),
		DepartmentCode: req.DepartmentCode,
		ResetExisting:  req.ResetExisting == nil || *req.ResetExisting,
		Format:         req.Format,
	}
	switch req.Type {
	case models.JobTypeBatchSchedule:
		if params.TermID == "" {
			return params, appErrors.Clone(appErrors.ErrValidation, "termId is required")
		}
		params.Format = ""
	case models.JobTypeTimetableExport:
		if params.TermID == "" {
			return params, appErrors.Clone(appErrors.ErrValidation, "termId is required")
		}
		if params.Format == "" {
			params.Format = models.ExportFormatXLSX
		}
		if params.Format != models.ExportFormatCSV && params.Format != models.ExportFormatXLSX {
			return params, appErrors.Clone(appErrors.ErrValidation, "timetable exports support csv or xlsx")
		}
	case models.JobTypeWorkloadExport:
		if params.AcademicYearID == "" {
			return params, appErrors.Clone(appErrors.ErrValidation, "academicYearId is required")
		}
		if params.Format == "" {
			params.Format = models.ExportFormatCSV
		}
		if params.Format != models.ExportFormatCSV && params.Format != models.ExportFormatPDF {
			return params, appErrors.Clone(appErrors.ErrValidation, "workload exports support csv or pdf")
		}
	default:
		return params, appErrors.Clone(appErrors.ErrValidation, "unsupported job type")
	}
	return params, nil
}

// GetStatus returns job progress and, once finished, its result.
func (s *JobService) GetStatus(ctx context.Context, id string) (*dto.JobResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return jobResponse(job), nil
}

func jobResponse(job *models.ScheduleJob) *dto.JobResponse {
	resp := &dto.JobResponse{
		ID:        job.ID,
		Type:      job.Type,
		Status:    job.Status,
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
	}
	if job.Type == models.JobTypeBatchSchedule && job.Status == models.JobStatusFinished {
		result := job.Result
		resp.Result = &result
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp
}

// ResolveDownload validates a download token against its job and opens the file.
func (s *JobService) ResolveDownload(ctx context.Context, token string) (*JobDownload, error) {
	file, grant, err := s.exports.Resolve(token)
	if err != nil {
		return nil, err
	}
	job, err := s.repo.GetByID(ctx, grant.JobID)
	if err != nil {
		_ = file.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	if job.Status != models.JobStatusFinished || job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		_ = file.Close()
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download link does not match job")
	}
	return &JobDownload{
		File:        file,
		Filename:    filepath.Base(grant.Path),
		ContentType: contentTypeFor(job.Params.Format),
		ExpiresAt:   grant.ExpiresAt,
	}, nil
}

// MarkExhausted records a job that failed on every queue attempt.
func (s *JobService) MarkExhausted(ctx context.Context, job jobs.Job, cause error) {
	s.finish(context.WithoutCancel(ctx), job.ID, models.JobStatusFailed, nil, nil, cause.Error())
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *JobService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover queued jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
			s.logger.Warn("failed to requeue pending job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		s.logger.Info("recovered queued jobs", zap.Int("count", len(pending)))
	}
}

// StartCleanup purges expired jobs and their files on every interval tick.
func (s *JobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

const cleanupBatch = 100

func (s *JobService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	removed := 0
	for {
		expired, err := s.repo.ListFinishedBefore(ctx, cutoff, cleanupBatch)
		if err != nil {
			s.logger.Warn("cleanup list failed", zap.Error(err))
			return
		}
		for _, job := range expired {
			if job.ResultURL != nil {
				if token := extractToken(*job.ResultURL); token != "" {
					if file, grant, err := s.exports.Resolve(token); err == nil {
						_ = file.Close()
						if err := s.exports.Delete(grant.Path); err != nil {
							s.logger.Warn("cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
						}
					}
				}
			}
			if err := s.repo.Delete(ctx, job.ID); err != nil {
				s.logger.Warn("cleanup job delete failed", zap.String("job_id", job.ID), zap.Error(err))
				return
			}
			removed++
		}
		if len(expired) < cleanupBatch {
			break
		}
	}
	if _, err := s.exports.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("filesystem cleanup failed", zap.Error(err))
	}
	if removed > 0 {
		s.logger.Info("expired jobs removed", zap.Int("count", removed))
	}
}

func (s *JobService) finish(ctx context.Context, id string, status models.JobStatus, result *models.BatchResult, url *string, message string) {
	progress := 100
	now := time.Now().UTC()
	params := repository.UpdateJobParams{
		Status:     &status,
		Progress:   &progress,
		Result:     result,
		ResultURL:  url,
		FinishedAt: &now,
	}
	if message != "" {
		params.ErrorMessage = &message
	}
	if err := s.repo.Update(ctx, id, params); err != nil {
		s.logger.Warn("failed to finalise job", zap.String("job_id", id), zap.String("status", string(status)), zap.Error(err))
	}
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

func contentTypeFor(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatCSV:
		return contentTypeCSV
	case models.ExportFormatPDF:
		return contentTypePDF
	case models.ExportFormatXLSX:
		return contentTypeXLSX
	case models.ExportFormatICS:
		return contentTypeICS
	default:
		return "application/octet-stream"
	}
}

// --- Worker ---

type batchScheduler interface {
	ScheduleWholeTermFixed(ctx context.Context, termID string, req dto.TermScheduleRequest) (*models.BatchResult, error)
}

type exportRenderer interface {
	TimetableFile(ctx context.Context, termID string, format models.ExportFormat) (*ExportFile, error)
	WorkloadFile(ctx context.Context, yearID string, format models.ExportFormat) (*ExportFile, error)
}

// JobWorker executes queued jobs.
type JobWorker struct {
	jobs      *JobService
	scheduler batchScheduler
	renderer  exportRenderer
	logger    *zap.Logger
}

// NewJobWorker constructs a worker bound to the job service's store.
func NewJobWorker(jobs *JobService, scheduler batchScheduler, renderer exportRenderer, logger *zap.Logger) *JobWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobWorker{jobs: jobs, scheduler: scheduler, renderer: renderer, logger: logger}
}

// Handle runs one job. Client errors fail the job at once; other errors
// return it to QUEUED and let the queue retry.
func (w *JobWorker) Handle(ctx context.Context, queued jobs.Job) error {
	repo := w.jobs.repo
	job, err := repo.GetByID(ctx, queued.ID)
	if err != nil {
		return err
	}
	if job.Status == models.JobStatusFinished || job.Status == models.JobStatusFailed {
		return nil
	}

	processing := models.JobStatusProcessing
	progress := 10
	if err := repo.Update(ctx, job.ID, repository.UpdateJobParams{Status: &processing, Progress: &progress}); err != nil {
		return err
	}

	started := time.Now()
	result, url, err := w.run(ctx, job)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
			w.jobs.finish(ctx, job.ID, models.JobStatusFailed, nil, nil, appErr.Message)
			w.logger.Info("job rejected", zap.String("job_id", job.ID), zap.String("code", appErr.Code), zap.String("reason", appErr.Message))
			return nil
		}
		queuedStatus := models.JobStatusQueued
		reset := 0
		msg := err.Error()
		if updateErr := repo.Update(ctx, job.ID, repository.UpdateJobParams{Status: &queuedStatus, Progress: &reset, ErrorMessage: &msg}); updateErr != nil {
			w.logger.Warn("failed to mark job queued", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	w.jobs.finish(ctx, job.ID, models.JobStatusFinished, result, url, "")
	w.logger.Info("job finished",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (w *JobWorker) run(ctx context.Context, job *models.ScheduleJob) (*models.BatchResult, *string, error) {
	var (
		file *ExportFile
		err  error
	)
	switch job.Type {
	case models.JobTypeBatchSchedule:
		reset := job.Params.ResetExisting
		req := dto.TermScheduleRequest{ResetExisting: &reset}
		if job.Params.DepartmentCode != nil {
			req.DepartmentCode = *job.Params.DepartmentCode
		}
		result, err := w.scheduler.ScheduleWholeTermFixed(ctx, job.Params.TermID, req)
		return result, nil, err
	case models.JobTypeTimetableExport:
		file, err = w.renderer.TimetableFile(ctx, job.Params.TermID, job.Params.Format)
	case models.JobTypeWorkloadExport:
		file, err = w.renderer.WorkloadFile(ctx, job.Params.AcademicYearID, job.Params.Format)
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unsupported job type")
	}
	if err != nil {
		return nil, nil, err
	}
	stored, err := w.jobs.exports.Store(job.ID, file)
	if err != nil {
		return nil, nil, err
	}
	return nil, &stored.URL, nil
}
