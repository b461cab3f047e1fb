package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/workload"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

type academicYearReader interface {
	FindAcademicYear(ctx context.Context, id string) (*models.AcademicYear, error)
}

type instructorLister interface {
	ListAll(ctx context.Context) ([]models.Instructor, error)
}

type workloadStore interface {
	ListDuties(ctx context.Context, yearID string) ([]models.Duty, error)
	ListTeachingLoads(ctx context.Context, yearID string) ([]models.InstructorTeachingLoad, error)
	ListProjects(ctx context.Context, yearID string) ([]models.ResearchProject, error)
	ListMembers(ctx context.Context, yearID string) ([]models.ResearchMember, error)
	ListInternshipHours(ctx context.Context, yearID string) ([]models.CreditHours, error)
	ListDevelopmentHours(ctx context.Context, yearID string) ([]models.CreditHours, error)
	ListProjectMembers(ctx context.Context, exec sqlx.ExtContext, projectID string) ([]models.ResearchMember, error)
	UpdateShareRatios(ctx context.Context, exec sqlx.ExtContext, members []models.ResearchMember) error
}

func workloadCacheKey(yearID string) string {
	return "workload:" + yearID
}

// WorkloadService computes annual instructor balances and maintains research shares.
type WorkloadService struct {
	years       academicYearReader
	instructors instructorLister
	store       workloadStore
	tx          txProvider
	cache       *CacheService
	metrics     *MetricsService
	aggregator  *workload.Aggregator
	months      int
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewWorkloadService builds the service. months is the proration base for duties.
func NewWorkloadService(years academicYearReader, instructors instructorLister, store workloadStore, tx txProvider, cache *CacheService, metrics *MetricsService, months int, cacheTTL time.Duration, logger *zap.Logger) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if months <= 0 {
		months = workload.DefaultAcademicYearMonths
	}
	return &WorkloadService{
		years:       years,
		instructors: instructors,
		store:       store,
		tx:          tx,
		cache:       cache,
		metrics:     metrics,
		aggregator:  workload.NewAggregator(months),
		months:      months,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// ComputeWorkload returns the balance sheet of every instructor for the academic year.
func (s *WorkloadService) ComputeWorkload(ctx context.Context, yearID string) (*dto.WorkloadResponse, error) {
	if _, err := s.years.FindAcademicYear(ctx, yearID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}

	key := workloadCacheKey(yearID)
	var cached dto.WorkloadResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		cached.Cached = true
		return &cached, nil
	}

	start := time.Now()
	snapshot, err := s.loadSnapshot(ctx, yearID)
	if err != nil {
		return nil, err
	}
	rows := s.aggregator.Compute(snapshot)
	s.metrics.ObserveWorkload(time.Since(start))

	resp := &dto.WorkloadResponse{AcademicYearID: yearID, Months: s.months, Rows: rows}
	_ = s.cache.Set(ctx, key, resp, s.cacheTTL)
	s.logger.Debug("workload computed",
		zap.String("academic_year_id", yearID),
		zap.Int("instructors", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func (s *WorkloadService) loadSnapshot(ctx context.Context, yearID string) (workload.Snapshot, error) {
	var (
		snapshot workload.Snapshot
		err      error
	)
	wrap := func(err error, what string) error {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+what)
	}
	if snapshot.Instructors, err = s.instructors.ListAll(ctx); err != nil {
		return snapshot, wrap(err, "instructors")
	}
	if snapshot.Duties, err = s.store.ListDuties(ctx, yearID); err != nil {
		return snapshot, wrap(err, "duties")
	}
	if snapshot.Loads, err = s.store.ListTeachingLoads(ctx, yearID); err != nil {
		return snapshot, wrap(err, "teaching loads")
	}
	if snapshot.Projects, err = s.store.ListProjects(ctx, yearID); err != nil {
		return snapshot, wrap(err, "research projects")
	}
	if snapshot.Members, err = s.store.ListMembers(ctx, yearID); err != nil {
		return snapshot, wrap(err, "research members")
	}
	if snapshot.Internships, err = s.store.ListInternshipHours(ctx, yearID); err != nil {
		return snapshot, wrap(err, "internship hours")
	}
	if snapshot.Development, err = s.store.ListDevelopmentHours(ctx, yearID); err != nil {
		return snapshot, wrap(err, "development hours")
	}
	return snapshot, nil
}

// DistributeShares overwrites the share ratios of a project's members with the
// default positional weights and clears cached workload reports.
func (s *WorkloadService) DistributeShares(ctx context.Context, projectID string) (resp *dto.DistributeSharesResponse, err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	members, err := s.store.ListProjectMembers(ctx, tx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project members")
	}
	if len(members) == 0 {
		err = appErrors.Clone(appErrors.ErrNotFound, "research project has no members")
		return nil, err
	}

	updated := workload.DistributeShares(members)
	if err = s.store.UpdateShareRatios(ctx, tx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store share ratios")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit share ratios")
	}

	_ = s.cache.Invalidate(ctx, workloadCacheKey("")+"*")
	s.logger.Info("research shares distributed", zap.String("project_id", projectID), zap.Int("members", len(updated)))
	return &dto.DistributeSharesResponse{ProjectID: projectID, Members: updated}, nil
}
