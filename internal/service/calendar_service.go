package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

type calendarTermReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
	ListBreaks(ctx context.Context, termID string) ([]models.BreakInterval, error)
}

type weekStore interface {
	ListByTerm(ctx context.Context, termID string) ([]models.AcademicWeek, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, week *models.AcademicWeek) (bool, error)
}

// CalendarService materialises the dated teaching weeks of a term.
type CalendarService struct {
	terms        calendarTermReader
	weeks        weekStore
	tx           txProvider
	locks        *TermLocks
	metrics      *MetricsService
	logger       *zap.Logger
	defaultWeeks int
}

// NewCalendarService constructs the service. defaultWeeks applies to terms
// without a configured teaching-week count.
func NewCalendarService(terms calendarTermReader, weeks weekStore, tx txProvider, locks *TermLocks, metrics *MetricsService, logger *zap.Logger, defaultWeeks int) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = NewTermLocks()
	}
	if defaultWeeks <= 0 {
		defaultWeeks = models.DefaultTeachingWeeks
	}
	return &CalendarService{terms: terms, weeks: weeks, tx: tx, locks: locks, metrics: metrics, logger: logger, defaultWeeks: defaultWeeks}
}

// GenerateWeeks upserts weeks 1..N of the term, skipping break intervals.
// Re-running updates dates in place.
func (s *CalendarService) GenerateWeeks(ctx context.Context, termID string) (*dto.GenerateWeeksResponse, error) {
	term, err := s.loadTerm(ctx, termID)
	if err != nil {
		return nil, err
	}
	if term.StartDate == nil {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "term start date is not set")
	}
	count := s.defaultWeeks
	if term.TeachingWeeks != nil && *term.TeachingWeeks > 0 {
		count = *term.TeachingWeeks
	}

	breaks, err := s.terms.ListBreaks(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load break intervals")
	}

	plans := scheduler.PlanWeeks(*term.StartDate, count, breaks)

	unlock := s.locks.Lock(termID)
	defer unlock()

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	resp := &dto.GenerateWeeksResponse{TermID: termID, Weeks: make([]models.AcademicWeek, 0, len(plans))}
	for _, plan := range plans {
		week := models.AcademicWeek{
			TermID:    termID,
			Index:     plan.Index,
			StartDate: plan.StartDate,
			EndDate:   plan.EndDate,
		}
		var created bool
		created, err = s.weeks.Upsert(ctx, tx, &week)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store academic week")
		}
		if created {
			resp.Created++
		} else {
			resp.Updated++
		}
		resp.Weeks = append(resp.Weeks, week)
	}

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit academic weeks")
	}

	s.metrics.RecordWeeks(resp.Created, resp.Updated)
	s.logger.Info("academic weeks generated",
		zap.String("term_id", termID),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
	)
	return resp, nil
}

// ListWeeks returns the stored weeks of a term.
func (s *CalendarService) ListWeeks(ctx context.Context, termID string) ([]models.AcademicWeek, error) {
	if _, err := s.loadTerm(ctx, termID); err != nil {
		return nil, err
	}
	weeks, err := s.weeks.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic weeks")
	}
	return weeks, nil
}

func (s *CalendarService) loadTerm(ctx context.Context, termID string) (*models.Term, error) {
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}
