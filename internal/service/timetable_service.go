package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

type timetableTermReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type timetableWeekReader interface {
	ListByTerm(ctx context.Context, termID string) ([]models.AcademicWeek, error)
}

type sectionReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseSection, error)
	ListByTerm(ctx context.Context, termID, departmentCode string) ([]models.CourseSection, error)
}

type subjectReader interface {
	ListByTerm(ctx context.Context, termID string) ([]models.Subject, error)
}

type cohortReader interface {
	ListByTerm(ctx context.Context, termID string) ([]models.Cohort, error)
}

type roomReader interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type availabilityReader interface {
	ListAvailability(ctx context.Context, instructorIDs []string) ([]models.AvailabilityWindow, error)
}

type slotStore interface {
	ListByTerm(ctx context.Context, exec sqlx.ExtContext, termID string) ([]models.TeachingSlot, error)
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TeachingSlot) error
	DeleteUnlockedBySection(ctx context.Context, exec sqlx.ExtContext, sectionID string) ([]string, error)
	ListTimetable(ctx context.Context, filter models.SlotFilter) ([]models.TimetableEntry, error)
}

const (
	variantFixed    = "fixed"
	variantSemiAuto = "semi_auto"
	variantBatch    = "batch"

	outcomeScheduled = "scheduled"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

// TimetableConfig governs placement behaviour.
type TimetableConfig struct {
	BatchTimeout         time.Duration
	StrictClassification bool
}

// TimetableService places course sections into teaching slots and reads the resulting timetable.
type TimetableService struct {
	terms        timetableTermReader
	weeks        timetableWeekReader
	sections     sectionReader
	subjects     subjectReader
	cohorts      cohortReader
	rooms        roomReader
	availability availabilityReader
	slots        slotStore
	tx           txProvider
	locks        *TermLocks
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          TimetableConfig
	newID        func() string
}

// TimetableDeps bundles the collaborators of TimetableService.
type TimetableDeps struct {
	Terms        timetableTermReader
	Weeks        timetableWeekReader
	Sections     sectionReader
	Subjects     subjectReader
	Cohorts      cohortReader
	Rooms        roomReader
	Availability availabilityReader
	Slots        slotStore
	Tx           txProvider
	Locks        *TermLocks
	Cache        *CacheService
	Metrics      *MetricsService
}

// NewTimetableService wires scheduler dependencies.
func NewTimetableService(deps TimetableDeps, validate *validator.Validate, logger *zap.Logger, cfg TimetableConfig) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Locks == nil {
		deps.Locks = NewTermLocks()
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 2 * time.Minute
	}
	return &TimetableService{
		terms:        deps.Terms,
		weeks:        deps.Weeks,
		sections:     deps.Sections,
		subjects:     deps.Subjects,
		cohorts:      deps.Cohorts,
		rooms:        deps.Rooms,
		availability: deps.Availability,
		slots:        deps.Slots,
		tx:           deps.Tx,
		locks:        deps.Locks,
		cache:        deps.Cache,
		metrics:      deps.Metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
	}
}

// --- Term snapshot ---

// termSnapshot is everything placement reads for one term, loaded under the term lock.
type termSnapshot struct {
	term         *models.Term
	weeks        []models.AcademicWeek
	rooms        []models.Room
	sections     map[string]models.CourseSection
	subjects     map[string]models.Subject
	cohorts      map[string]models.Cohort
	availability map[string][]models.AvailabilityWindow
	oracle       *scheduler.Oracle
}

func (s *TimetableService) loadSnapshot(ctx context.Context, term *models.Term) (*termSnapshot, error) {
	weeks, err := s.weeks.ListByTerm(ctx, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic weeks")
	}
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	sections, err := s.sections.ListByTerm(ctx, term.ID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course sections")
	}
	subjects, err := s.subjects.ListByTerm(ctx, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	cohorts, err := s.cohorts.ListByTerm(ctx, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohorts")
	}
	existing, err := s.slots.ListByTerm(ctx, nil, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching slots")
	}

	snap := &termSnapshot{
		term:         term,
		weeks:        weeks,
		rooms:        rooms,
		sections:     make(map[string]models.CourseSection, len(sections)),
		subjects:     make(map[string]models.Subject, len(subjects)),
		cohorts:      make(map[string]models.Cohort, len(cohorts)),
		availability: make(map[string][]models.AvailabilityWindow),
	}
	instructorIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, section := range sections {
		snap.sections[section.ID] = section
		if section.InstructorID == nil {
			continue
		}
		if _, ok := seen[*section.InstructorID]; !ok {
			seen[*section.InstructorID] = struct{}{}
			instructorIDs = append(instructorIDs, *section.InstructorID)
		}
	}
	for _, subject := range subjects {
		snap.subjects[subject.ID] = subject
	}
	for _, cohort := range cohorts {
		snap.cohorts[cohort.ID] = cohort
	}

	windows, err := s.availability.ListAvailability(ctx, instructorIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor availability")
	}
	for _, window := range windows {
		snap.availability[window.InstructorID] = append(snap.availability[window.InstructorID], window)
	}

	snap.oracle = scheduler.NewOracle(existing, snap.sections)
	return snap, nil
}

// sectionContext resolves a section against the snapshot. Unknown cohorts are dropped.
func (snap *termSnapshot) sectionContext(section models.CourseSection) (scheduler.SectionContext, *scheduler.Failure) {
	subject, ok := snap.subjects[section.SubjectID]
	if !ok {
		return scheduler.SectionContext{}, scheduler.Fail(scheduler.FailureMissingSubject, "subject of section %s not found", section.Code)
	}
	ctx := scheduler.SectionContext{Section: section, Subject: subject}
	for _, id := range section.CohortIDs {
		if cohort, ok := snap.cohorts[id]; ok {
			ctx.Cohorts = append(ctx.Cohorts, cohort)
		}
	}
	if section.InstructorID != nil {
		ctx.Availability = snap.availability[*section.InstructorID]
	}
	return ctx, nil
}

// --- Single section ---

// ScheduleSectionFixed places one section in a single slot shared by all its weeks.
func (s *TimetableService) ScheduleSectionFixed(ctx context.Context, sectionID string, req dto.ScheduleFixedRequest) (*dto.SectionScheduleResponse, error) {
	return s.scheduleSection(ctx, sectionID, variantFixed, req.ResetExisting, func(placer *scheduler.Placer, snap *termSnapshot, sc scheduler.SectionContext) ([]models.TeachingSlot, *scheduler.Failure) {
		slot, failure := placer.PlaceFixed(sc, snap.weeks, snap.rooms)
		if failure != nil {
			return nil, failure
		}
		return []models.TeachingSlot{slot}, nil
	})
}

// ScheduleSectionSemiAuto places one section week by week inside the requested window.
// Partial placement is a success.
func (s *TimetableService) ScheduleSectionSemiAuto(ctx context.Context, sectionID string, req dto.ScheduleSemiAutoRequest) (*dto.SectionScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semi-automatic scheduling payload")
	}
	opts := scheduler.SemiAutoOptions{
		StartWeekIndex:   req.StartWeekIndex,
		SessionsPerWeek:  req.SessionsPerWeek,
		WeekCount:        req.WeekCount,
		AllowedRoomCodes: req.AllowedRoomCodes,
	}
	return s.scheduleSection(ctx, sectionID, variantSemiAuto, req.ResetExisting, func(placer *scheduler.Placer, snap *termSnapshot, sc scheduler.SectionContext) ([]models.TeachingSlot, *scheduler.Failure) {
		return placer.PlaceSemiAuto(sc, snap.weeks, snap.rooms, opts)
	})
}

type placeFunc func(placer *scheduler.Placer, snap *termSnapshot, sc scheduler.SectionContext) ([]models.TeachingSlot, *scheduler.Failure)

func (s *TimetableService) scheduleSection(ctx context.Context, sectionID, variant string, reset bool, place placeFunc) (*dto.SectionScheduleResponse, error) {
	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course section")
	}
	term, err := s.loadTerm(ctx, section.TermID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(term.ID)
	defer unlock()

	snap, err := s.loadSnapshot(ctx, term)
	if err != nil {
		return nil, err
	}
	current, ok := snap.sections[section.ID]
	if !ok {
		current = *section
	}
	if current.Locked {
		s.metrics.RecordSectionOutcome(variant, outcomeFailed)
		return nil, schedulingError(scheduler.Fail(scheduler.FailureSectionLocked, "section %s is locked", current.Code))
	}
	sc, failure := snap.sectionContext(current)
	if failure != nil {
		s.metrics.RecordSectionOutcome(variant, outcomeFailed)
		return nil, schedulingError(failure)
	}

	placed, removed, failure, err := s.placeAndCommit(ctx, snap, sc, reset, false, place)
	if err != nil {
		return nil, err
	}
	if failure != nil {
		s.metrics.RecordSectionOutcome(variant, outcomeFailed)
		s.logger.Debug("section not scheduled",
			zap.String("section_id", sectionID),
			zap.String("variant", variant),
			zap.String("code", string(failure.Code)),
			zap.String("reason", failure.Reason),
		)
		return nil, schedulingError(failure)
	}

	s.metrics.RecordSectionOutcome(variant, outcomeScheduled)
	s.invalidateWorkload(ctx, term.AcademicYearID)
	s.logger.Debug("section scheduled",
		zap.String("section_id", sectionID),
		zap.String("variant", variant),
		zap.Int("slots", len(placed)),
	)
	return &dto.SectionScheduleResponse{SectionID: sectionID, Mode: variant, Slots: placed, Removed: removed}, nil
}

// placeAndCommit runs one placement and persists it in its own transaction.
// The oracle reflects the new slots only when the commit succeeds. With reset,
// a failed placement keeps the old unlocked slots unless clearOnFailure is set,
// in which case their removal is committed on its own.
func (s *TimetableService) placeAndCommit(ctx context.Context, snap *termSnapshot, sc scheduler.SectionContext, reset, clearOnFailure bool, place placeFunc) ([]models.TeachingSlot, int, *scheduler.Failure, error) {
	restore := func() {}
	if reset {
		restore = snap.oracle.Release(sc.Section.ID)
	}

	placer := scheduler.NewPlacer(snap.oracle, s.cfg.StrictClassification)
	if s.newID != nil {
		placer.NewID = s.newID
	}
	placed, failure := place(placer, snap, sc)
	if failure != nil {
		if !reset || !clearOnFailure {
			restore()
			return nil, 0, failure, nil
		}
		removed, err := s.persist(ctx, sc.Section.ID, true, nil)
		if err != nil {
			restore()
			return nil, 0, nil, err
		}
		return nil, removed, failure, nil
	}

	removed, err := s.persist(ctx, sc.Section.ID, reset, placed)
	if err != nil {
		ids := make([]string, 0, len(placed))
		for _, slot := range placed {
			ids = append(ids, slot.ID)
		}
		snap.oracle.Remove(ids...)
		restore()
		return nil, 0, nil, err
	}
	return placed, removed, nil, nil
}

func (s *TimetableService) persist(ctx context.Context, sectionID string, reset bool, slots []models.TeachingSlot) (removed int, err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if reset {
		var ids []string
		ids, err = s.slots.DeleteUnlockedBySection(ctx, tx, sectionID)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove existing slots")
		}
		removed = len(ids)
	}
	if err = s.slots.CreateBatch(ctx, tx, slots); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store teaching slots")
	}
	if err = tx.Commit(); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit teaching slots")
	}
	return removed, nil
}

// --- Whole term ---

// ScheduleWholeTermFixed runs fixed placement over every section of the term in
// code order. Locked, externally managed and placement-exempt sections are skipped.
// With reset, a section's unlocked slots are removed even when its placement
// fails, so a stale pattern never blocks the sections placed after it.
// When the batch deadline passes, already committed sections stay and every
// unstarted section is reported as failed.
func (s *TimetableService) ScheduleWholeTermFixed(ctx context.Context, termID string, req dto.TermScheduleRequest) (*models.BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term scheduling payload")
	}
	term, err := s.loadTerm(ctx, termID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.BatchTimeout)
	defer cancel()

	unlock := s.locks.Lock(termID)
	defer unlock()

	started := time.Now()
	snap, err := s.loadSnapshot(ctx, term)
	if err != nil {
		return nil, err
	}
	inScope, err := s.sections.ListByTerm(ctx, termID, req.DepartmentCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course sections")
	}

	reset := req.Reset()
	result := &models.BatchResult{
		TermID:    termID,
		Scheduled: make([]string, 0, len(inScope)),
		Failed:    make([]models.SectionFailure, 0),
		Skipped:   make([]models.SectionFailure, 0),
	}
	place := func(placer *scheduler.Placer, snap *termSnapshot, sc scheduler.SectionContext) ([]models.TeachingSlot, *scheduler.Failure) {
		slot, failure := placer.PlaceFixed(sc, snap.weeks, snap.rooms)
		if failure != nil {
			return nil, failure
		}
		return []models.TeachingSlot{slot}, nil
	}

	for i, listed := range inScope {
		if ctx.Err() != nil {
			for _, rest := range inScope[i:] {
				result.Failed = append(result.Failed, sectionFailure(rest, scheduler.Fail(scheduler.FailureDeadlineExceeded, "batch deadline exceeded")))
				s.metrics.RecordSectionOutcome(variantBatch, outcomeFailed)
			}
			break
		}

		section := listed
		if current, ok := snap.sections[listed.ID]; ok {
			section = current
		}
		sc, failure := snap.sectionContext(section)
		if failure == nil {
			if reason, skip := scheduler.SkipReason(sc); skip {
				result.Skipped = append(result.Skipped, models.SectionFailure{SectionID: section.ID, SectionCode: section.Code, Code: "SKIPPED", Reason: reason})
				s.metrics.RecordSectionOutcome(variantBatch, outcomeSkipped)
				continue
			}
			var placeErr error
			_, _, failure, placeErr = s.placeAndCommit(ctx, snap, sc, reset, true, place)
			if placeErr != nil {
				failure = scheduler.Fail(scheduler.FailurePersistence, "failed to store slots: %v", placeErr)
			}
		}

		if failure != nil {
			result.Failed = append(result.Failed, sectionFailure(section, failure))
			s.metrics.RecordSectionOutcome(variantBatch, outcomeFailed)
			s.logger.Debug("section not scheduled",
				zap.String("section_id", section.ID),
				zap.String("code", string(failure.Code)),
				zap.String("reason", failure.Reason),
			)
			continue
		}
		result.Scheduled = append(result.Scheduled, section.ID)
		s.metrics.RecordSectionOutcome(variantBatch, outcomeScheduled)
		s.logger.Debug("section scheduled", zap.String("section_id", section.ID))
	}

	elapsed := time.Since(started)
	s.metrics.ObserveBatch(elapsed)
	if len(result.Scheduled) > 0 {
		s.invalidateWorkload(context.WithoutCancel(ctx), term.AcademicYearID)
	}
	s.logger.Info("term batch scheduling finished",
		zap.String("term_id", termID),
		zap.String("department_code", req.DepartmentCode),
		zap.Bool("reset_existing", reset),
		zap.Int("scheduled", len(result.Scheduled)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

// --- Timetable views ---

// ListSlots returns the term's timetable, optionally narrowed to a cohort, room or instructor.
func (s *TimetableService) ListSlots(ctx context.Context, termID string, query dto.TimetableQuery) ([]models.TimetableEntry, error) {
	if _, err := s.loadTerm(ctx, termID); err != nil {
		return nil, err
	}
	entries, err := s.slots.ListTimetable(ctx, models.SlotFilter{
		TermID:       termID,
		CohortID:     query.CohortID,
		RoomID:       query.RoomID,
		InstructorID: query.InstructorID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	return entries, nil
}

func (s *TimetableService) loadTerm(ctx context.Context, termID string) (*models.Term, error) {
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

func (s *TimetableService) invalidateWorkload(ctx context.Context, yearID string) {
	if yearID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, workloadCacheKey(yearID)+"*"); err != nil {
		s.logger.Warn("failed to invalidate workload cache", zap.String("academic_year_id", yearID), zap.Error(err))
	}
}

func sectionFailure(section models.CourseSection, failure *scheduler.Failure) models.SectionFailure {
	return models.SectionFailure{
		SectionID:   section.ID,
		SectionCode: section.Code,
		Code:        string(failure.Code),
		Reason:      failure.Reason,
	}
}

func schedulingError(failure *scheduler.Failure) error {
	return appErrors.Wrap(failure, appErrors.ErrSchedulingFailed.Code, appErrors.ErrSchedulingFailed.Status, failure.Reason)
}
