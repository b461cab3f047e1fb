package scheduler

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// FailureCode classifies why a section could not be placed.
type FailureCode string

const (
	FailurePlacementExempt  FailureCode = "PLACEMENT_EXEMPT"
	FailureUnclassified     FailureCode = "UNCLASSIFIED_SUBJECT"
	FailureNoWeeks          FailureCode = "NO_ELIGIBLE_WEEKS"
	FailureUnknownPeriods   FailureCode = "UNKNOWN_TOTAL_PERIODS"
	FailureNoRooms          FailureCode = "NO_CANDIDATE_ROOMS"
	FailureNoFeasibleSlot   FailureCode = "NO_FEASIBLE_SLOT"
	FailureSectionLocked    FailureCode = "SECTION_LOCKED"
	FailureMissingSubject   FailureCode = "SUBJECT_NOT_FOUND"
	FailureDeadlineExceeded FailureCode = "DEADLINE_EXCEEDED"
	FailurePersistence      FailureCode = "PERSISTENCE_FAILED"
)

// Failure is an expected, per-section scheduling outcome. It is returned, never raised.
type Failure struct {
	Code   FailureCode `json:"code"`
	Reason string      `json:"reason"`
}

func (f *Failure) Error() string {
	return f.Reason
}

// Fail builds a Failure.
func Fail(code FailureCode, format string, args ...any) *Failure {
	return &Failure{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// SkipReason reports sections that automatic batch runs leave untouched
// without counting them as failures.
func SkipReason(ctx SectionContext) (string, bool) {
	switch {
	case ctx.Section.Locked:
		return "section is locked", true
	case ctx.Subject.ExternalManaged:
		return "subject is managed externally", true
	case PeriodsPerSession(ctx.Kind()) == 0:
		return "subject is placement-exempt", true
	}
	return "", false
}

// SemiAutoOptions parameterizes a bounded-window placement.
type SemiAutoOptions struct {
	StartWeekIndex   int
	SessionsPerWeek  int
	WeekCount        *int
	AllowedRoomCodes []string
}

// Placer runs the first-fit searches against a term's oracle. Every slot it
// returns has already been recorded in the oracle.
type Placer struct {
	Oracle               *Oracle
	StrictClassification bool
	NewID                func() string
}

// NewPlacer binds a placer to an oracle.
func NewPlacer(oracle *Oracle, strict bool) *Placer {
	return &Placer{Oracle: oracle, StrictClassification: strict, NewID: uuid.NewString}
}

func (p *Placer) periodsPerSession(ctx SectionContext) (int, *Failure) {
	kind := ctx.Kind()
	if kind == models.SubjectKindUnclassified && p.StrictClassification {
		return 0, Fail(FailureUnclassified, "subject %s has no classification", ctx.Subject.Code)
	}
	perSession := PeriodsPerSession(kind)
	if perSession <= 0 {
		return 0, Fail(FailurePlacementExempt, "subject %s is not placed in the timetable", ctx.Subject.Code)
	}
	return perSession, nil
}

// roomOptions yields a single nil room for exempt-style subjects without candidates.
func roomOptions(ctx SectionContext, rooms []models.Room) ([]*models.Room, *Failure) {
	if len(rooms) == 0 {
		if ctx.Kind() != models.SubjectKindInternship {
			return nil, Fail(FailureNoRooms, "no suitable room for section %s", ctx.Section.Code)
		}
		return []*models.Room{nil}, nil
	}
	options := make([]*models.Room, 0, len(rooms))
	for i := range rooms {
		options = append(options, &rooms[i])
	}
	return options, nil
}

func (p *Placer) feasible(ctx SectionContext, room *models.Room, day, start, end int, weekIDs []string) bool {
	var roomID *string
	if room != nil {
		roomID = &room.ID
	}
	if p.Oracle.HasConflict(RoomResource(roomID), day, start, end, weekIDs) {
		return false
	}
	if p.Oracle.HasConflict(CohortResource(ctx.CohortIDs()), day, start, end, weekIDs) {
		return false
	}
	return !p.Oracle.HasConflict(InstructorResource(ctx.Section.InstructorID), day, start, end, weekIDs)
}

func (p *Placer) book(ctx SectionContext, room *models.Room, day, start, end int, weekIDs []string) models.TeachingSlot {
	slot := models.TeachingSlot{
		ID:          p.NewID(),
		SectionID:   ctx.Section.ID,
		DayOfWeek:   day,
		StartPeriod: start,
		EndPeriod:   end,
		WeekIDs:     weekIDs,
	}
	if room != nil {
		roomID := room.ID
		slot.RoomID = &roomID
	}
	section := ctx.Section
	section.CohortIDs = ctx.CohortIDs()
	p.Oracle.Record(section, slot)
	return slot
}

// PlaceFixed finds one day, start period and room usable across every required
// week and returns a single slot bound to all of them. termWeeks is the term's
// full week list; rooms the full room catalog.
func (p *Placer) PlaceFixed(ctx SectionContext, termWeeks []models.AcademicWeek, rooms []models.Room) (models.TeachingSlot, *Failure) {
	perSession, failure := p.periodsPerSession(ctx)
	if failure != nil {
		return models.TeachingSlot{}, failure
	}

	eligible := EligibleWeeks(termWeeks, ctx.Section.StartWeek, ctx.Section.WeekCount)
	if len(eligible) == 0 {
		return models.TeachingSlot{}, Fail(FailureNoWeeks, "no eligible teaching weeks after applying start week and week count")
	}

	sessions := SessionsNeeded(ctx.TotalPeriods(), perSession)
	if sessions == 0 {
		return models.TeachingSlot{}, Fail(FailureUnknownPeriods, "total periods for section %s are unknown", ctx.Section.Code)
	}
	if len(eligible) > sessions {
		eligible = eligible[:sessions]
	}
	weeks := weekIDs(eligible)

	options, failure := roomOptions(ctx, CandidateRooms(ctx, rooms))
	if failure != nil {
		return models.TeachingSlot{}, failure
	}

	for _, day := range DayCandidates {
		for _, start := range StartPeriodCandidates {
			end := start + perSession - 1
			if !InstructorAvailable(ctx.Availability, day, start, end) {
				continue
			}
			for _, room := range options {
				if p.feasible(ctx, room, day, start, end, weeks) {
					return p.book(ctx, room, day, start, end, weeks), nil
				}
			}
		}
	}
	return models.TeachingSlot{}, Fail(FailureNoFeasibleSlot, "no common day/period/room works for all weeks")
}

// PlaceSemiAuto places up to SessionsPerWeek single-week slots per week, walking
// weeks in order from StartWeekIndex. Partial placement is a success; a failure
// is returned only when nothing was placed.
func (p *Placer) PlaceSemiAuto(ctx SectionContext, termWeeks []models.AcademicWeek, rooms []models.Room, opts SemiAutoOptions) ([]models.TeachingSlot, *Failure) {
	perSession, failure := p.periodsPerSession(ctx)
	if failure != nil {
		return nil, failure
	}
	perWeek := opts.SessionsPerWeek
	if perWeek <= 0 {
		perWeek = 1
	}
	startIndex := opts.StartWeekIndex

	available := EligibleWeeks(termWeeks, &startIndex, nil)
	if len(available) == 0 {
		return nil, Fail(FailureNoWeeks, "no teaching weeks from week %d", startIndex)
	}

	sessions := SessionsNeeded(ctx.TotalPeriods(), perSession)
	if sessions == 0 {
		return nil, Fail(FailureUnknownPeriods, "total periods for section %s are unknown", ctx.Section.Code)
	}

	weeksNeeded := (sessions + perWeek - 1) / perWeek
	if opts.WeekCount != nil && *opts.WeekCount > 0 {
		weeksNeeded = *opts.WeekCount
	}
	if len(available) > weeksNeeded {
		available = available[:weeksNeeded]
	}

	filter := FilterForSection(ctx)
	filter.AllowedCodes = opts.AllowedRoomCodes
	var candidates []models.Room
	if PeriodsPerSession(ctx.Kind()) > 0 {
		candidates = FilterRooms(rooms, filter)
	}
	options, failure := roomOptions(ctx, candidates)
	if failure != nil {
		return nil, failure
	}

	maxSessions := sessions
	if capacity := perWeek * len(available); capacity < maxSessions {
		maxSessions = capacity
	}

	placed := make([]models.TeachingSlot, 0, maxSessions)
	for _, week := range available {
		if len(placed) >= maxSessions {
			break
		}
		weekly := 0
		target := []string{week.ID}
		for _, day := range DayCandidates {
			for _, start := range StartPeriodCandidates {
				if weekly >= perWeek || len(placed) >= maxSessions {
					break
				}
				end := start + perSession - 1
				if !InstructorAvailable(ctx.Availability, day, start, end) {
					continue
				}
				for _, room := range options {
					if p.feasible(ctx, room, day, start, end, target) {
						placed = append(placed, p.book(ctx, room, day, start, end, target))
						weekly++
						break
					}
				}
			}
		}
	}

	if len(placed) == 0 {
		return nil, Fail(FailureNoFeasibleSlot, "no feasible slot: rooms, cohorts or instructor are occupied or restricted")
	}
	return placed, nil
}
