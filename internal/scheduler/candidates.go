package scheduler

import (
	"math"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// Search-space anchors. Days run Monday (1) to Saturday (6); periods 1 and 6
// open the morning and afternoon blocks.
var (
	DayCandidates         = []int{1, 2, 3, 4, 5, 6}
	StartPeriodCandidates = []int{1, 6}
)

// SectionContext is the resolved catalog snapshot for one section.
type SectionContext struct {
	Section      models.CourseSection
	Subject      models.Subject
	Cohorts      []models.Cohort
	Availability []models.AvailabilityWindow
}

// Kind is the subject classification driving session length.
func (c SectionContext) Kind() models.SubjectKind {
	return c.Subject.ResolvedKind()
}

// TotalPeriods falls back to the subject total when the section does not plan its own.
func (c SectionContext) TotalPeriods() float64 {
	if c.Section.PlannedPeriods != nil {
		return *c.Section.PlannedPeriods
	}
	if c.Subject.TotalPeriods != nil {
		return *c.Subject.TotalPeriods
	}
	return 0
}

// Enrollment sums the sizes of the attending cohorts.
func (c SectionContext) Enrollment() int {
	total := 0
	for _, cohort := range c.Cohorts {
		total += cohort.Size
	}
	return total
}

// CohortIDs returns the section's cohort ids, preferring the resolved cohorts.
func (c SectionContext) CohortIDs() []string {
	if len(c.Cohorts) == 0 {
		return c.Section.CohortIDs
	}
	ids := make([]string, 0, len(c.Cohorts))
	for _, cohort := range c.Cohorts {
		ids = append(ids, cohort.ID)
	}
	return ids
}

func (c SectionContext) majors() []string {
	seen := make(map[string]struct{}, len(c.Cohorts))
	majors := make([]string, 0, len(c.Cohorts))
	for _, cohort := range c.Cohorts {
		if cohort.MajorID == "" {
			continue
		}
		if _, ok := seen[cohort.MajorID]; ok {
			continue
		}
		seen[cohort.MajorID] = struct{}{}
		majors = append(majors, cohort.MajorID)
	}
	return majors
}

// PeriodsPerSession maps a subject classification to its session length.
// Zero marks a placement-exempt subject.
func PeriodsPerSession(kind models.SubjectKind) int {
	switch kind {
	case models.SubjectKindInternship:
		return 0
	case models.SubjectKindPractical:
		return 4
	default:
		return 5
	}
}

// SessionsNeeded is ceil(totalPeriods / periodsPerSession).
func SessionsNeeded(totalPeriods float64, periodsPerSession int) int {
	if totalPeriods <= 0 || periodsPerSession <= 0 {
		return 0
	}
	return int(math.Ceil(totalPeriods / float64(periodsPerSession)))
}

// RoomFilter is a set of optional room constraints. Nil or empty fields do not
// filter, except that rooms restricted to majors always require a Majors match.
type RoomFilter struct {
	RoomType     *string
	MinCapacity  int
	Capability   *string
	Majors       []string
	AllowedCodes []string
}

// FilterForSection derives the room constraints implied by a section's subject and cohorts.
func FilterForSection(ctx SectionContext) RoomFilter {
	return RoomFilter{
		RoomType:    nonEmpty(ctx.Subject.RequiredRoomType),
		MinCapacity: ctx.Enrollment(),
		Capability:  nonEmpty(ctx.Subject.SpecializationGroup),
		Majors:      ctx.majors(),
	}
}

func nonEmpty(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}

// Matches evaluates every configured constraint against one room.
func (f RoomFilter) Matches(room models.Room) bool {
	if f.RoomType != nil && room.RoomType != *f.RoomType {
		return false
	}
	if room.Capacity < f.MinCapacity {
		return false
	}
	if f.Capability != nil && !containsString(room.Capabilities, *f.Capability) {
		return false
	}
	// a restricted room needs a cohort of a listed major; cohorts without a major never qualify
	if len(room.AllowedMajors) > 0 && !intersects(room.AllowedMajors, f.Majors) {
		return false
	}
	if len(f.AllowedCodes) > 0 && !containsString(f.AllowedCodes, room.Code) {
		return false
	}
	return true
}

// FilterRooms keeps catalog order.
func FilterRooms(rooms []models.Room, filter RoomFilter) []models.Room {
	result := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if filter.Matches(room) {
			result = append(result, room)
		}
	}
	return result
}

// CandidateRooms lists the rooms usable by a section; placement-exempt sections get none.
func CandidateRooms(ctx SectionContext, rooms []models.Room) []models.Room {
	if PeriodsPerSession(ctx.Kind()) == 0 {
		return nil
	}
	return FilterRooms(rooms, FilterForSection(ctx))
}

// InstructorAvailable is false when an unavailable window on day overlaps the period range.
func InstructorAvailable(windows []models.AvailabilityWindow, day, start, end int) bool {
	for _, window := range windows {
		if window.Available || window.DayOfWeek != day {
			continue
		}
		if PeriodsOverlap(start, end, window.StartPeriod, window.EndPeriod) {
			return false
		}
	}
	return true
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, value := range a {
		if containsString(b, value) {
			return true
		}
	}
	return false
}
