package scheduler

import (
	"sort"
	"time"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// WeekPlan is a dated teaching week produced before it is persisted.
type WeekPlan struct {
	Index     int
	StartDate time.Time
	EndDate   time.Time
}

// CivilDate truncates t to a UTC midnight so date arithmetic ignores clocks and zones.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PlanWeeks walks forward from start one week at a time. A cursor date inside a
// break jumps to the day after that break and retries the same index, so breaks
// never consume an index.
func PlanWeeks(start time.Time, count int, breaks []models.BreakInterval) []WeekPlan {
	if count <= 0 {
		return nil
	}
	intervals := normalizeBreaks(breaks)
	cursor := CivilDate(start)
	plans := make([]WeekPlan, 0, count)
	for index := 1; index <= count; {
		if end, ok := breakContaining(intervals, cursor); ok {
			cursor = end.AddDate(0, 0, 1)
			continue
		}
		plans = append(plans, WeekPlan{
			Index:     index,
			StartDate: cursor,
			EndDate:   cursor.AddDate(0, 0, 6),
		})
		cursor = cursor.AddDate(0, 0, 7)
		index++
	}
	return plans
}

type civilInterval struct {
	start time.Time
	end   time.Time
}

func normalizeBreaks(breaks []models.BreakInterval) []civilInterval {
	intervals := make([]civilInterval, 0, len(breaks))
	for _, b := range breaks {
		start, end := CivilDate(b.StartDate), CivilDate(b.EndDate)
		if end.Before(start) {
			continue
		}
		intervals = append(intervals, civilInterval{start: start, end: end})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start.Before(intervals[j].start) })
	return intervals
}

func breakContaining(intervals []civilInterval, day time.Time) (time.Time, bool) {
	for _, interval := range intervals {
		if !day.Before(interval.start) && !day.After(interval.end) {
			return interval.end, true
		}
	}
	return time.Time{}, false
}

// EligibleWeeks returns the ordered non-break weeks starting at startIndex (or the
// first available index) and cut to count entries when count is positive.
func EligibleWeeks(weeks []models.AcademicWeek, startIndex, count *int) []models.AcademicWeek {
	ordered := make([]models.AcademicWeek, 0, len(weeks))
	for _, week := range weeks {
		if week.IsBreak {
			continue
		}
		ordered = append(ordered, week)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	if len(ordered) == 0 {
		return nil
	}

	from := ordered[0].Index
	if startIndex != nil && *startIndex > 0 {
		from = *startIndex
	}
	filtered := make([]models.AcademicWeek, 0, len(ordered))
	for _, week := range ordered {
		if week.Index >= from {
			filtered = append(filtered, week)
		}
	}
	if count != nil && *count > 0 && len(filtered) > *count {
		filtered = filtered[:*count]
	}
	return filtered
}

func weekIDs(weeks []models.AcademicWeek) []string {
	ids := make([]string, 0, len(weeks))
	for _, week := range weeks {
		ids = append(ids, week.ID)
	}
	return ids
}
