package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPlanWeeksSkipsBreakWithoutConsumingIndex(t *testing.T) {
	breaks := []models.BreakInterval{{StartDate: date("2025-01-13"), EndDate: date("2025-01-19")}}

	plans := PlanWeeks(date("2025-01-06"), 3, breaks)

	require.Len(t, plans, 3)
	assert.Equal(t, WeekPlan{Index: 1, StartDate: date("2025-01-06"), EndDate: date("2025-01-12")}, plans[0])
	assert.Equal(t, WeekPlan{Index: 2, StartDate: date("2025-01-20"), EndDate: date("2025-01-26")}, plans[1])
	assert.Equal(t, WeekPlan{Index: 3, StartDate: date("2025-01-27"), EndDate: date("2025-02-02")}, plans[2])
}

func TestPlanWeeksIsDeterministic(t *testing.T) {
	breaks := []models.BreakInterval{
		{StartDate: date("2025-02-10"), EndDate: date("2025-02-16")},
		{StartDate: date("2025-01-13"), EndDate: date("2025-01-19")},
	}

	first := PlanWeeks(date("2025-01-06"), 15, breaks)
	second := PlanWeeks(date("2025-01-06"), 15, breaks)

	assert.Equal(t, first, second)
	for i, plan := range first {
		assert.Equal(t, i+1, plan.Index)
		for _, b := range breaks {
			assert.False(t, b.Contains(plan.StartDate), "week %d starts inside a break", plan.Index)
		}
	}
}

func TestPlanWeeksHandlesBackToBackBreaks(t *testing.T) {
	breaks := []models.BreakInterval{
		{StartDate: date("2025-01-06"), EndDate: date("2025-01-08")},
		{StartDate: date("2025-01-09"), EndDate: date("2025-01-12")},
	}

	plans := PlanWeeks(date("2025-01-06"), 1, breaks)

	require.Len(t, plans, 1)
	assert.Equal(t, date("2025-01-13"), plans[0].StartDate)
}

func TestPlanWeeksEmptyForNonPositiveCount(t *testing.T) {
	assert.Empty(t, PlanWeeks(date("2025-01-06"), 0, nil))
}

func TestEligibleWeeksAppliesStartAndCount(t *testing.T) {
	weeks := []models.AcademicWeek{
		{ID: "w3", Index: 3},
		{ID: "w1", Index: 1},
		{ID: "w2", Index: 2},
		{ID: "wb", Index: 4, IsBreak: true},
		{ID: "w5", Index: 5},
	}
	start, count := 2, 2

	eligible := EligibleWeeks(weeks, &start, &count)

	assert.Equal(t, []string{"w2", "w3"}, weekIDs(eligible))
	assert.Equal(t, []string{"w1", "w2", "w3", "w5"}, weekIDs(EligibleWeeks(weeks, nil, nil)))
}
