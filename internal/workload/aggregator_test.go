package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

func floatPtr(value float64) *float64 { return &value }

func TestShareWeightsTable(t *testing.T) {
	assert.Equal(t, []float64{10}, ShareWeights(1))
	assert.Equal(t, []float64{6, 4}, ShareWeights(2))
	assert.Equal(t, []float64{3, 2, 2, 1, 1, 1}, ShareWeights(6))
	assert.InDeltaSlice(t, []float64{10.0 / 7, 10.0 / 7, 10.0 / 7, 10.0 / 7, 10.0 / 7, 10.0 / 7, 10.0 / 7}, ShareWeights(7), 1e-9)
	assert.Nil(t, ShareWeights(0))
}

func TestResearchHoursDefaultWeights(t *testing.T) {
	projects := []models.ResearchProject{{ID: "p1", Quantity: 1, HoursPerUnit: 90}}
	members := []models.ResearchMember{
		{ID: "m3", ProjectID: "p1", InstructorID: "c", Order: 3},
		{ID: "m1", ProjectID: "p1", InstructorID: "a", Order: 1},
		{ID: "m2", ProjectID: "p1", InstructorID: "b", Order: 2},
	}

	hours := ResearchHours(projects, members)

	assert.InDelta(t, 36, hours["a"], 1e-9)
	assert.InDelta(t, 27, hours["b"], 1e-9)
	assert.InDelta(t, 27, hours["c"], 1e-9)
}

func TestSharesPreferExplicitRatios(t *testing.T) {
	members := []models.ResearchMember{
		{ID: "m1", Order: 1, ShareRatio: floatPtr(3)},
		{ID: "m2", Order: 2, ShareRatio: floatPtr(1)},
		{ID: "m3", Order: 3},
	}

	shares := Shares(members)

	assert.InDelta(t, 0.75, shares["m1"], 1e-9)
	assert.InDelta(t, 0.25, shares["m2"], 1e-9)
	assert.Zero(t, shares["m3"])
}

func TestSharesSumToOne(t *testing.T) {
	for n := 1; n <= 9; n++ {
		members := make([]models.ResearchMember, 0, n)
		for i := 0; i < n; i++ {
			members = append(members, models.ResearchMember{ID: string(rune('a' + i)), Order: i})
		}
		total := 0.0
		for _, share := range Shares(members) {
			total += share
		}
		assert.InDelta(t, 1.0, total, 1e-9, "members=%d", n)
	}
}

func TestDistributeSharesWritesFractions(t *testing.T) {
	members := DistributeShares([]models.ResearchMember{
		{ID: "m2", Order: 2, ShareRatio: floatPtr(9)},
		{ID: "m1", Order: 1},
	})

	require.Len(t, members, 2)
	assert.Equal(t, "m1", members[0].ID)
	assert.InDelta(t, 0.6, *members[0].ShareRatio, 1e-9)
	assert.InDelta(t, 0.4, *members[1].ShareRatio, 1e-9)
}

func TestComputeAppliesDutyReduction(t *testing.T) {
	snapshot := Snapshot{
		Instructors: []models.Instructor{{ID: "i1", Code: "GV01", Name: "Lan", TeachingQuota: floatPtr(415), AdminQuota: floatPtr(480), ConversionRatio: floatPtr(3.2)}},
		Duties:      []models.Duty{{ID: "d1", InstructorID: "i1", ReductionName: "Head of department", TeachingPercent: 30, Months: 5}},
		Loads: []models.InstructorTeachingLoad{
			{InstructorID: "i1", StartPeriod: 1, EndPeriod: 5, WeekCount: 10},
			{InstructorID: "i1", StartPeriod: 6, EndPeriod: 9, WeekCount: 5},
		},
		Internships: []models.CreditHours{{InstructorID: "i1", Hours: 40}},
		Development: []models.CreditHours{{InstructorID: "i1", Hours: 20}},
	}

	rows := NewAggregator(10).Compute(snapshot)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.InDelta(t, 62.25, row.TeachingReducedHours, 1e-9)
	assert.InDelta(t, 352.75, row.AdjustedTeachingQuota, 1e-9)
	assert.InDelta(t, 480, row.AdjustedAdminQuota, 1e-9)
	assert.InDelta(t, 70, row.TeachingHours, 1e-9)
	assert.InDelta(t, 224, row.ConversionHours, 1e-9)
	assert.InDelta(t, 284, row.AdminHoursTotal, 1e-9)
	assert.InDelta(t, 70-352.75, row.TeachingOverload, 1e-9)
	assert.InDelta(t, 284-480.0, row.AdminOverload, 1e-9)
	require.Len(t, row.Duties, 1)
	assert.Equal(t, "Head of department", row.Duties[0].ReductionName)
}

func TestComputeFloorsQuotasAtZero(t *testing.T) {
	snapshot := Snapshot{
		Instructors: []models.Instructor{{ID: "i1", TeachingQuota: floatPtr(100), AdminQuota: floatPtr(100)}},
		Duties: []models.Duty{
			{ID: "d1", InstructorID: "i1", TeachingPercent: 100, AdminPercent: 100, Months: 10},
			{ID: "d2", InstructorID: "i1", TeachingPercent: 80, AdminPercent: 50, Months: 10},
		},
	}

	row := NewAggregator(0).Compute(snapshot)[0]

	assert.Zero(t, row.AdjustedTeachingQuota)
	assert.Zero(t, row.AdjustedAdminQuota)
	assert.InDelta(t, 180, row.TeachingReducedHours, 1e-9)
}

func TestComputeToleratesMissingData(t *testing.T) {
	rows := NewAggregator(10).Compute(Snapshot{
		Instructors: []models.Instructor{{ID: "i1"}, {ID: "i2"}},
		Projects:    []models.ResearchProject{{ID: "empty", Quantity: 2, HoursPerUnit: 50}},
	})

	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Zero(t, row.AdminHoursTotal)
		assert.Zero(t, row.TeachingOverload)
		assert.Empty(t, row.Duties)
	}
}
