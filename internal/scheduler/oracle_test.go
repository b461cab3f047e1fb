package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

func strPtr(value string) *string { return &value }

func oracleFixture() *Oracle {
	sections := map[string]models.CourseSection{
		"sec-1": {ID: "sec-1", InstructorID: strPtr("ins-1"), CohortIDs: []string{"coh-1", "coh-2"}},
	}
	slots := []models.TeachingSlot{{
		ID:          "slot-1",
		SectionID:   "sec-1",
		RoomID:      strPtr("room-1"),
		DayOfWeek:   1,
		StartPeriod: 1,
		EndPeriod:   5,
		WeekIDs:     []string{"w1", "w2"},
	}}
	return NewOracle(slots, sections)
}

func TestOracleDetectsOverlapInTimeAndWeeks(t *testing.T) {
	oracle := oracleFixture()

	assert.True(t, oracle.HasConflict(RoomResource(strPtr("room-1")), 1, 3, 7, []string{"w2", "w3"}))
	assert.True(t, oracle.HasConflict(InstructorResource(strPtr("ins-1")), 1, 5, 5, []string{"w1"}))
	assert.True(t, oracle.HasConflict(CohortResource([]string{"coh-9", "coh-2"}), 1, 1, 1, []string{"w1"}))
}

func TestOracleIgnoresDisjointWeeksOrPeriods(t *testing.T) {
	oracle := oracleFixture()

	assert.False(t, oracle.HasConflict(RoomResource(strPtr("room-1")), 1, 1, 5, []string{"w3"}))
	assert.False(t, oracle.HasConflict(RoomResource(strPtr("room-1")), 1, 6, 10, []string{"w1"}))
	assert.False(t, oracle.HasConflict(RoomResource(strPtr("room-1")), 2, 1, 5, []string{"w1"}))
	assert.False(t, oracle.HasConflict(RoomResource(strPtr("room-2")), 1, 1, 5, []string{"w1"}))
}

func TestOracleNullResourceNeverConflicts(t *testing.T) {
	oracle := oracleFixture()

	assert.False(t, oracle.HasConflict(RoomResource(nil), 1, 1, 5, []string{"w1"}))
	assert.False(t, oracle.HasConflict(InstructorResource(strPtr("")), 1, 1, 5, []string{"w1"}))
	assert.False(t, oracle.HasConflict(CohortResource(nil), 1, 1, 5, []string{"w1"}))
}

func TestOracleRecordedSlotConflictsSymmetrically(t *testing.T) {
	oracle := NewOracle(nil, nil)
	section := models.CourseSection{ID: "sec-2"}
	oracle.Record(section, models.TeachingSlot{ID: "a", SectionID: "sec-2", RoomID: strPtr("room-3"), DayOfWeek: 4, StartPeriod: 6, EndPeriod: 9, WeekIDs: []string{"w4"}})

	assert.True(t, oracle.HasConflict(RoomResource(strPtr("room-3")), 4, 9, 12, []string{"w4", "w5"}))
	assert.False(t, oracle.HasConflict(RoomResource(strPtr("room-3")), 4, 9, 12, []string{"w5"}))

	oracle.Remove("a")
	assert.False(t, oracle.HasConflict(RoomResource(strPtr("room-3")), 4, 9, 12, []string{"w4"}))
	assert.Equal(t, 0, oracle.Len())
}

func TestOracleReleaseKeepsLockedSlots(t *testing.T) {
	sections := map[string]models.CourseSection{"sec-1": {ID: "sec-1"}}
	oracle := NewOracle([]models.TeachingSlot{
		{ID: "free", SectionID: "sec-1", RoomID: strPtr("room-1"), DayOfWeek: 1, StartPeriod: 1, EndPeriod: 5, WeekIDs: []string{"w1"}},
		{ID: "pinned", SectionID: "sec-1", RoomID: strPtr("room-1"), DayOfWeek: 2, StartPeriod: 1, EndPeriod: 5, WeekIDs: []string{"w1"}, Locked: true},
	}, sections)

	assert.Equal(t, []string{"free"}, oracle.SlotIDsForSection("sec-1"))
	restore := oracle.Release("sec-1")
	assert.False(t, oracle.HasConflict(RoomResource(strPtr("room-1")), 1, 1, 5, []string{"w1"}))
	assert.True(t, oracle.HasConflict(RoomResource(strPtr("room-1")), 2, 1, 5, []string{"w1"}))

	restore()
	assert.True(t, oracle.HasConflict(RoomResource(strPtr("room-1")), 1, 1, 5, []string{"w1"}))
	assert.Equal(t, 2, oracle.Len())
}

func TestPeriodsAndWeeksOverlap(t *testing.T) {
	assert.True(t, PeriodsOverlap(1, 5, 5, 9))
	assert.False(t, PeriodsOverlap(1, 5, 6, 10))
	assert.True(t, WeeksOverlap([]string{"a", "b"}, []string{"b"}))
	assert.False(t, WeeksOverlap([]string{"a"}, nil))
}
