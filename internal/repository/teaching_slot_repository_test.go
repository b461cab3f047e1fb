package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

func TestTeachingSlotRepositoryCreateBatchBindsWeeks(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeachingSlotRepository(db)

	room := "room-1"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teaching_slots")).
		WithArgs("slot-1", "sec-1", &room, 1, 1, 5, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teaching_slot_weeks (slot_id, week_id) SELECT $1, unnest($2::uuid[])")).
		WithArgs("slot-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teaching_slots")).
		WithArgs("slot-2", "sec-1", nil, 2, 6, 10, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	slots := []models.TeachingSlot{
		{ID: "slot-1", SectionID: "sec-1", RoomID: &room, DayOfWeek: 1, StartPeriod: 1, EndPeriod: 5, WeekIDs: []string{"w1", "w2"}},
		{ID: "slot-2", SectionID: "sec-1", DayOfWeek: 2, StartPeriod: 6, EndPeriod: 10},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), nil, slots))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeachingSlotRepositoryDeleteUnlocked(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeachingSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM teaching_slots WHERE section_id = $1 AND is_locked = FALSE RETURNING id")).
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("slot-1").AddRow("slot-2"))

	ids, err := repo.DeleteUnlockedBySection(context.Background(), nil, "sec-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"slot-1", "slot-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeachingSlotRepositoryListByTermScansWeeks(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeachingSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "section_id", "room_id", "day_of_week", "start_period", "end_period", "is_locked", "created_at", "week_ids"}).
		AddRow("slot-1", "sec-1", "room-1", 1, 1, 5, true, time.Now(), "{w1,w2}")
	mock.ExpectQuery("WHERE cs.term_id = \\$1\\s+GROUP BY ts.id").
		WithArgs("term-1").
		WillReturnRows(rows)

	slots, err := repo.ListByTerm(context.Background(), nil, "term-1")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, []string{"w1", "w2"}, []string(slots[0].WeekIDs))
	assert.True(t, slots[0].Locked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeachingSlotRepositoryListTimetableAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeachingSlotRepository(db)

	rows := sqlmock.NewRows([]string{"slot_id", "section_id", "section_code", "subject_code", "subject_name", "instructor_name", "room_code", "cohort_codes", "day_of_week", "start_period", "end_period", "week_indexes"}).
		AddRow("slot-1", "sec-1", "MH101-01", "MH101", "Algorithms", "Ada", "A101", "{K20A}", 1, 1, 5, "{1,2}")
	mock.ExpectQuery("cs.term_id = \\$1 AND \\$2 = ANY\\(cs.cohort_ids\\) AND cs.instructor_id = \\$3").
		WithArgs("term-1", "cohort-1", "inst-1").
		WillReturnRows(rows)

	entries, err := repo.ListTimetable(context.Background(), models.SlotFilter{TermID: "term-1", CohortID: "cohort-1", InstructorID: "inst-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []int64{1, 2}, []int64(entries[0].WeekIndexes))
	assert.Equal(t, []string{"K20A"}, []string(entries[0].CohortCodes))
	assert.NoError(t, mock.ExpectationsWereMet())
}
