package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

func TestWorkloadRepositoryListDutiesJoinsReductionType(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWorkloadRepository(db)

	rows := sqlmock.NewRows([]string{"id", "instructor_id", "academic_year_id", "reduction_type_id", "reduction_name", "teaching_percent", "admin_percent", "months"}).
		AddRow("d1", "inst-1", "year-1", "rt-1", "Department head", 30.0, 20.0, 5)
	mock.ExpectQuery("FROM duties d JOIN reduction_types rt").
		WithArgs("year-1").
		WillReturnRows(rows)

	duties, err := repo.ListDuties(context.Background(), "year-1")
	require.NoError(t, err)
	require.Len(t, duties, 1)
	assert.Equal(t, 30.0, duties[0].TeachingPercent)
	assert.Equal(t, 5, duties[0].Months)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkloadRepositoryTeachingLoadsCountWeeks(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWorkloadRepository(db)

	rows := sqlmock.NewRows([]string{"instructor_id", "start_period", "end_period", "week_count"}).
		AddRow("inst-1", 1, 5, 2)
	mock.ExpectQuery("COUNT\\(tw.week_id\\) AS week_count").
		WithArgs("year-1").
		WillReturnRows(rows)

	loads, err := repo.ListTeachingLoads(context.Background(), "year-1")
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, 2, loads[0].WeekCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkloadRepositorySumsInternshipHours(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWorkloadRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM enterprise_internships WHERE academic_year_id = $1 GROUP BY instructor_id")).
		WithArgs("year-1").
		WillReturnRows(sqlmock.NewRows([]string{"instructor_id", "hours"}).AddRow("inst-1", 40.0))

	credits, err := repo.ListInternshipHours(context.Background(), "year-1")
	require.NoError(t, err)
	assert.Equal(t, []models.CreditHours{{InstructorID: "inst-1", Hours: 40}}, credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkloadRepositoryUpdateShareRatios(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWorkloadRepository(db)

	first, second := 0.6, 0.4
	mock.ExpectExec(regexp.QuoteMeta("UPDATE research_members SET share_ratio = $2 WHERE id = $1")).
		WithArgs("m1", first).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE research_members SET share_ratio = $2 WHERE id = $1")).
		WithArgs("m2", second).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateShareRatios(context.Background(), nil, []models.ResearchMember{
		{ID: "m1", ShareRatio: &first},
		{ID: "m2", ShareRatio: &second},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
