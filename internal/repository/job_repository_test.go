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

var jobRowColumns = []string{"id", "type", "params", "status", "progress", "result", "result_url", "created_by", "created_at", "finished_at", "error_message"}

func TestJobRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_jobs")).
		WithArgs(sqlmock.AnyArg(), "BATCH_SCHEDULE", sqlmock.AnyArg(), "QUEUED", 0, sqlmock.AnyArg(), nil, "user-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ScheduleJob{
		Type:      models.JobTypeBatchSchedule,
		Params:    models.JobParams{TermID: "term-1", ResetExisting: true},
		CreatedBy: "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)

	rows := sqlmock.NewRows(jobRowColumns).
		AddRow(job.ID, "BATCH_SCHEDULE", `{"termId":"term-1","resetExisting":true}`, "FINISHED", 100,
			`{"scheduled":["sec-1"],"failed":[{"section_id":"sec-2","code":"NO_FEASIBLE_SLOT","reason":"no common day/period/room works for all weeks"}]}`,
			nil, "user-1", time.Now(), time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_jobs WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Params.ResetExisting)
	assert.Equal(t, []string{"sec-1"}, fetched.Result.Scheduled)
	require.Len(t, fetched.Result.Failed, 1)
	assert.Equal(t, "sec-2", fetched.Result.Failed[0].SectionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	now := time.Now()
	status := models.JobStatusFinished
	progress := 100
	result := "/api/v1/exports/token"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedule_jobs SET status = $1, progress = $2, result_url = $3, finished_at = $4 WHERE id = $5")).
		WithArgs(status, progress, result, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateJobParams{
		Status:     &status,
		Progress:   &progress,
		ResultURL:  &result,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryUpdateWithoutChangesIsNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateJobParams{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	rows := sqlmock.NewRows(jobRowColumns).
		AddRow("job-1", "WORKLOAD_EXPORT", `{"academicYearId":"year-1","format":"pdf"}`, "QUEUED", 0, nil, nil, "user-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.ExportFormatPDF, jobs[0].Params.Format)
	assert.NoError(t, mock.ExpectationsWereMet())
}
