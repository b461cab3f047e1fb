package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// WeekRepository persists the dated academic weeks of a term.
type WeekRepository struct {
	db *sqlx.DB
}

// NewWeekRepository builds a week repository.
func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

func (r *WeekRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByTerm returns the term's weeks ordered by index.
func (r *WeekRepository) ListByTerm(ctx context.Context, termID string) ([]models.AcademicWeek, error) {
	const query = `SELECT id, term_id, week_index, start_date, end_date, is_break, created_at, updated_at
FROM academic_weeks WHERE term_id = $1 ORDER BY week_index ASC`
	var weeks []models.AcademicWeek
	if err := r.db.SelectContext(ctx, &weeks, query, termID); err != nil {
		return nil, fmt.Errorf("list academic weeks: %w", err)
	}
	return weeks, nil
}

type upsertedWeek struct {
	ID       string `db:"id"`
	Inserted bool   `db:"inserted"`
}

// Upsert creates or updates the week identified by (term, index) and reports
// whether a new row was inserted. The week's ID is set to the stored row's id.
func (r *WeekRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, week *models.AcademicWeek) (bool, error) {
	now := time.Now().UTC()
	if week.ID == "" {
		week.ID = uuid.NewString()
	}
	week.UpdatedAt = now
	if week.CreatedAt.IsZero() {
		week.CreatedAt = now
	}

	const query = `
INSERT INTO academic_weeks (id, term_id, week_index, start_date, end_date, is_break, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (term_id, week_index) DO UPDATE
SET start_date = EXCLUDED.start_date,
    end_date = EXCLUDED.end_date,
    is_break = EXCLUDED.is_break,
    updated_at = EXCLUDED.updated_at
RETURNING id, (xmax = 0) AS inserted`

	var row upsertedWeek
	if err := sqlx.GetContext(ctx, r.exec(exec), &row, query,
		week.ID, week.TermID, week.Index, week.StartDate, week.EndDate, week.IsBreak, week.CreatedAt, week.UpdatedAt); err != nil {
		return false, fmt.Errorf("upsert academic week %d: %w", week.Index, err)
	}
	week.ID = row.ID
	return row.Inserted, nil
}
