package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// TermRepository handles persistence for academic terms and their break intervals.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// FindByID retrieves a term by id. A missing row is returned as sql.ErrNoRows.
func (r *TermRepository) FindByID(ctx context.Context, id string) (*models.Term, error) {
	const query = `SELECT id, academic_year_id, code, name, start_date, teaching_weeks, created_at, updated_at FROM terms WHERE id = $1`
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find term: %w", err)
	}
	return &term, nil
}

// FindAcademicYear retrieves an academic year by id.
func (r *TermRepository) FindAcademicYear(ctx context.Context, id string) (*models.AcademicYear, error) {
	const query = `SELECT id, code, created_at FROM academic_years WHERE id = $1`
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find academic year: %w", err)
	}
	return &year, nil
}

// ListBreaks returns the break intervals of a term ordered by start date.
func (r *TermRepository) ListBreaks(ctx context.Context, termID string) ([]models.BreakInterval, error) {
	const query = `SELECT id, term_id, name, start_date, end_date FROM break_intervals WHERE term_id = $1 ORDER BY start_date ASC`
	var breaks []models.BreakInterval
	if err := r.db.SelectContext(ctx, &breaks, query, termID); err != nil {
		return nil, fmt.Errorf("list break intervals: %w", err)
	}
	return breaks, nil
}
