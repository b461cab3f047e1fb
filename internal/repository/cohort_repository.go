package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// CohortRepository reads student cohorts.
type CohortRepository struct {
	db *sqlx.DB
}

// NewCohortRepository constructs a cohort repository.
func NewCohortRepository(db *sqlx.DB) *CohortRepository {
	return &CohortRepository{db: db}
}

// ListByIDs returns the cohorts with the given ids.
func (r *CohortRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Cohort, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, code, name, size, major_id, department_code, created_at FROM cohorts WHERE id = ANY($1) ORDER BY code ASC`
	var cohorts []models.Cohort
	if err := r.db.SelectContext(ctx, &cohorts, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list cohorts: %w", err)
	}
	return cohorts, nil
}

// ListByTerm returns every cohort attached to a section of the term.
func (r *CohortRepository) ListByTerm(ctx context.Context, termID string) ([]models.Cohort, error) {
	const query = `SELECT id, code, name, size, major_id, department_code, created_at FROM cohorts
WHERE id IN (SELECT unnest(cohort_ids) FROM course_sections WHERE term_id = $1) ORDER BY code ASC`
	var cohorts []models.Cohort
	if err := r.db.SelectContext(ctx, &cohorts, query, termID); err != nil {
		return nil, fmt.Errorf("list cohorts by term: %w", err)
	}
	return cohorts, nil
}
