package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// SectionRepository reads course sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `s.id, s.term_id, s.subject_id, s.code, s.instructor_id, s.cohort_ids, s.planned_periods, s.start_week, s.week_count, s.is_locked, s.created_at, s.updated_at`

// FindByID retrieves a section. A missing row is returned as sql.ErrNoRows.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.CourseSection, error) {
	query := `SELECT ` + sectionColumns + ` FROM course_sections s WHERE s.id = $1`
	var section models.CourseSection
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course section: %w", err)
	}
	return &section, nil
}

// ListByTerm returns the term's sections ordered by code. When departmentCode is
// non-empty only sections with at least one cohort of that department are returned.
func (r *SectionRepository) ListByTerm(ctx context.Context, termID, departmentCode string) ([]models.CourseSection, error) {
	query := `SELECT ` + sectionColumns + ` FROM course_sections s
WHERE s.term_id = $1
  AND ($2 = '' OR EXISTS (SELECT 1 FROM cohorts c WHERE c.id = ANY(s.cohort_ids) AND c.department_code = $2))
ORDER BY s.code ASC, s.id ASC`
	var sections []models.CourseSection
	if err := r.db.SelectContext(ctx, &sections, query, termID, departmentCode); err != nil {
		return nil, fmt.Errorf("list course sections: %w", err)
	}
	return sections, nil
}
