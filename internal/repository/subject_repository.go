package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// SubjectRepository reads subject catalog rows.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = `id, code, name, kind, required_room_type, specialization_group, total_periods, max_class_size, external_managed, created_at, updated_at`

// ListByTerm returns the subjects offered by at least one section of the term.
func (r *SubjectRepository) ListByTerm(ctx context.Context, termID string) ([]models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects
WHERE id IN (SELECT subject_id FROM course_sections WHERE term_id = $1) ORDER BY code ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, termID); err != nil {
		return nil, fmt.Errorf("list subjects by term: %w", err)
	}
	return subjects, nil
}

// FindByID retrieves a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, fmt.Errorf("find subject: %w", err)
	}
	return &subject, nil
}
