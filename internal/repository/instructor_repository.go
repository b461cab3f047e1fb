package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// InstructorRepository reads instructors and their availability exceptions.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs an instructor repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// ListAll returns every instructor ordered by name.
func (r *InstructorRepository) ListAll(ctx context.Context) ([]models.Instructor, error) {
	const query = `SELECT id, code, name, department_code, teaching_quota, admin_quota, conversion_ratio, created_at, updated_at
FROM instructors ORDER BY name ASC, id ASC`
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// ListAvailability returns the availability exceptions of the given instructors.
func (r *InstructorRepository) ListAvailability(ctx context.Context, instructorIDs []string) ([]models.AvailabilityWindow, error) {
	if len(instructorIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT id, instructor_id, day_of_week, start_period, end_period, is_available
FROM instructor_availability WHERE instructor_id = ANY($1) ORDER BY instructor_id, day_of_week, start_period`
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, pq.Array(instructorIDs)); err != nil {
		return nil, fmt.Errorf("list instructor availability: %w", err)
	}
	return windows, nil
}
