package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// WorkloadRepository reads the per-year inputs of the workload balance and
// writes research share ratios.
type WorkloadRepository struct {
	db *sqlx.DB
}

// NewWorkloadRepository constructs the repository.
func NewWorkloadRepository(db *sqlx.DB) *WorkloadRepository {
	return &WorkloadRepository{db: db}
}

func (r *WorkloadRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListDuties returns the year's duties with their reduction percentages.
func (r *WorkloadRepository) ListDuties(ctx context.Context, yearID string) ([]models.Duty, error) {
	const query = `SELECT d.id, d.instructor_id, d.academic_year_id, d.reduction_type_id, rt.name AS reduction_name,
rt.teaching_percent, rt.admin_percent, d.months
FROM duties d JOIN reduction_types rt ON rt.id = d.reduction_type_id
WHERE d.academic_year_id = $1 ORDER BY d.instructor_id, d.id`
	var duties []models.Duty
	if err := r.db.SelectContext(ctx, &duties, query, yearID); err != nil {
		return nil, fmt.Errorf("list duties: %w", err)
	}
	return duties, nil
}

// ListTeachingLoads returns one row per scheduled slot of the year with its attached week count.
func (r *WorkloadRepository) ListTeachingLoads(ctx context.Context, yearID string) ([]models.InstructorTeachingLoad, error) {
	const query = `SELECT cs.instructor_id, ts.start_period, ts.end_period, COUNT(tw.week_id) AS week_count
FROM teaching_slots ts
JOIN course_sections cs ON cs.id = ts.section_id
JOIN terms t ON t.id = cs.term_id
LEFT JOIN teaching_slot_weeks tw ON tw.slot_id = ts.id
WHERE t.academic_year_id = $1 AND cs.instructor_id IS NOT NULL
GROUP BY ts.id, cs.instructor_id, ts.start_period, ts.end_period`
	var loads []models.InstructorTeachingLoad
	if err := r.db.SelectContext(ctx, &loads, query, yearID); err != nil {
		return nil, fmt.Errorf("list teaching loads: %w", err)
	}
	return loads, nil
}

// ListProjects returns the year's research projects with their category rate.
func (r *WorkloadRepository) ListProjects(ctx context.Context, yearID string) ([]models.ResearchProject, error) {
	const query = `SELECT p.id, p.academic_year_id, p.topic, p.quantity, c.hours_per_unit
FROM research_projects p JOIN research_categories c ON c.id = p.category_id
WHERE p.academic_year_id = $1 ORDER BY p.id`
	var projects []models.ResearchProject
	if err := r.db.SelectContext(ctx, &projects, query, yearID); err != nil {
		return nil, fmt.Errorf("list research projects: %w", err)
	}
	return projects, nil
}

// ListMembers returns every member of the year's projects.
func (r *WorkloadRepository) ListMembers(ctx context.Context, yearID string) ([]models.ResearchMember, error) {
	const query = `SELECT m.id, m.project_id, m.instructor_id, m.member_order, m.share_ratio
FROM research_members m JOIN research_projects p ON p.id = m.project_id
WHERE p.academic_year_id = $1 ORDER BY m.project_id, m.member_order, m.id`
	var members []models.ResearchMember
	if err := r.db.SelectContext(ctx, &members, query, yearID); err != nil {
		return nil, fmt.Errorf("list research members: %w", err)
	}
	return members, nil
}

// ListInternshipHours sums enterprise internship hours per instructor.
func (r *WorkloadRepository) ListInternshipHours(ctx context.Context, yearID string) ([]models.CreditHours, error) {
	return r.sumHours(ctx, "enterprise_internships", yearID)
}

// ListDevelopmentHours sums professional development hours per instructor.
func (r *WorkloadRepository) ListDevelopmentHours(ctx context.Context, yearID string) ([]models.CreditHours, error) {
	return r.sumHours(ctx, "professional_developments", yearID)
}

func (r *WorkloadRepository) sumHours(ctx context.Context, table, yearID string) ([]models.CreditHours, error) {
	query := fmt.Sprintf(`SELECT instructor_id, COALESCE(SUM(hours), 0) AS hours FROM %s
WHERE academic_year_id = $1 GROUP BY instructor_id`, table)
	var credits []models.CreditHours
	if err := r.db.SelectContext(ctx, &credits, query, yearID); err != nil {
		return nil, fmt.Errorf("sum %s hours: %w", table, err)
	}
	return credits, nil
}

// ListProjectMembers returns one project's members ordered by (order, id).
func (r *WorkloadRepository) ListProjectMembers(ctx context.Context, exec sqlx.ExtContext, projectID string) ([]models.ResearchMember, error) {
	const query = `SELECT id, project_id, instructor_id, member_order, share_ratio
FROM research_members WHERE project_id = $1 ORDER BY member_order ASC, id ASC`
	var members []models.ResearchMember
	if err := sqlx.SelectContext(ctx, r.exec(exec), &members, query, projectID); err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	return members, nil
}

// UpdateShareRatios stores each member's share ratio.
func (r *WorkloadRepository) UpdateShareRatios(ctx context.Context, exec sqlx.ExtContext, members []models.ResearchMember) error {
	const query = `UPDATE research_members SET share_ratio = $2 WHERE id = $1`
	target := r.exec(exec)
	for _, member := range members {
		if _, err := target.ExecContext(ctx, query, member.ID, member.ShareRatio); err != nil {
			return fmt.Errorf("update share ratio: %w", err)
		}
	}
	return nil
}
