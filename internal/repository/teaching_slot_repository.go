package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// TeachingSlotRepository persists teaching slots and their week bindings.
type TeachingSlotRepository struct {
	db *sqlx.DB
}

// NewTeachingSlotRepository builds the repository.
func NewTeachingSlotRepository(db *sqlx.DB) *TeachingSlotRepository {
	return &TeachingSlotRepository{db: db}
}

func (r *TeachingSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const slotSelect = `SELECT ts.id, ts.section_id, ts.room_id, ts.day_of_week, ts.start_period, ts.end_period, ts.is_locked, ts.created_at,
COALESCE(array_agg(tw.week_id ORDER BY tw.week_id) FILTER (WHERE tw.week_id IS NOT NULL), '{}') AS week_ids
FROM teaching_slots ts
JOIN course_sections cs ON cs.id = ts.section_id
LEFT JOIN teaching_slot_weeks tw ON tw.slot_id = ts.id`

// ListByTerm returns every slot of the term with its week ids.
func (r *TeachingSlotRepository) ListByTerm(ctx context.Context, exec sqlx.ExtContext, termID string) ([]models.TeachingSlot, error) {
	query := slotSelect + `
WHERE cs.term_id = $1
GROUP BY ts.id
ORDER BY ts.created_at ASC, ts.id ASC`
	var slots []models.TeachingSlot
	if err := sqlx.SelectContext(ctx, r.exec(exec), &slots, query, termID); err != nil {
		return nil, fmt.Errorf("list teaching slots by term: %w", err)
	}
	return slots, nil
}

// ListBySection returns a section's slots ordered by day and period.
func (r *TeachingSlotRepository) ListBySection(ctx context.Context, sectionID string) ([]models.TeachingSlot, error) {
	query := slotSelect + `
WHERE ts.section_id = $1
GROUP BY ts.id
ORDER BY ts.day_of_week ASC, ts.start_period ASC, ts.id ASC`
	var slots []models.TeachingSlot
	if err := r.db.SelectContext(ctx, &slots, query, sectionID); err != nil {
		return nil, fmt.Errorf("list teaching slots by section: %w", err)
	}
	return slots, nil
}

// CreateBatch inserts slots and binds each to its weeks.
func (r *TeachingSlotRepository) CreateBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TeachingSlot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const insertSlot = `INSERT INTO teaching_slots (id, section_id, room_id, day_of_week, start_period, end_period, is_locked, created_at)
VALUES (:id, :section_id, :room_id, :day_of_week, :start_period, :end_period, :is_locked, :created_at)`
	const insertWeeks = `INSERT INTO teaching_slot_weeks (slot_id, week_id) SELECT $1, unnest($2::uuid[])`

	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, insertSlot, slot); err != nil {
			return fmt.Errorf("create teaching slot: %w", err)
		}
		if len(slot.WeekIDs) == 0 {
			continue
		}
		if _, err := target.ExecContext(ctx, insertWeeks, slot.ID, pq.Array([]string(slot.WeekIDs))); err != nil {
			return fmt.Errorf("bind teaching slot weeks: %w", err)
		}
	}
	return nil
}

// DeleteUnlockedBySection removes a section's unlocked slots and returns their ids.
// Week bindings go with them through the foreign key cascade.
func (r *TeachingSlotRepository) DeleteUnlockedBySection(ctx context.Context, exec sqlx.ExtContext, sectionID string) ([]string, error) {
	const query = `DELETE FROM teaching_slots WHERE section_id = $1 AND is_locked = FALSE RETURNING id`
	var ids []string
	if err := sqlx.SelectContext(ctx, r.exec(exec), &ids, query, sectionID); err != nil {
		return nil, fmt.Errorf("delete teaching slots: %w", err)
	}
	return ids, nil
}

// ListTimetable returns denormalised timetable rows for a term, narrowed by the filter.
func (r *TeachingSlotRepository) ListTimetable(ctx context.Context, filter models.SlotFilter) ([]models.TimetableEntry, error) {
	conditions := []string{"cs.term_id = $1"}
	args := []interface{}{filter.TermID}

	if filter.CohortID != "" {
		args = append(args, filter.CohortID)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(cs.cohort_ids)", len(args)))
	}
	if filter.RoomID != "" {
		args = append(args, filter.RoomID)
		conditions = append(conditions, fmt.Sprintf("ts.room_id = $%d", len(args)))
	}
	if filter.InstructorID != "" {
		args = append(args, filter.InstructorID)
		conditions = append(conditions, fmt.Sprintf("cs.instructor_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT ts.id AS slot_id, cs.id AS section_id, cs.code AS section_code,
sub.code AS subject_code, sub.name AS subject_name, i.name AS instructor_name, rm.code AS room_code,
COALESCE((SELECT array_agg(c.code ORDER BY c.code) FROM cohorts c WHERE c.id = ANY(cs.cohort_ids)), '{}') AS cohort_codes,
ts.day_of_week, ts.start_period, ts.end_period,
COALESCE((SELECT array_agg(w.week_index ORDER BY w.week_index) FROM teaching_slot_weeks tw
  JOIN academic_weeks w ON w.id = tw.week_id WHERE tw.slot_id = ts.id), '{}') AS week_indexes
FROM teaching_slots ts
JOIN course_sections cs ON cs.id = ts.section_id
JOIN subjects sub ON sub.id = cs.subject_id
LEFT JOIN instructors i ON i.id = cs.instructor_id
LEFT JOIN rooms rm ON rm.id = ts.room_id
WHERE %s
ORDER BY ts.day_of_week ASC, ts.start_period ASC, cs.code ASC`, strings.Join(conditions, " AND "))

	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable: %w", err)
	}
	return entries, nil
}
