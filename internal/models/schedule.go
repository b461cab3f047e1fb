package models

import (
	"time"

	"github.com/lib/pq"
)

// TeachingSlot is one weekly meeting pattern of a course section, active in the listed weeks.
type TeachingSlot struct {
	ID          string         `db:"id" json:"id"`
	SectionID   string         `db:"section_id" json:"section_id"`
	RoomID      *string        `db:"room_id" json:"room_id,omitempty"`
	DayOfWeek   int            `db:"day_of_week" json:"day_of_week"`
	StartPeriod int            `db:"start_period" json:"start_period"`
	EndPeriod   int            `db:"end_period" json:"end_period"`
	WeekIDs     pq.StringArray `db:"week_ids" json:"week_ids"`
	Locked      bool           `db:"is_locked" json:"is_locked"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Periods returns the session length in periods.
func (s TeachingSlot) Periods() int {
	return s.EndPeriod - s.StartPeriod + 1
}

// SlotFilter narrows timetable listings for a term.
type SlotFilter struct {
	TermID       string
	CohortID     string
	RoomID       string
	InstructorID string
}

// TimetableEntry is a denormalised slot row used by timetable views and exports.
type TimetableEntry struct {
	SlotID         string         `db:"slot_id" json:"slot_id"`
	SectionID      string         `db:"section_id" json:"section_id"`
	SectionCode    string         `db:"section_code" json:"section_code"`
	SubjectCode    string         `db:"subject_code" json:"subject_code"`
	SubjectName    string         `db:"subject_name" json:"subject_name"`
	InstructorName *string        `db:"instructor_name" json:"instructor_name,omitempty"`
	RoomCode       *string        `db:"room_code" json:"room_code,omitempty"`
	CohortCodes    pq.StringArray `db:"cohort_codes" json:"cohort_codes"`
	DayOfWeek      int            `db:"day_of_week" json:"day_of_week"`
	StartPeriod    int            `db:"start_period" json:"start_period"`
	EndPeriod      int            `db:"end_period" json:"end_period"`
	WeekIndexes    pq.Int64Array  `db:"week_indexes" json:"week_indexes"`
}
