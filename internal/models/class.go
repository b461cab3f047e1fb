package models

import (
	"time"

	"github.com/lib/pq"
)

// Cohort is a student class group enrolled into course sections.
type Cohort struct {
	ID             string    `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	Size           int       `db:"size" json:"size"`
	MajorID        string    `db:"major_id" json:"major_id"`
	DepartmentCode string    `db:"department_code" json:"department_code"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Room is a bookable teaching space.
type Room struct {
	ID            string         `db:"id" json:"id"`
	Code          string         `db:"code" json:"code"`
	Name          string         `db:"name" json:"name"`
	RoomType      string         `db:"room_type" json:"room_type"`
	Capacity      int            `db:"capacity" json:"capacity"`
	Capabilities  pq.StringArray `db:"capabilities" json:"capabilities"`
	AllowedMajors pq.StringArray `db:"allowed_majors" json:"allowed_majors"`
}

// CourseSection is the unit of scheduling: one offering of a subject in a term.
type CourseSection struct {
	ID             string         `db:"id" json:"id"`
	TermID         string         `db:"term_id" json:"term_id"`
	SubjectID      string         `db:"subject_id" json:"subject_id"`
	Code           string         `db:"code" json:"code"`
	InstructorID   *string        `db:"instructor_id" json:"instructor_id,omitempty"`
	CohortIDs      pq.StringArray `db:"cohort_ids" json:"cohort_ids"`
	PlannedPeriods *float64       `db:"planned_periods" json:"planned_periods,omitempty"`
	StartWeek      *int           `db:"start_week" json:"start_week,omitempty"`
	WeekCount      *int           `db:"week_count" json:"week_count,omitempty"`
	Locked         bool           `db:"is_locked" json:"is_locked"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
