package models

import "time"

// DefaultTeachingWeeks is used when a term does not configure its teaching-week count.
const DefaultTeachingWeeks = 15

// AcademicYear groups the terms whose workload is balanced together.
type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Term models an academic semester scoping weeks, sections and slots.
type Term struct {
	ID             string     `db:"id" json:"id"`
	AcademicYearID string     `db:"academic_year_id" json:"academic_year_id"`
	Code           string     `db:"code" json:"code"`
	Name           string     `db:"name" json:"name"`
	StartDate      *time.Time `db:"start_date" json:"start_date,omitempty"`
	TeachingWeeks  *int       `db:"teaching_weeks" json:"teaching_weeks,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// WeekCount returns the configured teaching-week target or the default.
func (t Term) WeekCount() int {
	if t.TeachingWeeks == nil || *t.TeachingWeeks <= 0 {
		return DefaultTeachingWeeks
	}
	return *t.TeachingWeeks
}

// BreakInterval is an inclusive date range during which no teaching week starts.
type BreakInterval struct {
	ID        string    `db:"id" json:"id"`
	TermID    string    `db:"term_id" json:"term_id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

// Contains reports whether the civil date falls inside the interval.
func (b BreakInterval) Contains(day time.Time) bool {
	return !day.Before(b.StartDate) && !day.After(b.EndDate)
}

// AcademicWeek is a dated teaching week inside a term. Index is 1-based and
// contiguous among non-break weeks.
type AcademicWeek struct {
	ID        string    `db:"id" json:"id"`
	TermID    string    `db:"term_id" json:"term_id"`
	Index     int       `db:"week_index" json:"index"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsBreak   bool      `db:"is_break" json:"is_break"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
