package models

import "time"

// Instructor carries the annual quotas used for workload balancing.
type Instructor struct {
	ID              string    `db:"id" json:"id"`
	Code            string    `db:"code" json:"code"`
	Name            string    `db:"name" json:"name"`
	DepartmentCode  string    `db:"department_code" json:"department_code"`
	TeachingQuota   *float64  `db:"teaching_quota" json:"teaching_quota,omitempty"`
	AdminQuota      *float64  `db:"admin_quota" json:"admin_quota,omitempty"`
	ConversionRatio *float64  `db:"conversion_ratio" json:"conversion_ratio,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// AvailabilityWindow is an exception to an instructor's default availability.
// No window for a day/period means the instructor is available.
type AvailabilityWindow struct {
	ID           string `db:"id" json:"id"`
	InstructorID string `db:"instructor_id" json:"instructor_id"`
	DayOfWeek    int    `db:"day_of_week" json:"day_of_week"`
	StartPeriod  int    `db:"start_period" json:"start_period"`
	EndPeriod    int    `db:"end_period" json:"end_period"`
	Available    bool   `db:"is_available" json:"is_available"`
}
