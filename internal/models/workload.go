package models

// Duty assigns a reduction type to an instructor for part of an academic year.
type Duty struct {
	ID              string  `db:"id" json:"id"`
	InstructorID    string  `db:"instructor_id" json:"instructor_id"`
	AcademicYearID  string  `db:"academic_year_id" json:"academic_year_id"`
	ReductionTypeID string  `db:"reduction_type_id" json:"reduction_type_id"`
	ReductionName   string  `db:"reduction_name" json:"reduction_name"`
	TeachingPercent float64 `db:"teaching_percent" json:"teaching_percent"`
	AdminPercent    float64 `db:"admin_percent" json:"admin_percent"`
	Months          int     `db:"months" json:"months"`
}

// ResearchProject is a research or outreach activity credited in hours.
type ResearchProject struct {
	ID             string  `db:"id" json:"id"`
	AcademicYearID string  `db:"academic_year_id" json:"academic_year_id"`
	Topic          string  `db:"topic" json:"topic"`
	Quantity       float64 `db:"quantity" json:"quantity"`
	HoursPerUnit   float64 `db:"hours_per_unit" json:"hours_per_unit"`
}

// Hours is the project's credited value: quantity × category rate.
func (p ResearchProject) Hours() float64 {
	return p.Quantity * p.HoursPerUnit
}

// ResearchMember is a co-author on a research project.
type ResearchMember struct {
	ID           string   `db:"id" json:"id"`
	ProjectID    string   `db:"project_id" json:"project_id"`
	InstructorID string   `db:"instructor_id" json:"instructor_id"`
	Order        int      `db:"member_order" json:"order"`
	ShareRatio   *float64 `db:"share_ratio" json:"share_ratio,omitempty"`
}

// InstructorTeachingLoad is one scheduled slot attributed to an instructor for workload purposes.
type InstructorTeachingLoad struct {
	InstructorID string `db:"instructor_id"`
	StartPeriod  int    `db:"start_period"`
	EndPeriod    int    `db:"end_period"`
	WeekCount    int    `db:"week_count"`
}

// CreditHours is an aggregated hour total per instructor (internships, development).
type CreditHours struct {
	InstructorID string  `db:"instructor_id"`
	Hours        float64 `db:"hours"`
}

// DutyReduction is the per-duty breakdown attached to a balance row.
type DutyReduction struct {
	DutyID          string  `json:"duty_id"`
	ReductionName   string  `json:"reduction_name"`
	Months          int     `json:"months"`
	TeachingPercent float64 `json:"teaching_percent"`
	AdminPercent    float64 `json:"admin_percent"`
	TeachingHours   float64 `json:"teaching_hours"`
	AdminHours      float64 `json:"admin_hours"`
}

// InstructorBalance is one row of the annual workload report.
type InstructorBalance struct {
	InstructorID          string          `json:"instructor_id" csv:"instructor_id"`
	InstructorCode        string          `json:"instructor_code" csv:"instructor_code"`
	InstructorName        string          `json:"instructor_name" csv:"instructor_name"`
	BaseTeachingQuota     float64         `json:"base_teaching_quota" csv:"base_teaching_quota"`
	BaseAdminQuota        float64         `json:"base_admin_quota" csv:"base_admin_quota"`
	TeachingReducedHours  float64         `json:"teaching_reduced_hours" csv:"teaching_reduced_hours"`
	AdminReducedHours     float64         `json:"admin_reduced_hours" csv:"admin_reduced_hours"`
	AdjustedTeachingQuota float64         `json:"adjusted_teaching_quota" csv:"adjusted_teaching_quota"`
	AdjustedAdminQuota    float64         `json:"adjusted_admin_quota" csv:"adjusted_admin_quota"`
	TeachingHours         float64         `json:"teaching_hours" csv:"teaching_hours"`
	ConversionHours       float64         `json:"conversion_hours" csv:"conversion_hours"`
	ResearchHours         float64         `json:"research_hours" csv:"research_hours"`
	InternshipHours       float64         `json:"internship_hours" csv:"internship_hours"`
	DevelopmentHours      float64         `json:"development_hours" csv:"development_hours"`
	AdminHoursTotal       float64         `json:"admin_hours_total" csv:"admin_hours_total"`
	TeachingOverload      float64         `json:"teaching_overload" csv:"teaching_overload"`
	AdminOverload         float64         `json:"admin_overload" csv:"admin_overload"`
	Duties                []DutyReduction `json:"duties" csv:"-"`
}
