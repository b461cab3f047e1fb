package dto

import "github.com/noah-isme/college-timetable-api/internal/models"

// WorkloadResponse is the annual balance sheet of every instructor.
type WorkloadResponse struct {
	AcademicYearID string                     `json:"academicYearId"`
	Months         int                        `json:"months"`
	Rows           []models.InstructorBalance `json:"rows"`
	Cached         bool                       `json:"-"`
}

// DistributeSharesResponse returns the members with their stored share ratios.
type DistributeSharesResponse struct {
	ProjectID string                  `json:"projectId"`
	Members   []models.ResearchMember `json:"members"`
}
