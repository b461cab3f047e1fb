package dto

import "github.com/noah-isme/college-timetable-api/internal/models"

// GenerateWeeksResponse reports the result of POST /terms/:id/weeks/generate.
type GenerateWeeksResponse struct {
	TermID  string                `json:"termId"`
	Created int                   `json:"created"`
	Updated int                   `json:"updated"`
	Weeks   []models.AcademicWeek `json:"weeks"`
}
