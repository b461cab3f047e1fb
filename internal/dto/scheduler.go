package dto

import "github.com/noah-isme/college-timetable-api/internal/models"

// ScheduleFixedRequest places a section in one slot shared by all its weeks.
type ScheduleFixedRequest struct {
	ResetExisting bool `json:"resetExisting"`
}

// ScheduleSemiAutoRequest places a section week by week inside a bounded window.
type ScheduleSemiAutoRequest struct {
	StartWeekIndex   int      `json:"startWeekIndex" validate:"required,min=1"`
	SessionsPerWeek  int      `json:"sessionsPerWeek" validate:"required,min=1,max=12"`
	WeekCount        *int     `json:"weekCount,omitempty" validate:"omitempty,min=1"`
	AllowedRoomCodes []string `json:"allowedRoomCodes,omitempty" validate:"omitempty,dive,required"`
	ResetExisting    bool     `json:"resetExisting"`
}

// SectionScheduleResponse lists the slots created for one section.
type SectionScheduleResponse struct {
	SectionID string                `json:"sectionId"`
	Mode      string                `json:"mode"`
	Slots     []models.TeachingSlot `json:"slots"`
	Removed   int                   `json:"removed"`
}

// TermScheduleRequest runs fixed placement over every section of a term.
// ResetExisting defaults to true when omitted.
type TermScheduleRequest struct {
	DepartmentCode string `json:"departmentCode" validate:"omitempty,max=32"`
	ResetExisting  *bool  `json:"resetExisting"`
}

// Reset resolves the optional flag.
func (r TermScheduleRequest) Reset() bool {
	return r.ResetExisting == nil || *r.ResetExisting
}

// TimetableQuery narrows GET /terms/:id/slots.
type TimetableQuery struct {
	CohortID     string `form:"cohortId"`
	RoomID       string `form:"roomId"`
	InstructorID string `form:"instructorId"`
}
