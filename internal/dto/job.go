package dto

import "github.com/noah-isme/college-timetable-api/internal/models"

// CreateJobRequest captures POST /jobs payload.
type CreateJobRequest struct {
	Type           models.JobType      `json:"type" validate:"required,oneof=BATCH_SCHEDULE WORKLOAD_EXPORT TIMETABLE_EXPORT"`
	TermID         string              `json:"termId"`
	AcademicYearID string              `json:"academicYearId"`
	DepartmentCode *string             `json:"departmentCode,omitempty"`
	ResetExisting  *bool               `json:"resetExisting,omitempty"`
	Format         models.ExportFormat `json:"format" validate:"omitempty,oneof=csv pdf xlsx"`
}

// JobResponse exposes job progress metadata.
type JobResponse struct {
	ID        string              `json:"id"`
	Type      models.JobType      `json:"type"`
	Status    models.JobStatus    `json:"status"`
	Progress  int                 `json:"progress"`
	Result    *models.BatchResult `json:"result,omitempty"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
