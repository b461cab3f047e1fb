package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JobType enumerates the background work the job worker knows how to run.
type JobType string

const (
	JobTypeBatchSchedule   JobType = "BATCH_SCHEDULE"
	JobTypeWorkloadExport  JobType = "WORKLOAD_EXPORT"
	JobTypeTimetableExport JobType = "TIMETABLE_EXPORT"
)

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatICS  ExportFormat = "ics"
)

// JobStatus captures background job lifecycle states.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "QUEUED"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusFinished   JobStatus = "FINISHED"
	JobStatusFailed     JobStatus = "FAILED"
)

// ScheduleJob is persisted metadata for an asynchronous batch or export.
type ScheduleJob struct {
	ID           string      `db:"id" json:"id"`
	Type         JobType     `db:"type" json:"type"`
	Params       JobParams   `db:"params" json:"params"`
	Status       JobStatus   `db:"status" json:"status"`
	Progress     int         `db:"progress" json:"progress"`
	Result       BatchResult `db:"result" json:"result"`
	ResultURL    *string     `db:"result_url" json:"result_url,omitempty"`
	CreatedBy    string      `db:"created_by" json:"created_by"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time  `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string     `db:"error_message" json:"error_message,omitempty"`
}

// JobParams stores request-scoped options persisted as JSONB.
type JobParams struct {
	TermID         string       `json:"termId,omitempty"`
	AcademicYearID string       `json:"academicYearId,omitempty"`
	DepartmentCode *string      `json:"departmentCode,omitempty"`
	ResetExisting  bool         `json:"resetExisting,omitempty"`
	Format         ExportFormat `json:"format,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p JobParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *JobParams) Scan(value interface{}) error {
	*p = JobParams{}
	return scanJSON(value, p, "JobParams")
}

// BatchResult summarises a whole-term scheduling run. Every section in scope
// lands in exactly one of the three lists.
type BatchResult struct {
	TermID    string           `json:"term_id,omitempty"`
	Scheduled []string         `json:"scheduled"`
	Failed    []SectionFailure `json:"failed"`
	Skipped   []SectionFailure `json:"skipped"`
}

// SectionFailure pairs a section with the reason it was not placed.
type SectionFailure struct {
	SectionID   string `json:"section_id"`
	SectionCode string `json:"section_code,omitempty"`
	Code        string `json:"code"`
	Reason      string `json:"reason"`
}

// Value marshals the result to JSON for persistence.
func (r BatchResult) Value() (driver.Value, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal job result: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the result struct.
func (r *BatchResult) Scan(value interface{}) error {
	*r = BatchResult{}
	return scanJSON(value, r, "BatchResult")
}

func scanJSON(value interface{}, dest interface{}, name string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, name)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
