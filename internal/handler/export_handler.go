package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/service"
	"github.com/noah-isme/college-timetable-api/pkg/response"
)

type exportService interface {
	TimetableFile(ctx context.Context, termID string, format models.ExportFormat) (*service.ExportFile, error)
	WorkloadFile(ctx context.Context, yearID string, format models.ExportFormat) (*service.ExportFile, error)
	SectionCalendar(ctx context.Context, sectionID string) (*service.ExportFile, error)
}

// ExportHandler streams timetable, workload and calendar documents.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Timetable godoc
// @Summary Download a term timetable
// @Tags Exports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Term ID"
// @Param format query string false "csv or xlsx" default(xlsx)
// @Success 200 {file} binary
// @Router /terms/{id}/timetable/export [get]
func (h *ExportHandler) Timetable(c *gin.Context) {
	file, err := h.service.TimetableFile(c.Request.Context(), c.Param("id"), exportFormat(c, models.ExportFormatXLSX))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Workload godoc
// @Summary Download the workload balance sheet
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param yearId path string true "Academic year ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /workload/{yearId}/export [get]
func (h *ExportHandler) Workload(c *gin.Context) {
	file, err := h.service.WorkloadFile(c.Request.Context(), c.Param("yearId"), exportFormat(c, models.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// SectionCalendar godoc
// @Summary iCalendar feed of a section's dated sessions
// @Tags Exports
// @Produce text/calendar
// @Param id path string true "Section ID"
// @Success 200 {file} binary
// @Router /sections/{id}/calendar.ics [get]
func (h *ExportHandler) SectionCalendar(c *gin.Context) {
	file, err := h.service.SectionCalendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType+"; charset=utf-8", file.Data)
}

func exportFormat(c *gin.Context, fallback models.ExportFormat) models.ExportFormat {
	raw := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if raw == "" {
		return fallback
	}
	return models.ExportFormat(raw)
}
