package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/service"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
	"github.com/noah-isme/college-timetable-api/pkg/response"
)

type timetableService interface {
	ScheduleSectionFixed(ctx context.Context, sectionID string, req dto.ScheduleFixedRequest) (*dto.SectionScheduleResponse, error)
	ScheduleSectionSemiAuto(ctx context.Context, sectionID string, req dto.ScheduleSemiAutoRequest) (*dto.SectionScheduleResponse, error)
	ScheduleWholeTermFixed(ctx context.Context, termID string, req dto.TermScheduleRequest) (*models.BatchResult, error)
	ListSlots(ctx context.Context, termID string, query dto.TimetableQuery) ([]models.TimetableEntry, error)
}

type batchEnqueuer interface {
	EnqueueTermBatch(ctx context.Context, termID string, req dto.TermScheduleRequest, actorID string) (*dto.JobResponse, error)
}

// TimetableHandler exposes placement endpoints.
type TimetableHandler struct {
	service timetableService
	jobs    batchEnqueuer
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService, jobs *service.JobService) *TimetableHandler {
	return &TimetableHandler{service: svc, jobs: jobs}
}

// ScheduleFixed godoc
// @Summary Place a section in one slot for all its weeks
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body dto.ScheduleFixedRequest false "Options"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sections/{id}/schedule/fixed [post]
func (h *TimetableHandler) ScheduleFixed(c *gin.Context) {
	var req dto.ScheduleFixedRequest
	if !bindOptionalJSON(c, &req, "invalid fixed scheduling payload") {
		return
	}
	result, err := h.service.ScheduleSectionFixed(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ScheduleSemiAuto godoc
// @Summary Place a section week by week inside a window
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body dto.ScheduleSemiAutoRequest true "Window"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sections/{id}/schedule/semi-auto [post]
func (h *TimetableHandler) ScheduleSemiAuto(c *gin.Context) {
	var req dto.ScheduleSemiAutoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid semi-automatic scheduling payload"))
		return
	}
	result, err := h.service.ScheduleSectionSemiAuto(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ScheduleTerm godoc
// @Summary Run fixed placement over a whole term
// @Description Returns scheduled, failed and skipped sections. Sections already committed stay when the batch deadline passes.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body dto.TermScheduleRequest false "Scope"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/schedule/fixed [post]
func (h *TimetableHandler) ScheduleTerm(c *gin.Context) {
	var req dto.TermScheduleRequest
	if !bindOptionalJSON(c, &req, "invalid term scheduling payload") {
		return
	}
	result, err := h.service.ScheduleWholeTermFixed(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// EnqueueTerm godoc
// @Summary Queue whole-term placement as a background job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body dto.TermScheduleRequest false "Scope"
// @Success 202 {object} response.Envelope
// @Router /terms/{id}/schedule/jobs [post]
func (h *TimetableHandler) EnqueueTerm(c *gin.Context) {
	claims, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.TermScheduleRequest
	if !bindOptionalJSON(c, &req, "invalid term scheduling payload") {
		return
	}
	job, err := h.jobs.EnqueueTermBatch(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ListSlots godoc
// @Summary Timetable of a term
// @Tags Scheduler
// @Produce json
// @Param id path string true "Term ID"
// @Param cohortId query string false "Cohort ID"
// @Param roomId query string false "Room ID"
// @Param instructorId query string false "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/slots [get]
func (h *TimetableHandler) ListSlots(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable filter"))
		return
	}
	entries, err := h.service.ListSlots(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"count": len(entries)})
}

// bindOptionalJSON accepts an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, dest interface{}, message string) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}
