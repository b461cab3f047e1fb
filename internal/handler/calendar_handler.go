package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/service"
	"github.com/noah-isme/college-timetable-api/pkg/response"
)

type calendarService interface {
	GenerateWeeks(ctx context.Context, termID string) (*dto.GenerateWeeksResponse, error)
	ListWeeks(ctx context.Context, termID string) ([]models.AcademicWeek, error)
}

// CalendarHandler exposes academic week endpoints.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// GenerateWeeks godoc
// @Summary Generate academic weeks for a term
// @Description Upserts weeks 1..N from the term start date, skipping break intervals. Safe to re-run.
// @Tags Calendar
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /terms/{id}/weeks/generate [post]
func (h *CalendarHandler) GenerateWeeks(c *gin.Context) {
	result, err := h.service.GenerateWeeks(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListWeeks godoc
// @Summary List academic weeks of a term
// @Tags Calendar
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/weeks [get]
func (h *CalendarHandler) ListWeeks(c *gin.Context) {
	weeks, err := h.service.ListWeeks(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weeks, nil)
}
