package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/middleware"
	"github.com/noah-isme/college-timetable-api/internal/service"
	"github.com/noah-isme/college-timetable-api/pkg/response"
)

type workloadService interface {
	ComputeWorkload(ctx context.Context, yearID string) (*dto.WorkloadResponse, error)
	DistributeShares(ctx context.Context, projectID string) (*dto.DistributeSharesResponse, error)
}

// WorkloadHandler exposes instructor workload endpoints.
type WorkloadHandler struct {
	service workloadService
}

// NewWorkloadHandler constructs the handler.
func NewWorkloadHandler(svc *service.WorkloadService) *WorkloadHandler {
	return &WorkloadHandler{service: svc}
}

// Compute godoc
// @Summary Annual workload balance of every instructor
// @Tags Workload
// @Produce json
// @Param yearId path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workload/{yearId} [get]
func (h *WorkloadHandler) Compute(c *gin.Context) {
	result, err := h.service.ComputeWorkload(c.Request.Context(), c.Param("yearId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.Cached)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// DistributeShares godoc
// @Summary Write default share ratios for a research project's members
// @Tags Workload
// @Produce json
// @Param id path string true "Research project ID"
// @Success 200 {object} response.Envelope
// @Router /research-projects/{id}/distribute-shares [post]
func (h *WorkloadHandler) DistributeShares(c *gin.Context) {
	result, err := h.service.DistributeShares(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
