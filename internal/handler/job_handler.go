package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/service"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
	"github.com/noah-isme/college-timetable-api/pkg/response"
)

type jobService interface {
	CreateJob(ctx context.Context, req dto.CreateJobRequest, actorID string) (*dto.JobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.JobResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.JobDownload, error)
}

// JobHandler exposes background job endpoints.
type JobHandler struct {
	service jobService
}

// NewJobHandler constructs the handler.
func NewJobHandler(svc *service.JobService) *JobHandler {
	return &JobHandler{service: svc}
}

// Create godoc
// @Summary Queue a batch scheduling or export job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param payload body dto.CreateJobRequest true "Job"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	claims, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid job payload"))
		return
	}
	job, err := h.service.CreateJob(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Job progress and result
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) Status(c *gin.Context) {
	job, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export through its signed link
// @Tags Jobs
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *JobHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	var size int64 = -1
	if info, statErr := download.File.Stat(); statErr == nil {
		size = info.Size()
	}
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, download.ContentType, io.Reader(download.File), map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
	})
}
