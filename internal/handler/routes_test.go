package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/middleware"
	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/scheduler"
	"github.com/noah-isme/college-timetable-api/internal/service"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

// --- Service stubs ---

type authStub struct{}

func (authStub) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "secret" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResponse{AccessToken: "token", User: models.UserInfo{Email: req.Email}}, nil
}

func (authStub) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	return &models.UserInfo{ID: userID, Email: "planner@example.edu", Role: models.RoleScheduler}, nil
}

type calendarStub struct{}

func (calendarStub) GenerateWeeks(ctx context.Context, termID string) (*dto.GenerateWeeksResponse, error) {
	return &dto.GenerateWeeksResponse{TermID: termID, Created: 15}, nil
}

func (calendarStub) ListWeeks(ctx context.Context, termID string) ([]models.AcademicWeek, error) {
	return []models.AcademicWeek{{ID: "w1", TermID: termID, Index: 1}}, nil
}

type timetableStub struct {
	termReq dto.TermScheduleRequest
	query   dto.TimetableQuery
	fail    bool
}

func (s *timetableStub) ScheduleSectionFixed(ctx context.Context, sectionID string, req dto.ScheduleFixedRequest) (*dto.SectionScheduleResponse, error) {
	if s.fail {
		failure := scheduler.Fail(scheduler.FailureNoFeasibleSlot, "no common day/period/room works for all weeks")
		return nil, appErrors.Wrap(failure, appErrors.ErrSchedulingFailed.Code, appErrors.ErrSchedulingFailed.Status, failure.Reason)
	}
	room := "room-1"
	return &dto.SectionScheduleResponse{SectionID: sectionID, Mode: "fixed", Slots: []models.TeachingSlot{
		{ID: "slot-1", SectionID: sectionID, RoomID: &room, DayOfWeek: 1, StartPeriod: 1, EndPeriod: 5, WeekIDs: []string{"w1"}},
	}}, nil
}

func (s *timetableStub) ScheduleSectionSemiAuto(ctx context.Context, sectionID string, req dto.ScheduleSemiAutoRequest) (*dto.SectionScheduleResponse, error) {
	return &dto.SectionScheduleResponse{SectionID: sectionID, Mode: "semi_auto"}, nil
}

func (s *timetableStub) ScheduleWholeTermFixed(ctx context.Context, termID string, req dto.TermScheduleRequest) (*models.BatchResult, error) {
	s.termReq = req
	return &models.BatchResult{TermID: termID, Scheduled: []string{"sec-1"}}, nil
}

func (s *timetableStub) ListSlots(ctx context.Context, termID string, query dto.TimetableQuery) ([]models.TimetableEntry, error) {
	s.query = query
	return []models.TimetableEntry{{SlotID: "slot-1"}}, nil
}

type workloadStub struct{}

func (workloadStub) ComputeWorkload(ctx context.Context, yearID string) (*dto.WorkloadResponse, error) {
	return &dto.WorkloadResponse{AcademicYearID: yearID, Months: 10, Cached: true}, nil
}

func (workloadStub) DistributeShares(ctx context.Context, projectID string) (*dto.DistributeSharesResponse, error) {
	return &dto.DistributeSharesResponse{ProjectID: projectID}, nil
}

type exportStub struct{}

func (exportStub) TimetableFile(ctx context.Context, termID string, format models.ExportFormat) (*service.ExportFile, error) {
	if format != models.ExportFormatCSV && format != models.ExportFormatXLSX {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported timetable export format")
	}
	return &service.ExportFile{Filename: "timetable_" + termID + "." + string(format), ContentType: "text/csv", Data: []byte("week,day\n")}, nil
}

func (exportStub) WorkloadFile(ctx context.Context, yearID string, format models.ExportFormat) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "workload_" + yearID + "." + string(format), ContentType: "application/pdf", Data: []byte("%PDF")}, nil
}

func (exportStub) SectionCalendar(ctx context.Context, sectionID string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "section.ics", ContentType: "text/calendar", Data: []byte("BEGIN:VCALENDAR")}, nil
}

type jobStub struct {
	actor    string
	download string
}

func (s *jobStub) CreateJob(ctx context.Context, req dto.CreateJobRequest, actorID string) (*dto.JobResponse, error) {
	s.actor = actorID
	return &dto.JobResponse{ID: "job-1", Type: req.Type, Status: models.JobStatusQueued}, nil
}

func (s *jobStub) EnqueueTermBatch(ctx context.Context, termID string, req dto.TermScheduleRequest, actorID string) (*dto.JobResponse, error) {
	s.actor = actorID
	return &dto.JobResponse{ID: "job-2", Type: models.JobTypeBatchSchedule, Status: models.JobStatusQueued}, nil
}

func (s *jobStub) GetStatus(ctx context.Context, id string) (*dto.JobResponse, error) {
	if id != "job-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
	}
	return &dto.JobResponse{ID: id, Status: models.JobStatusFinished, Progress: 100}, nil
}

func (s *jobStub) ResolveDownload(ctx context.Context, token string) (*service.JobDownload, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download link")
	}
	file, err := os.Open(s.download)
	if err != nil {
		return nil, err
	}
	return &service.JobDownload{File: file, Filename: "workload_year-1.csv", ContentType: "text/csv"}, nil
}

type pingStub struct{ err error }

func (p pingStub) PingContext(ctx context.Context) error { return p.err }

// --- Router ---

type testRouter struct {
	engine    *gin.Engine
	timetable *timetableStub
	jobs      *jobStub
}

func buildTestRouter(t *testing.T) *testRouter {
	t.Helper()
	gin.SetMode(gin.TestMode)

	download := filepath.Join(t.TempDir(), "workload.csv")
	require.NoError(t, os.WriteFile(download, []byte("code\nGV01\n"), 0o600))

	timetable := &timetableStub{}
	jobs := &jobStub{download: download}
	handlers := Handlers{
		Auth:      &AuthHandler{service: authStub{}},
		Calendar:  &CalendarHandler{service: calendarStub{}},
		Timetable: &TimetableHandler{service: timetable, jobs: jobs},
		Workload:  &WorkloadHandler{service: workloadStub{}},
		Export:    &ExportHandler{service: exportStub{}},
		Job:       &JobHandler{service: jobs},
		Metrics:   NewMetricsHandler(service.NewMetricsService(), pingStub{}),
	}

	authenticate := func(c *gin.Context) {
		role := c.GetHeader("X-Test-Role")
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.UserRole(role)})
		c.Next()
	}

	router := gin.New()
	RegisterRoutes(router, "/api/v1", handlers, authenticate)
	return &testRouter{engine: router, timetable: timetable, jobs: jobs}
}

func (r *testRouter) do(method, path, role, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	w := httptest.NewRecorder()
	r.engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

// --- Tests ---

func TestRoutesEnforceRoles(t *testing.T) {
	r := buildTestRouter(t)

	resp := r.do(http.MethodGet, "/api/v1/terms/term-1/weeks", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = r.do(http.MethodGet, "/api/v1/terms/term-1/weeks", string(models.RoleViewer), "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = r.do(http.MethodPost, "/api/v1/terms/term-1/weeks/generate", string(models.RoleViewer), "")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = r.do(http.MethodPost, "/api/v1/terms/term-1/weeks/generate", string(models.RoleScheduler), "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"created":15`)

	resp = r.do(http.MethodGet, "/api/v1/terms/term-1/weeks", "STUDENT", "")
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestScheduleFixedRoute(t *testing.T) {
	r := buildTestRouter(t)

	resp := r.do(http.MethodPost, "/api/v1/sections/sec-1/schedule/fixed", string(models.RoleAdmin), "")
	require.Equal(t, http.StatusCreated, resp.Code)
	data := decodeEnvelope(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "fixed", data["mode"])
	assert.Len(t, data["slots"], 1)

	r.timetable.fail = true
	resp = r.do(http.MethodPost, "/api/v1/sections/sec-1/schedule/fixed", string(models.RoleAdmin), `{"resetExisting":true}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	errBody := decodeEnvelope(t, resp)["error"].(map[string]interface{})
	assert.Equal(t, "SCHEDULING_FAILED", errBody["code"])
	assert.Equal(t, "no common day/period/room works for all weeks", errBody["message"])

	resp = r.do(http.MethodPost, "/api/v1/sections/sec-1/schedule/fixed", string(models.RoleAdmin), `{"resetExisting":`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestScheduleSemiAutoRequiresBody(t *testing.T) {
	r := buildTestRouter(t)

	resp := r.do(http.MethodPost, "/api/v1/sections/sec-1/schedule/semi-auto", string(models.RoleScheduler), `{"startWeekIndex":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = r.do(http.MethodPost, "/api/v1/sections/sec-1/schedule/semi-auto", string(models.RoleScheduler), `{"startWeekIndex":2,"sessionsPerWeek":1}`)
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"semi_auto"`)
}

func TestScheduleTermDefaultsToReset(t *testing.T) {
	r := buildTestRouter(t)

	resp := r.do(http.MethodPost, "/api/v1/terms/term-1/schedule/fixed", string(models.RoleScheduler), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, r.timetable.termReq.Reset())

	resp = r.do(http.MethodPost, "/api/v1/terms/term-1/schedule/fixed", string(models.RoleScheduler), `{"departmentCode":"IT","resetExisting":false}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, r.timetable.termReq.Reset())
	assert.Equal(t, "IT", r.timetable.termReq.DepartmentCode)
}

func TestListSlotsBindsFilters(t *testing.T) {
	r := buildTestRouter(t)

	resp := r.do(http.MethodGet, "/api/v1/terms/term-1/slots?cohortId=coh-1&instructorId=ins-1", string(models.RoleViewer), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, dto.TimetableQuery{CohortID: "coh-1", InstructorID: "ins-1"}, r.timetable.query)
	meta := decodeEnvelope(t, resp)["meta"].(map[string]interface{})
	assert.EqualValues(t, 1, meta["count"])
}

func TestWorkloadRouteReportsCacheHit(t *testing.T) {
	r := buildTestRouter(t)

	resp := r.do(http.MethodGet, "/api/v1/workload/year-1", string(models.RoleViewer), "")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope(t, resp)
	meta := envelope["meta"].(map[string]interface{})
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")

	resp = r.do(http.MethodPost, "/api/v1/research-projects/p1/distribute-shares", string(models.RoleAdmin), "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestExportRoutesStreamFiles(t *testing.T) {
	r := buildTestRouter(t)

	resp := r.do(http.MethodGet, "/api/v1/terms/term-1/timetable/export?format=CSV", string(models.RoleViewer), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, `attachment; filename="timetable_term-1.csv"`, resp.Header().Get("Content-Disposition"))
	assert.Equal(t, "week,day\n", resp.Body.String())

	resp = r.do(http.MethodGet, "/api/v1/terms/term-1/timetable/export?format=pdf", string(models.RoleViewer), "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = r.do(http.MethodGet, "/api/v1/workload/year-1/export?format=pdf", string(models.RoleViewer), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))

	resp = r.do(http.MethodGet, "/api/v1/sections/sec-1/calendar.ics", string(models.RoleViewer), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", resp.Header().Get("Content-Type"))
}

func TestJobRoutes(t *testing.T) {
	r := buildTestRouter(t)

	resp := r.do(http.MethodPost, "/api/v1/jobs", string(models.RoleScheduler), `{"type":"WORKLOAD_EXPORT","academicYearId":"year-1"}`)
	require.Equal(t, http.StatusAccepted, resp.Code)
	assert.Equal(t, "user-1", r.jobs.actor)

	resp = r.do(http.MethodPost, "/api/v1/terms/term-1/schedule/jobs", string(models.RoleScheduler), "")
	require.Equal(t, http.StatusAccepted, resp.Code)
	assert.Contains(t, resp.Body.String(), `"job-2"`)

	resp = r.do(http.MethodGet, "/api/v1/schedule/jobs/job-1", string(models.RoleViewer), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"FINISHED"`)

	resp = r.do(http.MethodGet, "/api/v1/jobs/job-x", string(models.RoleViewer), "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = r.do(http.MethodGet, "/api/v1/exports/good", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "code\nGV01\n", resp.Body.String())
	assert.Equal(t, `attachment; filename="workload_year-1.csv"`, resp.Header().Get("Content-Disposition"))

	resp = r.do(http.MethodGet, "/api/v1/exports/forged", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRoutes(t *testing.T) {
	r := buildTestRouter(t)

	resp := r.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"planner@example.edu","password":"secret"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"access_token":"token"`)

	resp = r.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"planner@example.edu","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = r.do(http.MethodPost, "/api/v1/auth/login", "", `not-json`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = r.do(http.MethodGet, "/api/v1/auth/me", string(models.RoleViewer), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"id":"user-1"`)
}

func TestProbeRoutes(t *testing.T) {
	r := buildTestRouter(t)

	resp := r.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"metrics"`)

	resp = r.do(http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = r.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}
