package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-timetable-api/internal/middleware"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth      *AuthHandler
	Calendar  *CalendarHandler
	Timetable *TimetableHandler
	Workload  *WorkloadHandler
	Export    *ExportHandler
	Job       *JobHandler
	Metrics   *MetricsHandler
}

// RegisterRoutes mounts probes at the root and the API under prefix. authenticate
// must place JWT claims on the context.
func RegisterRoutes(router *gin.Engine, prefix string, h Handlers, authenticate gin.HandlerFunc) {
	router.GET("/health", h.Metrics.Health)
	router.GET("/ready", h.Metrics.Ready)
	router.GET("/metrics", h.Metrics.Prometheus)

	api := router.Group(prefix)
	api.Use(middleware.WithResponseMeta())
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/exports/:token", h.Job.Download)

	secured := api.Group("")
	secured.Use(authenticate)
	secured.GET("/auth/me", h.Auth.Me)

	read := secured.Group("", middleware.Readers())
	read.GET("/terms/:id/weeks", h.Calendar.ListWeeks)
	read.GET("/terms/:id/slots", h.Timetable.ListSlots)
	read.GET("/terms/:id/timetable/export", h.Export.Timetable)
	read.GET("/sections/:id/calendar.ics", h.Export.SectionCalendar)
	read.GET("/workload/:yearId", h.Workload.Compute)
	read.GET("/workload/:yearId/export", h.Export.Workload)
	read.GET("/jobs/:id", h.Job.Status)
	read.GET("/schedule/jobs/:id", h.Job.Status)

	write := secured.Group("", middleware.Writers())
	write.POST("/terms/:id/weeks/generate", h.Calendar.GenerateWeeks)
	write.POST("/sections/:id/schedule/fixed", h.Timetable.ScheduleFixed)
	write.POST("/sections/:id/schedule/semi-auto", h.Timetable.ScheduleSemiAuto)
	write.POST("/terms/:id/schedule/fixed", h.Timetable.ScheduleTerm)
	write.POST("/terms/:id/schedule/jobs", h.Timetable.EnqueueTerm)
	write.POST("/research-projects/:id/distribute-shares", h.Workload.DistributeShares)
	write.POST("/jobs", h.Job.Create)
}
