package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
	"github.com/noah-isme/college-timetable-api/pkg/export"
	"github.com/noah-isme/college-timetable-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type timetableReader interface {
	ListSlots(ctx context.Context, termID string, query dto.TimetableQuery) ([]models.TimetableEntry, error)
}

type workloadComputer interface {
	ComputeWorkload(ctx context.Context, yearID string) (*dto.WorkloadResponse, error)
}

type sectionSlotReader interface {
	ListBySection(ctx context.Context, sectionID string) ([]models.TeachingSlot, error)
}

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type sectionFinder interface {
	FindByID(ctx context.Context, id string) (*models.CourseSection, error)
}

type csvRenderer interface {
	Render(rows interface{}) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(grids []export.Grid) ([]byte, error)
}

type icalRenderer interface {
	Render(name string, events []export.CalendarEvent) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Calendar  config.CalendarExportConfig
}

// ExportFile is a rendered document ready to be streamed or stored.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StoredExport is a saved file reachable through a signed download link.
type StoredExport struct {
	RelativePath string
	URL          string
	ExpiresAt    time.Time
}

// ExportDeps bundles the readers an ExportService draws from.
type ExportDeps struct {
	Timetable timetableReader
	Workload  workloadComputer
	Terms     timetableTermReader
	Weeks     timetableWeekReader
	Sections  sectionFinder
	Subjects  subjectFinder
	Rooms     roomReader
	Slots     sectionSlotReader
}

// ExportService renders timetables and workload reports and manages stored export files.
type ExportService struct {
	deps     ExportDeps
	storage  fileStorage
	signer   *storage.SignedURLSigner
	csv      csvRenderer
	pdf      pdfRenderer
	xlsx     xlsxRenderer
	ical     icalRenderer
	location *time.Location
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(deps ExportDeps, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.Calendar.PeriodLength <= 0 {
		cfg.Calendar.PeriodLength = 50 * time.Minute
	}
	location := time.UTC
	if cfg.Calendar.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Calendar.Timezone)
		if err != nil {
			logger.Warn("unknown calendar timezone, using UTC", zap.String("timezone", cfg.Calendar.Timezone), zap.Error(err))
		} else {
			location = loc
		}
	}
	return &ExportService{
		deps:     deps,
		storage:  files,
		signer:   signer,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		xlsx:     export.NewXLSXExporter(),
		ical:     export.NewICalExporter(""),
		location: location,
		logger:   logger,
		cfg:      cfg,
	}
}

const (
	contentTypeCSV  = "text/csv"
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar"
)

var dayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

const periodsPerDay = 10

// --- Timetable ---

type timetableCSVRow struct {
	Week        int    `csv:"week"`
	Day         string `csv:"day"`
	StartPeriod int    `csv:"start_period"`
	EndPeriod   int    `csv:"end_period"`
	Section     string `csv:"section"`
	SubjectCode string `csv:"subject_code"`
	SubjectName string `csv:"subject_name"`
	Instructor  string `csv:"instructor"`
	Room        string `csv:"room"`
	Cohorts     string `csv:"cohorts"`
}

// TimetableFile renders the term timetable as csv (one row per slot and week)
// or xlsx (one sheet per teaching week).
func (s *ExportService) TimetableFile(ctx context.Context, termID string, format models.ExportFormat) (*ExportFile, error) {
	entries, err := s.deps.Timetable.ListSlots(ctx, termID, dto.TimetableQuery{})
	if err != nil {
		return nil, err
	}

	switch format {
	case models.ExportFormatCSV:
		payload, err := s.csv.Render(timetableRows(entries))
		if err != nil {
			return nil, renderError(err, format)
		}
		return &ExportFile{Filename: exportFilename("timetable", termID, format), ContentType: contentTypeCSV, Data: payload}, nil
	case models.ExportFormatXLSX:
		weeks, err := s.deps.Weeks.ListByTerm(ctx, termID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic weeks")
		}
		payload, err := s.xlsx.Render(timetableGrids(weeks, entries))
		if err != nil {
			return nil, renderError(err, format)
		}
		return &ExportFile{Filename: exportFilename("timetable", termID, format), ContentType: contentTypeXLSX, Data: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported timetable export format %q", format))
	}
}

func timetableRows(entries []models.TimetableEntry) []timetableCSVRow {
	rows := make([]timetableCSVRow, 0, len(entries))
	for _, entry := range entries {
		for _, week := range entry.WeekIndexes {
			rows = append(rows, timetableCSVRow{
				Week:        int(week),
				Day:         dayLabel(entry.DayOfWeek),
				StartPeriod: entry.StartPeriod,
				EndPeriod:   entry.EndPeriod,
				Section:     entry.SectionCode,
				SubjectCode: entry.SubjectCode,
				SubjectName: entry.SubjectName,
				Instructor:  derefString(entry.InstructorName),
				Room:        derefString(entry.RoomCode),
				Cohorts:     strings.Join(entry.CohortCodes, " "),
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if a.Day != b.Day {
			return dayIndex(a.Day) < dayIndex(b.Day)
		}
		if a.StartPeriod != b.StartPeriod {
			return a.StartPeriod < b.StartPeriod
		}
		return a.Section < b.Section
	})
	return rows
}

func timetableGrids(weeks []models.AcademicWeek, entries []models.TimetableEntry) []export.Grid {
	periodLabels := make([]string, periodsPerDay)
	for i := range periodLabels {
		periodLabels[i] = fmt.Sprintf("P%d", i+1)
	}

	byWeek := make(map[int]map[export.Cell][]string)
	for _, entry := range entries {
		if entry.DayOfWeek < 1 || entry.DayOfWeek > len(dayNames) {
			continue
		}
		cell := export.Cell{Row: entry.StartPeriod - 1, Col: entry.DayOfWeek - 1}
		text := fmt.Sprintf("%s %s (P%d-P%d)", entry.SectionCode, entry.SubjectName, entry.StartPeriod, entry.EndPeriod)
		if entry.RoomCode != nil {
			text += "\n" + *entry.RoomCode
		}
		if entry.InstructorName != nil {
			text += "\n" + *entry.InstructorName
		}
		for _, week := range entry.WeekIndexes {
			cells, ok := byWeek[int(week)]
			if !ok {
				cells = make(map[export.Cell][]string)
				byWeek[int(week)] = cells
			}
			cells[cell] = append(cells[cell], text)
		}
	}

	grids := make([]export.Grid, 0, len(weeks))
	for _, week := range weeks {
		if week.IsBreak {
			continue
		}
		grid := export.Grid{
			Name:    fmt.Sprintf("Week %d", week.Index),
			Title:   fmt.Sprintf("Week %d: %s to %s", week.Index, week.StartDate.Format("2006-01-02"), week.EndDate.Format("2006-01-02")),
			Columns: dayNames,
			Rows:    periodLabels,
			Cells:   make(map[export.Cell]string),
		}
		for cell, texts := range byWeek[week.Index] {
			sort.Strings(texts)
			grid.Cells[cell] = strings.Join(texts, "\n\n")
		}
		grids = append(grids, grid)
	}
	if len(grids) == 0 {
		grids = append(grids, export.Grid{Name: "Timetable", Columns: dayNames, Rows: periodLabels})
	}
	return grids
}

// --- Workload ---

var workloadPDFHeaders = []string{
	"Code", "Name", "Teaching quota", "Admin quota", "Teaching", "Conversion",
	"Research", "Internship", "Development", "Admin total", "Teaching over", "Admin over",
}

// WorkloadFile renders the annual balance sheet as csv or pdf.
func (s *ExportService) WorkloadFile(ctx context.Context, yearID string, format models.ExportFormat) (*ExportFile, error) {
	report, err := s.deps.Workload.ComputeWorkload(ctx, yearID)
	if err != nil {
		return nil, err
	}

	switch format {
	case models.ExportFormatCSV:
		payload, err := s.csv.Render(report.Rows)
		if err != nil {
			return nil, renderError(err, format)
		}
		return &ExportFile{Filename: exportFilename("workload", yearID, format), ContentType: contentTypeCSV, Data: payload}, nil
	case models.ExportFormatPDF:
		rows := make([]map[string]string, 0, len(report.Rows))
		for _, row := range report.Rows {
			rows = append(rows, map[string]string{
				"Code":           row.InstructorCode,
				"Name":           row.InstructorName,
				"Teaching quota": hours(row.AdjustedTeachingQuota),
				"Admin quota":    hours(row.AdjustedAdminQuota),
				"Teaching":       hours(row.TeachingHours),
				"Conversion":     hours(row.ConversionHours),
				"Research":       hours(row.ResearchHours),
				"Internship":     hours(row.InternshipHours),
				"Development":    hours(row.DevelopmentHours),
				"Admin total":    hours(row.AdminHoursTotal),
				"Teaching over":  hours(row.TeachingOverload),
				"Admin over":     hours(row.AdminOverload),
			})
		}
		payload, err := s.pdf.Render(export.Dataset{Headers: workloadPDFHeaders, Rows: rows}, "Workload balance "+yearID)
		if err != nil {
			return nil, renderError(err, format)
		}
		return &ExportFile{Filename: exportFilename("workload", yearID, format), ContentType: contentTypePDF, Data: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported workload export format %q", format))
	}
}

// --- Section calendar ---

// SectionCalendar renders every dated session of a section as an iCalendar feed.
func (s *ExportService) SectionCalendar(ctx context.Context, sectionID string) (*ExportFile, error) {
	section, err := s.deps.Sections.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course section")
	}
	subject, err := s.deps.Subjects.FindByID(ctx, section.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	weeks, err := s.deps.Weeks.ListByTerm(ctx, section.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic weeks")
	}
	slots, err := s.deps.Slots.ListBySection(ctx, section.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching slots")
	}
	rooms, err := s.deps.Rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	weekByID := make(map[string]models.AcademicWeek, len(weeks))
	for _, week := range weeks {
		weekByID[week.ID] = week
	}
	roomCodes := make(map[string]string, len(rooms))
	for _, room := range rooms {
		roomCodes[room.ID] = room.Code
	}

	events := make([]export.CalendarEvent, 0)
	for _, slot := range slots {
		location := ""
		if slot.RoomID != nil {
			location = roomCodes[*slot.RoomID]
		}
		for _, weekID := range slot.WeekIDs {
			week, ok := weekByID[weekID]
			if !ok {
				continue
			}
			start, end := s.sessionBounds(week, slot)
			events = append(events, export.CalendarEvent{
				UID:         fmt.Sprintf("%s-w%d@college-timetable", slot.ID, week.Index),
				Summary:     fmt.Sprintf("%s %s", subject.Code, subject.Name),
				Description: fmt.Sprintf("Section %s, week %d, periods %d-%d", section.Code, week.Index, slot.StartPeriod, slot.EndPeriod),
				Location:    location,
				Start:       start,
				End:         end,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })

	payload, err := s.ical.Render(section.Code, events)
	if err != nil {
		return nil, renderError(err, models.ExportFormatICS)
	}
	return &ExportFile{Filename: exportFilename("section", section.Code, models.ExportFormatICS), ContentType: contentTypeICS, Data: payload}, nil
}

// sessionBounds maps a slot in a week onto wall-clock time. Periods 1-5 count
// from the morning start and 6-10 from the afternoon start.
func (s *ExportService) sessionBounds(week models.AcademicWeek, slot models.TeachingSlot) (time.Time, time.Time) {
	base := week.StartDate.AddDate(0, 0, slot.DayOfWeek-1)
	day := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, s.location)

	offset := s.cfg.Calendar.MorningStart + time.Duration(slot.StartPeriod-1)*s.cfg.Calendar.PeriodLength
	if slot.StartPeriod > 5 {
		offset = s.cfg.Calendar.AfternoonStart + time.Duration(slot.StartPeriod-6)*s.cfg.Calendar.PeriodLength
	}
	start := day.Add(offset)
	return start, start.Add(time.Duration(slot.Periods()) * s.cfg.Calendar.PeriodLength)
}

// --- Stored files ---

// Store saves a rendered file for jobID and returns a signed download link.
func (s *ExportService) Store(jobID string, file *ExportFile) (*StoredExport, error) {
	relPath, err := s.storage.Save(jobID+"/"+file.Filename, file.Data)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		_ = s.storage.Delete(relPath)
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &StoredExport{
		RelativePath: relPath,
		URL:          fmt.Sprintf("%s/exports/%s", prefix, token),
		ExpiresAt:    expiresAt,
	}, nil
}

// Resolve validates a download token and opens the file it grants.
func (s *ExportService) Resolve(token string) (*os.File, storage.Grant, error) {
	grant, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, grant, appErrors.Clone(appErrors.ErrNotFound, "download link expired")
		}
		return nil, grant, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download link")
	}
	file, err := s.storage.Open(grant.Path)
	if err != nil {
		return nil, grant, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return file, grant, nil
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured retention.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func exportFilename(kind, scope string, format models.ExportFormat) string {
	return fmt.Sprintf("%s_%s.%s", kind, sanitizeFilename(scope), format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func renderError(err error, format models.ExportFormat) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to render %s export", format))
}

func dayLabel(day int) string {
	if day < 1 || day > len(dayNames) {
		return fmt.Sprintf("Day %d", day)
	}
	return dayNames[day-1]
}

func dayIndex(label string) int {
	for i, name := range dayNames {
		if name == label {
			return i
		}
	}
	return len(dayNames)
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func hours(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
