package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sampleRow struct {
	Code  string  `csv:"code"`
	Hours float64 `csv:"hours"`
	Notes string  `csv:"-"`
}

func TestCSVExporterRendersTaggedRows(t *testing.T) {
	payload, err := NewCSVExporter().Render([]sampleRow{{Code: "GV01", Hours: 12.5, Notes: "hidden"}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "code,hours", lines[0])
	assert.Equal(t, "GV01,12.5", lines[1])
}

func TestCSVExporterRejectsNonSlice(t *testing.T) {
	_, err := NewCSVExporter().Render(sampleRow{})
	assert.Error(t, err)
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "title")
	assert.Error(t, err)

	payload, err := NewPDFExporter().Render(Dataset{
		Headers: []string{"Code", "Hours"},
		Rows:    []map[string]string{{"Code": "GV01", "Hours": "10"}},
	}, "Workload 2025")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestXLSXExporterWritesOneSheetPerGrid(t *testing.T) {
	payload, err := NewXLSXExporter().Render([]Grid{
		{Name: "Week 1", Columns: []string{"Mon", "Tue"}, Rows: []string{"P1", "P2"}, Cells: map[Cell]string{{Row: 1, Col: 1}: "MH101"}},
		{Name: "Week 2", Columns: []string{"Mon"}, Rows: []string{"P1"}},
	})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer book.Close() //nolint:errcheck

	assert.Equal(t, []string{"Week 1", "Week 2"}, book.GetSheetList())
	value, err := book.GetCellValue("Week 1", "C3")
	require.NoError(t, err)
	assert.Equal(t, "MH101", value)
	header, err := book.GetCellValue("Week 1", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Mon", header)
}

func TestICalExporterSerializesEvents(t *testing.T) {
	start := time.Date(2025, 1, 6, 7, 0, 0, 0, time.UTC)
	payload, err := NewICalExporter("").Render("MH101-01", []CalendarEvent{{
		UID:      "slot-1-w1@timetable",
		Summary:  "MH101 Algorithms",
		Location: "A101",
		Start:    start,
		End:      start.Add(4 * time.Hour),
	}})
	require.NoError(t, err)

	body := string(payload)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "UID:slot-1-w1@timetable")
	assert.Contains(t, body, "DTSTART:20250106T070000Z")
	assert.Contains(t, body, "LOCATION:A101")
}

func TestICalExporterRejectsInvertedEvent(t *testing.T) {
	start := time.Date(2025, 1, 6, 7, 0, 0, 0, time.UTC)
	_, err := NewICalExporter("").Render("x", []CalendarEvent{{UID: "a", Start: start, End: start}})
	assert.Error(t, err)
}
