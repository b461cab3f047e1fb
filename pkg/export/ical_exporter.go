package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// CalendarEvent is one dated session.
type CalendarEvent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// ICalExporter renders sessions as an iCalendar feed.
type ICalExporter struct {
	productID string
}

// NewICalExporter constructs an exporter stamping productID into the feed.
func NewICalExporter(productID string) *ICalExporter {
	if productID == "" {
		productID = "-//college-timetable//EN"
	}
	return &ICalExporter{productID: productID}
}

// Render serializes events into a VCALENDAR body.
func (e *ICalExporter) Render(name string, events []CalendarEvent) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.productID)
	if name != "" {
		cal.SetName(name)
	}
	stamp := time.Now().UTC()
	for _, item := range events {
		if item.UID == "" {
			return nil, fmt.Errorf("calendar event requires uid")
		}
		if !item.End.After(item.Start) {
			return nil, fmt.Errorf("calendar event %s ends before it starts", item.UID)
		}
		event := cal.AddEvent(item.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(item.Start)
		event.SetEndAt(item.End)
		event.SetSummary(item.Summary)
		if item.Location != "" {
			event.SetLocation(item.Location)
		}
		if item.Description != "" {
			event.SetDescription(item.Description)
		}
	}
	return []byte(cal.Serialize()), nil
}
