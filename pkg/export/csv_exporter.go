package export

import (
	"fmt"
	"reflect"

	"github.com/gocarina/gocsv"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders slices of csv-tagged structs.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render marshals rows, which must be a slice of structs carrying csv tags.
// An empty slice still yields the header line.
func (e *CSVExporter) Render(rows interface{}) ([]byte, error) {
	value := reflect.ValueOf(rows)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() != reflect.Slice {
		return nil, fmt.Errorf("csv requires a slice, got %T", rows)
	}
	payload, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return payload, nil
}
