package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Cell addresses a grid body cell by zero-based row and column.
type Cell struct {
	Row int
	Col int
}

// Grid is one worksheet: labelled columns across, labelled rows down.
type Grid struct {
	Name    string
	Title   string
	Columns []string
	Rows    []string
	Cells   map[Cell]string
}

// XLSXExporter renders grids into a workbook, one sheet per grid.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes every grid to its own sheet and returns the workbook bytes.
func (e *XLSXExporter) Render(grids []Grid) ([]byte, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one sheet")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create body style: %w", err)
	}

	for i, grid := range grids {
		name := sheetName(grid.Name, i)
		idx, err := f.NewSheet(name)
		if err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeGrid(f, name, grid, headerStyle, bodyStyle); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeGrid(f *excelize.File, sheet string, grid Grid, headerStyle, bodyStyle int) error {
	headerRow := 1
	if grid.Title != "" {
		if err := f.SetCellValue(sheet, "A1", grid.Title); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
		headerRow = 3
	}

	if err := f.SetColWidth(sheet, "A", "A", 12); err != nil {
		return fmt.Errorf("size label column: %w", err)
	}
	for c, label := range grid.Columns {
		cell, err := excelize.CoordinatesToCellName(c+2, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return fmt.Errorf("write column header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style column header: %w", err)
		}
		col, err := excelize.ColumnNumberToName(c + 2)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, 28); err != nil {
			return fmt.Errorf("size column: %w", err)
		}
	}

	for r, label := range grid.Rows {
		cell, err := excelize.CoordinatesToCellName(1, headerRow+r+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return fmt.Errorf("write row header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style row header: %w", err)
		}
	}

	for pos, text := range grid.Cells {
		if pos.Row < 0 || pos.Row >= len(grid.Rows) || pos.Col < 0 || pos.Col >= len(grid.Columns) {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(pos.Col+2, headerRow+pos.Row+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, text); err != nil {
			return fmt.Errorf("write cell: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, bodyStyle); err != nil {
			return fmt.Errorf("style cell: %w", err)
		}
	}
	return nil
}

// sheetName enforces the 31-character limit and strips characters Excel rejects.
func sheetName(raw string, index int) string {
	name := strings.NewReplacer(":", "-", "/", "-", "\\", "-", "?", "", "*", "", "[", "(", "]", ")").Replace(raw)
	if name == "" || strings.EqualFold(name, "Sheet1") {
		name = fmt.Sprintf("Sheet %d", index+1)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
