package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet      = "Sheet1"
	maxSheetName      = 31
	minColWidth       = 10.0
	maxColWidth       = 50.0
	invalidSheetChars = `[]:*?/\`
)

// WriteExcel writes one sheet per table: a bold header row, then one row per record.
func WriteExcel(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	tables := doc.Tables
	if len(tables) == 0 {
		tables = []Table{{Name: doc.Title}}
	}

	used := make(map[string]bool)
	for i, table := range tables {
		name := sheetName(table.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, table, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, table Table, headerStyle int) error {
	width := len(table.Headers)
	for _, row := range table.Rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return nil
	}

	colWidths := make([]float64, width)
	for i, h := range table.Headers {
		colWidths[i] = textWidth(h)
	}

	if len(table.Headers) > 0 {
		header := padRow(table.Headers, width)
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of %q: %w", sheet, err)
		}
		last, _ := excelize.CoordinatesToCellName(width, 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", sheet, err)
		}
	}

	first := 2
	if len(table.Headers) == 0 {
		first = 1
	}
	for i, row := range table.Rows {
		padded := padRow(row, width)
		for c, v := range padded {
			colWidths[c] = max(colWidths[c], textWidth(v))
		}
		start, _ := excelize.CoordinatesToCellName(1, first+i)
		if err := f.SetSheetRow(sheet, start, &padded); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+1, sheet, err)
		}
	}

	for c, cw := range colWidths {
		col, _ := excelize.ColumnNumberToName(c + 1)
		if err := f.SetColWidth(sheet, col, col, min(max(cw+2, minColWidth), maxColWidth)); err != nil {
			return fmt.Errorf("failed to size column %s of %q: %w", col, sheet, err)
		}
	}
	return nil
}

func padRow(row []string, width int) []string {
	out := make([]string, width)
	for i := range out {
		out[i] = cell(row, i)
	}
	return out
}

func textWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s))
}

// sheetName makes name a valid, unique worksheet name.
func sheetName(name string, index int, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetChars, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		name = fmt.Sprintf("Sheet%d", index+1)
	}
	if utf8.RuneCountInString(name) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}

	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
