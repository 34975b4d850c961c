// Package export serializes report tables to Excel workbooks and PDF documents.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

type Format string

const (
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel", "xls":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Table is one rectangular block of already formatted cells.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Document is the export of one report. Filename has no extension; the same
// report always suggests the same name.
type Document struct {
	Filename string
	Title    string
	Tables   []Table
}

// FileName returns the suggested download name for format.
func (d Document) FileName(f Format) string {
	return d.Filename + "." + string(f)
}

// RowCount is the number of data rows over all tables.
func (d Document) RowCount() int {
	n := 0
	for _, t := range d.Tables {
		n += len(t.Rows)
	}
	return n
}

// Write renders doc in the given format.
func Write(w io.Writer, doc Document, f Format) error {
	switch f {
	case FormatExcel:
		return WriteExcel(w, doc)
	case FormatPDF:
		return WritePDF(w, doc)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// cell returns row[i], or "" for ragged rows.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
