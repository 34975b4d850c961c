package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDoc(rows int) Document {
	t := Table{
		Name:    "Attendance",
		Headers: []string{"Employee ID", "Name", "Date", "Hours Worked", "Status"},
	}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("EMP%03d", i), "Asha Rao", "January 15, 2024", "8.50", "Present",
		})
	}
	return Document{Filename: "attendance_report", Title: "Attendance Report", Tables: []Table{t}}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatExcel, f)

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDocument_FileName(t *testing.T) {
	doc := sampleDoc(0)
	assert.Equal(t, "attendance_report.xlsx", doc.FileName(FormatExcel))
	assert.Equal(t, "attendance_report.pdf", doc.FileName(FormatPDF))
}

func TestWriteExcel_RoundTrip(t *testing.T) {
	doc := sampleDoc(3)
	doc.Tables = append(doc.Tables, Table{
		Name:    "Leave History",
		Headers: []string{"Leave ID", "Type", "Days"},
		Rows:    [][]string{{"L1", "SL", "0.5"}, {"L2", "EL"}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, doc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Attendance", "Leave History"}, f.GetSheetList())

	rows, err := f.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, doc.Tables[0].Headers, rows[0])
	assert.Equal(t, []string{"EMP002", "Asha Rao", "January 15, 2024", "8.50", "Present"}, rows[3])

	rows, err = f.GetRows("Leave History")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "0.5", rows[1][2])
	assert.Equal(t, "L2", rows[2][0])
	assert.Equal(t, "EL", rows[2][1])
}

func TestWriteExcel_SheetNames(t *testing.T) {
	doc := Document{Tables: []Table{
		{Name: "Leave/Balance: 2024", Headers: []string{"A"}},
		{Name: "Leave/Balance: 2024", Headers: []string{"B"}},
		{Name: strings.Repeat("x", 40), Headers: []string{"C"}},
		{Name: "", Headers: []string{"D"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, doc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 4)
	assert.Equal(t, "Leave-Balance- 2024", sheets[0])
	assert.Equal(t, "Leave-Balance- 2024 (2)", sheets[1])
	assert.Len(t, sheets[2], 31)
	assert.Equal(t, "Sheet4", sheets[3])
}

func TestWriteExcel_EmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, Document{Title: "Empty"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Empty"}, f.GetSheetList())
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleDoc(5)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderPDF_Paginates(t *testing.T) {
	small, err := renderPDF(sampleDoc(5))
	require.NoError(t, err)
	assert.Equal(t, 1, small.PageCount())

	large, err := renderPDF(sampleDoc(200))
	require.NoError(t, err)
	assert.Greater(t, large.PageCount(), 3)
}

func TestRenderPDF_Sections(t *testing.T) {
	doc := sampleDoc(2)
	doc.Tables = append(doc.Tables, Table{Name: "Leave History", Headers: []string{"Leave ID"}, Rows: [][]string{{"L1"}}})

	pdf, err := renderPDF(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, pdf.PageCount())
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sampleDoc(1), Format("csv"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
