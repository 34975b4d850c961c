package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/pkg/hrapi"
	reportService "github.com/cmlabs-hris/hris-report-go/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const kycBody = `{"kycForms": [
	{"personalDetails": {"employeeId": "E1", "firstName": "Asha", "lastName": "Rao", "projectName": "Alpha", "designation": "Guard"}, "status": "Pending"},
	{"personalDetails": {"employeeId": "E2", "firstName": "Budi", "lastName": "Santoso", "projectName": "Beta", "designation": "Cleaner"}, "status": "Approved"}
]}`

type kycFetcher struct{}

func (kycFetcher) Fetch(ctx context.Context, ep hrapi.Endpoint) ([]byte, error) {
	return []byte(kycBody), nil
}

func newTestContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := reportService.NewRegistry(time.Hour, logger)
	var out bytes.Buffer
	return &Context{
		Reports: reportService.NewReportService(kycFetcher{}, registry, reportService.DefaultProfiles(), nil, logger),
		Logger:  logger,
		Out:     &out,
	}, &out
}

func TestCaller_Principal(t *testing.T) {
	p, err := Caller{Role: "HR", EmployeeID: " E1 ", Project: "Alpha"}.Principal()
	require.NoError(t, err)
	assert.Equal(t, "hrd", string(p.Role))
	assert.Equal(t, "E1", p.EmployeeID)

	_, err = Caller{Role: "owner"}.Principal()
	assert.Error(t, err)
}

func TestListCmd(t *testing.T) {
	ctx, out := newTestContext(t)

	cmd := &ListCmd{Caller: Caller{Role: "employee"}}
	require.NoError(t, cmd.Run(ctx))

	assert.Contains(t, out.String(), "leave-history")
	assert.NotContains(t, out.String(), "kyc")
}

func TestQueryCmd(t *testing.T) {
	ctx, out := newTestContext(t)

	cmd := &QueryCmd{
		Report:     "kyc",
		Caller:     Caller{Role: "hrd"},
		QueryFlags: QueryFlags{Status: "Approved", Page: 1},
	}
	require.NoError(t, cmd.Run(ctx))

	assert.Contains(t, out.String(), "EMPLOYEE ID")
	assert.Contains(t, out.String(), "Budi Santoso")
	assert.NotContains(t, out.String(), "Asha Rao")
	assert.Contains(t, out.String(), "Page 1 of 1 (1 records)")
}

func TestQueryCmd_Errors(t *testing.T) {
	ctx, _ := newTestContext(t)

	err := (&QueryCmd{Report: "kyc", Caller: Caller{Role: "employee"}}).Run(ctx)
	assert.Error(t, err)

	err = (&QueryCmd{Report: "kyc", Caller: Caller{Role: "hrd"}, QueryFlags: QueryFlags{From: "yesterday"}}).Run(ctx)
	assert.Error(t, err)
}

func TestExportCmd(t *testing.T) {
	ctx, _ := newTestContext(t)
	dir := t.TempDir()

	cmd := &ExportCmd{
		Report: "kyc",
		Format: "xlsx",
		Out:    dir,
		Caller: Caller{Role: "hrd"},
	}
	require.NoError(t, cmd.Run(ctx))

	matches, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	fh, err := os.Open(matches[0])
	require.NoError(t, err)
	defer fh.Close()
	wb, err := excelize.OpenReader(fh)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	require.NoError(t, err)
	// One header row plus one row per record
	assert.Len(t, rows, 3)
}
