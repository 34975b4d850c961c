package file

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArchive(t *testing.T) (*archiveServiceImpl, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/exports/")
	require.NoError(t, err)
	svc := NewArchiveService(local).(*archiveServiceImpl)
	return svc, local
}

func TestArchive_KeyAndURL(t *testing.T) {
	svc, local := newTestArchive(t)
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }

	key, url, err := svc.Archive(context.Background(), "kyc", "../../etc/kyc_forms.xlsx", "application/octet-stream", []byte("xlsx"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "kyc/20250314T093000Z-"), key)
	assert.True(t, strings.HasSuffix(key, "-kyc_forms.xlsx"), key)
	assert.Equal(t, "http://localhost:8080/exports/"+key, url)

	rc, err := local.Download(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", string(data))
}

func TestArchive_RejectsBlankNames(t *testing.T) {
	svc, _ := newTestArchive(t)

	_, _, err := svc.Archive(context.Background(), " ", "a.pdf", "application/pdf", nil)
	assert.ErrorIs(t, err, storage.ErrInvalidPath)

	_, _, err = svc.Archive(context.Background(), "kyc", "", "application/pdf", nil)
	assert.ErrorIs(t, err, storage.ErrInvalidPath)
}

func TestList_NewestFirstPerReport(t *testing.T) {
	svc, _ := newTestArchive(t)
	ctx := context.Background()

	stamps := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, ts := range stamps {
		svc.now = func() time.Time { return ts }
		_, _, err := svc.Archive(ctx, "attendance", "attendance.pdf", "application/pdf", []byte("pdf"))
		require.NoError(t, err)
	}
	_, _, err := svc.Archive(ctx, "kyc", "kyc.pdf", "application/pdf", []byte("pdf"))
	require.NoError(t, err)

	keys, err := svc.List(ctx, "attendance")
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Contains(t, keys[0], "20250201T")
	assert.Contains(t, keys[1], "20250101T")

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
