package file

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/pkg/storage"
	"github.com/google/uuid"
)

const urlExpiry = 24 * time.Hour

// ArchiveService stores rendered exports so they can be listed and downloaded later.
type ArchiveService interface {
	// Archive uploads data under the report's folder and returns its key and URL
	Archive(ctx context.Context, report, fileName, contentType string, data []byte) (key string, url string, err error)

	// List returns archived keys for a report, newest first
	List(ctx context.Context, report string) ([]string, error)

	GetURL(ctx context.Context, key string) (string, error)
}

type archiveServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewArchiveService(storage storage.FileStorage) ArchiveService {
	return &archiveServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

// Archive uploads an export as {report}/{timestamp}-{id}-{fileName}
func (s *archiveServiceImpl) Archive(ctx context.Context, report, fileName, contentType string, data []byte) (string, string, error) {
	if strings.TrimSpace(report) == "" || strings.TrimSpace(fileName) == "" {
		return "", "", storage.ErrInvalidPath
	}

	// Keep only the base name; exports never carry directories
	fileName = path.Base(strings.ReplaceAll(fileName, "\\", "/"))

	uniqueID := uuid.New().String()[:8]
	stamp := s.now().UTC().Format("20060102T150405Z")
	key := path.Join(report, fmt.Sprintf("%s-%s-%s", stamp, uniqueID, fileName))

	key, err := s.storage.Upload(ctx, bytes.NewReader(data), key, contentType)
	if err != nil {
		return "", "", fmt.Errorf("failed to archive export: %w", err)
	}

	url, err := s.storage.GetURL(ctx, key, urlExpiry)
	if err != nil {
		return key, "", fmt.Errorf("failed to get archive url: %w", err)
	}

	return key, url, nil
}

func (s *archiveServiceImpl) List(ctx context.Context, report string) ([]string, error) {
	prefix := ""
	if report != "" {
		prefix = report + "/"
	}

	keys, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived exports: %w", err)
	}

	// Timestamped names sort chronologically within a report
	sort.Slice(keys, func(i, j int) bool {
		return path.Base(keys[i]) > path.Base(keys[j])
	})
	return keys, nil
}

func (s *archiveServiceImpl) GetURL(ctx context.Context, key string) (string, error) {
	url, err := s.storage.GetURL(ctx, key, urlExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to get archive url: %w", err)
	}
	return url, nil
}
