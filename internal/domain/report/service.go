package report

import (
	"context"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/export"
)

// ReportService runs reports, either one-shot or as long-lived views.
type ReportService interface {
	Catalog(p user.Principal) []Info

	// One-shot
	Query(ctx context.Context, p user.Principal, key Key, req QueryRequest) (Snapshot, error)
	ExportReport(ctx context.Context, p user.Principal, key Key, req QueryRequest, format export.Format) (Artifact, error)

	// Views
	OpenView(ctx context.Context, p user.Principal, req CreateViewRequest) (Snapshot, error)
	GetView(p user.Principal, viewID string) (Snapshot, error)
	CloseView(p user.Principal, viewID string) error
	RefreshView(ctx context.Context, p user.Principal, viewID string) (Snapshot, error)
	UpdateFilters(p user.Principal, viewID string, req FilterUpdate) (Snapshot, error)
	ToggleSort(p user.Principal, viewID string, key string) (Snapshot, error)
	SetPage(p user.Principal, viewID string, page int) (Snapshot, error)
	ExportView(ctx context.Context, p user.Principal, viewID string, format export.Format) (Artifact, error)

	// Archive
	ListArchive(ctx context.Context, p user.Principal, key Key) ([]string, error)
}
