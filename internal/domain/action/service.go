package action

import (
	"context"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
)

// ActionService performs status transitions against the HR API.
type ActionService interface {
	Submit(ctx context.Context, p user.Principal, req SubmitRequest) (Result, error)
	History(ctx context.Context, p user.Principal, viewID, recordID string, limit int) ([]AuditEntry, error)
}

// AuditRepository records action outcomes.
type AuditRepository interface {
	Record(ctx context.Context, entry AuditEntry) error
	ListByRecord(ctx context.Context, recordID string, limit int) ([]AuditEntry, error)
}
