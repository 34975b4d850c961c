package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/action"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/database"
	"github.com/google/uuid"
)

const auditSchema = `
	CREATE TABLE IF NOT EXISTS report_action_audit (
		id          UUID PRIMARY KEY,
		view_id     TEXT NOT NULL,
		report      TEXT NOT NULL,
		record_id   TEXT NOT NULL,
		action      TEXT NOT NULL,
		role        TEXT NOT NULL,
		employee_id TEXT NOT NULL DEFAULT '',
		succeeded   BOOLEAN NOT NULL,
		message     TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL
	)`

const auditIndex = `
	CREATE INDEX IF NOT EXISTS idx_report_action_audit_record
		ON report_action_audit (record_id, created_at DESC)`

type actionAuditRepository struct {
	db *database.DB
}

// NewActionAuditRepository creates a new action audit repository
func NewActionAuditRepository(db *database.DB) action.AuditRepository {
	return &actionAuditRepository{db: db}
}

// EnsureActionAuditSchema creates the audit table when it does not exist yet
func EnsureActionAuditSchema(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		if _, err := q.Exec(ctx, auditSchema); err != nil {
			return fmt.Errorf("failed to create audit table: %w", err)
		}
		if _, err := q.Exec(ctx, auditIndex); err != nil {
			return fmt.Errorf("failed to create audit index: %w", err)
		}
		return nil
	})
}

func (r *actionAuditRepository) Record(ctx context.Context, entry action.AuditEntry) error {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO report_action_audit
			(id, view_id, report, record_id, action, role, employee_id, succeeded, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.Exec(ctx, query,
		entry.ID,
		entry.ViewID,
		entry.Report,
		entry.RecordID,
		string(entry.Action),
		entry.Role,
		entry.EmployeeID,
		entry.Succeeded,
		entry.Message,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record action audit: %w", err)
	}
	return nil
}

func (r *actionAuditRepository) ListByRecord(ctx context.Context, recordID string, limit int) ([]action.AuditEntry, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, view_id, report, record_id, action, role, employee_id, succeeded, message, created_at
		FROM report_action_audit
		WHERE record_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := q.Query(ctx, query, recordID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list action audit: %w", err)
	}
	defer rows.Close()

	var entries []action.AuditEntry
	for rows.Next() {
		var e action.AuditEntry
		var kind string
		if err := rows.Scan(
			&e.ID,
			&e.ViewID,
			&e.Report,
			&e.RecordID,
			&kind,
			&e.Role,
			&e.EmployeeID,
			&e.Succeeded,
			&e.Message,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan action audit: %w", err)
		}
		e.Action = action.Kind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate action audit: %w", err)
	}
	return entries, nil
}
