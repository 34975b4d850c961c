package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-report-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-report-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// newTestDatabase connects to TEST_DATABASE_URL and prepares the audit table.
// Tests are skipped when no database is configured.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, postgresql.EnsureActionAuditSchema(ctx, db))
	_, err = db.Exec(ctx, "TRUNCATE TABLE report_action_audit")
	require.NoError(t, err)
	return db
}
