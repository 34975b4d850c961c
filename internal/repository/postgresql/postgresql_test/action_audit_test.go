package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/action"
	"github.com/cmlabs-hris/hris-report-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionAuditRepository_RecordAndList(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewActionAuditRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	entries := []action.AuditEntry{
		{ViewID: "v1", Report: "kyc", RecordID: "EMP001", Action: action.KindApprove, Role: "hrd", Succeeded: false, Message: "Something went wrong. Please try again.", CreatedAt: base},
		{ViewID: "v1", Report: "kyc", RecordID: "EMP001", Action: action.KindApprove, Role: "hrd", Succeeded: true, Message: "KYC approved", CreatedAt: base.Add(time.Minute)},
		{ViewID: "v1", Report: "kyc", RecordID: "EMP002", Action: action.KindReject, Role: "hrd", Succeeded: true, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, repo.Record(ctx, e))
	}

	got, err := repo.ListByRecord(ctx, "EMP001", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Succeeded)
	assert.Equal(t, "KYC approved", got[0].Message)
	assert.Equal(t, action.KindApprove, got[1].Action)
	assert.NotEmpty(t, got[1].ID)

	got, err = repo.ListByRecord(ctx, "EMP001", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewActionAuditRepository(db)
	ctx := context.Background()

	err := postgresql.WithTransaction(ctx, db, func(ctx context.Context) error {
		require.NoError(t, repo.Record(ctx, action.AuditEntry{ViewID: "v", Report: "kyc", RecordID: "EMP009", Action: action.KindApprove, Role: "hrd"}))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	got, err := repo.ListByRecord(ctx, "EMP009", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
