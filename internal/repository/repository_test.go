package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/internal/domain/workflow"
	"github.com/stokstak/procurement/pkg/database"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.RunMigrations("../../migrations"))

	return db
}

func seedRequest(t *testing.T, repo port.RequestRepository, companyID int64) *entity.PurchaseRequest {
	t.Helper()
	req := &entity.PurchaseRequest{
		CompanyID:   companyID,
		RequestedBy: "req-user",
		Status:      workflow.StatusSubmitted,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	require.NotZero(t, req.ID)
	return req
}

func TestRequestRepositoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db, zap.NewNop())
	ctx := context.Background()

	notes := "urgent site restock"
	needed := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	req := &entity.PurchaseRequest{
		CompanyID:   10,
		RequestedBy: "req-user",
		Status:      workflow.StatusSubmitted,
		Notes:       &notes,
		NeededBy:    &needed,
	}
	require.NoError(t, repo.Create(ctx, req))

	got, err := repo.GetByID(ctx, 10, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, workflow.StatusSubmitted, got.Status)
	assert.Equal(t, "req-user", got.RequestedBy)
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)
	assert.Nil(t, got.PMApprovedBy)

	// Conditional status write stamps the stage attribution
	now := time.Now().UTC().Truncate(time.Second)
	ok, err := repo.UpdateStatusIf(ctx, 10, req.ID, workflow.StatusSubmitted, port.StageStamp{
		ActorID: "pm-user", At: now, Status: workflow.StatusPMApproved,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.GetByID(ctx, 10, req.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPMApproved, got.Status)
	require.NotNil(t, got.PMApprovedBy)
	assert.Equal(t, "pm-user", *got.PMApprovedBy)
	assert.NotNil(t, got.PMApprovedAt)

	// A write conditioned on a stale status matches no row
	ok, err = repo.UpdateStatusIf(ctx, 10, req.ID, workflow.StatusSubmitted, port.StageStamp{
		ActorID: "pm-user", At: now, Status: workflow.StatusPMApproved,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = repo.GetByID(ctx, 10, req.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPMApproved, got.Status, "failed conditional write must not change the row")
}

func TestRequestRepositoryTenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db, zap.NewNop())
	ctx := context.Background()

	req := seedRequest(t, repo, 10)

	// Reads from another company see nothing
	got, err := repo.GetByID(ctx, 11, req.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Writes from another company match no row
	ok, err := repo.UpdateStatusIf(ctx, 11, req.ID, workflow.StatusSubmitted, port.StageStamp{
		ActorID: "intruder", At: time.Now(), Status: workflow.StatusPMApproved,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	other := seedRequest(t, repo, 11)
	list, err := repo.List(ctx, 10, 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, req.ID, list[0].ID)
	assert.NotEqual(t, other.ID, list[0].ID)
}

func TestItemRepositoryDecisions(t *testing.T) {
	db := setupTestDB(t)
	reqRepo := NewRequestRepository(db, zap.NewNop())
	itemRepo := NewItemRepository(db, zap.NewNop())
	ctx := context.Background()

	req := seedRequest(t, reqRepo, 10)

	item := &entity.RequestLineItem{
		CompanyID:   10,
		RequestID:   req.ID,
		ItemType:    entity.LineItemTypeTool,
		Description: "angle grinder",
		Quantity:    4,
		Unit:        entity.DefaultUnit,
		Status:      workflow.ItemPending,
	}
	require.NoError(t, itemRepo.Create(ctx, item))

	// Reject with a comment
	reason := "wrong vendor"
	zero := 0.0
	ok, err := itemRepo.ApplyDecisionIf(ctx, 10, item.ID, workflow.ItemPending, port.ItemDecisionUpdate{
		Status: workflow.ItemRejected, ApprovedQty: &zero, RejectComment: &reason,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// Stale expected status matches no row
	ok, err = itemRepo.ApplyDecisionIf(ctx, 10, item.ID, workflow.ItemPending, port.ItemDecisionUpdate{
		Status: workflow.ItemApproved,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	// Re-approve with a resubmit comment; the reject comment survives
	qty := 2.0
	resubmit := "vendor corrected"
	ok, err = itemRepo.ApplyDecisionIf(ctx, 10, item.ID, workflow.ItemRejected, port.ItemDecisionUpdate{
		Status: workflow.ItemApproved, ApprovedQty: &qty, ResubmitComment: &resubmit,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := itemRepo.GetByID(ctx, 10, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, workflow.ItemApproved, got.Status)
	require.NotNil(t, got.ApprovedQty)
	assert.Equal(t, 2.0, *got.ApprovedQty)
	require.NotNil(t, got.RejectComment)
	assert.Equal(t, reason, *got.RejectComment)
	require.NotNil(t, got.ResubmitComment)
	assert.Equal(t, resubmit, *got.ResubmitComment)
	assert.Equal(t, 2.0, got.EffectiveQty())

	// Link the inventory record created by fulfillment
	require.NoError(t, itemRepo.SetLinkedItem(ctx, 10, item.ID, 77))
	got, err = itemRepo.GetByID(ctx, 10, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LinkedItemID)
	assert.Equal(t, int64(77), *got.LinkedItemID)
}

func TestEventRepositoryAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	reqRepo := NewRequestRepository(db, zap.NewNop())
	eventRepo := NewEventRepository(db, zap.NewNop())
	ctx := context.Background()

	req := seedRequest(t, reqRepo, 10)

	from := "submitted"
	to := "pm_approved"
	require.NoError(t, eventRepo.Create(ctx, &entity.WorkflowEvent{
		CompanyID:   10,
		RequestID:   req.ID,
		PerformedBy: "pm-user",
		EventType:   entity.EventStatusChange,
		FromStatus:  &from,
		ToStatus:    &to,
	}))

	itemID := int64(5)
	comment := "qty trimmed"
	require.NoError(t, eventRepo.Create(ctx, &entity.WorkflowEvent{
		CompanyID:   10,
		RequestID:   req.ID,
		ItemID:      &itemID,
		PerformedBy: "pm-user",
		EventType:   entity.EventItemApproved,
		Comment:     &comment,
	}))

	events, err := eventRepo.GetByRequestID(ctx, 10, req.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, entity.EventStatusChange, events[0].EventType)
	require.NotNil(t, events[0].FromStatus)
	assert.Equal(t, "submitted", *events[0].FromStatus)
	assert.Nil(t, events[0].ItemID)

	assert.Equal(t, entity.EventItemApproved, events[1].EventType)
	require.NotNil(t, events[1].ItemID)
	assert.Equal(t, itemID, *events[1].ItemID)

	// Another tenant sees nothing
	events, err = eventRepo.GetByRequestID(ctx, 11, req.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestInventoryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInventoryRepository(db, zap.NewNop())
	ctx := context.Background()

	_, found, err := repo.GetQuantity(ctx, 10, 999)
	require.NoError(t, err)
	assert.False(t, found)

	price := 12.5
	id, err := repo.CreateItem(ctx, &entity.InventoryItem{
		CompanyID:     10,
		Name:          "angle grinder",
		Quantity:      3,
		PurchasePrice: &price,
		CreatedBy:     "buyer",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	qty, found, err := repo.GetQuantity(ctx, 10, id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3.0, qty)

	require.NoError(t, repo.IncrementQuantity(ctx, 10, id, 4))
	qty, _, err = repo.GetQuantity(ctx, 10, id)
	require.NoError(t, err)
	assert.Equal(t, 7.0, qty)

	// Tenant isolation on both read and write
	_, found, err = repo.GetQuantity(ctx, 11, id)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Error(t, repo.IncrementQuantity(ctx, 11, id, 1))
}

func TestMemberRepositoryRoleOf(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMemberRepository(db, zap.NewNop())
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO company_members (company_id, user_id, role, is_active) VALUES
			(10, 'pm-user', 'pm', 1),
			(10, 'gone-user', 'president', 0),
			(11, 'pm-user', 'requester', 1)
	`)
	require.NoError(t, err)

	role, err := repo.RoleOf(ctx, 10, "pm-user")
	require.NoError(t, err)
	assert.Equal(t, workflow.RolePM, role)

	// Membership is per company
	role, err = repo.RoleOf(ctx, 11, "pm-user")
	require.NoError(t, err)
	assert.Equal(t, workflow.RoleRequester, role)

	// Inactive and missing members resolve to no role
	role, err = repo.RoleOf(ctx, 10, "gone-user")
	require.NoError(t, err)
	assert.Empty(t, role)

	role, err = repo.RoleOf(ctx, 10, "stranger")
	require.NoError(t, err)
	assert.Empty(t, role)
}

func TestTransactionRollback(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db, zap.NewNop())
	ctx := context.Background()

	failure := assert.AnError
	err := db.WithTransaction(ctx, func(txCtx context.Context) error {
		req := &entity.PurchaseRequest{
			CompanyID:   10,
			RequestedBy: "req-user",
			Status:      workflow.StatusSubmitted,
		}
		if err := repo.Create(txCtx, req); err != nil {
			return err
		}
		return failure
	})
	require.ErrorIs(t, err, failure)

	list, err := repo.List(ctx, 10, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list, "rolled back insert must not be visible")
}
