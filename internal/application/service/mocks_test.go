package service

import (
	"context"

	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/internal/domain/workflow"
)

// noopLogger satisfies Logger for tests
type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// passthroughTx runs the function directly without a real transaction
type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRequestRepo struct {
	CreateFn         func(ctx context.Context, req *entity.PurchaseRequest) error
	GetByIDFn        func(ctx context.Context, companyID, id int64) (*entity.PurchaseRequest, error)
	UpdateStatusIfFn func(ctx context.Context, companyID, id int64, expected workflow.Status, stamp port.StageStamp) (bool, error)
	ListFn           func(ctx context.Context, companyID int64, limit, offset int) ([]*entity.PurchaseRequest, error)
}

func (m *mockRequestRepo) Create(ctx context.Context, req *entity.PurchaseRequest) error {
	return m.CreateFn(ctx, req)
}

func (m *mockRequestRepo) GetByID(ctx context.Context, companyID, id int64) (*entity.PurchaseRequest, error) {
	return m.GetByIDFn(ctx, companyID, id)
}

func (m *mockRequestRepo) UpdateStatusIf(ctx context.Context, companyID, id int64, expected workflow.Status, stamp port.StageStamp) (bool, error) {
	return m.UpdateStatusIfFn(ctx, companyID, id, expected, stamp)
}

func (m *mockRequestRepo) List(ctx context.Context, companyID int64, limit, offset int) ([]*entity.PurchaseRequest, error) {
	return m.ListFn(ctx, companyID, limit, offset)
}

type mockItemRepo struct {
	CreateFn          func(ctx context.Context, item *entity.RequestLineItem) error
	GetByIDFn         func(ctx context.Context, companyID, id int64) (*entity.RequestLineItem, error)
	GetByRequestIDFn  func(ctx context.Context, companyID, requestID int64) ([]*entity.RequestLineItem, error)
	ApplyDecisionIfFn func(ctx context.Context, companyID, id int64, expected workflow.ItemStatus, upd port.ItemDecisionUpdate) (bool, error)
	SetLinkedItemFn   func(ctx context.Context, companyID, id, inventoryItemID int64) error
}

func (m *mockItemRepo) Create(ctx context.Context, item *entity.RequestLineItem) error {
	return m.CreateFn(ctx, item)
}

func (m *mockItemRepo) GetByID(ctx context.Context, companyID, id int64) (*entity.RequestLineItem, error) {
	return m.GetByIDFn(ctx, companyID, id)
}

func (m *mockItemRepo) GetByRequestID(ctx context.Context, companyID, requestID int64) ([]*entity.RequestLineItem, error) {
	return m.GetByRequestIDFn(ctx, companyID, requestID)
}

func (m *mockItemRepo) ApplyDecisionIf(ctx context.Context, companyID, id int64, expected workflow.ItemStatus, upd port.ItemDecisionUpdate) (bool, error) {
	return m.ApplyDecisionIfFn(ctx, companyID, id, expected, upd)
}

func (m *mockItemRepo) SetLinkedItem(ctx context.Context, companyID, id, inventoryItemID int64) error {
	return m.SetLinkedItemFn(ctx, companyID, id, inventoryItemID)
}

type mockEventRepo struct {
	CreateFn         func(ctx context.Context, event *entity.WorkflowEvent) error
	GetByRequestIDFn func(ctx context.Context, companyID, requestID int64) ([]*entity.WorkflowEvent, error)

	created []*entity.WorkflowEvent
}

func (m *mockEventRepo) Create(ctx context.Context, event *entity.WorkflowEvent) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, event); err != nil {
			return err
		}
	}
	m.created = append(m.created, event)
	return nil
}

func (m *mockEventRepo) GetByRequestID(ctx context.Context, companyID, requestID int64) ([]*entity.WorkflowEvent, error) {
	return m.GetByRequestIDFn(ctx, companyID, requestID)
}

type mockInventory struct {
	GetQuantityFn       func(ctx context.Context, companyID, itemID int64) (float64, bool, error)
	IncrementQuantityFn func(ctx context.Context, companyID, itemID int64, delta float64) error
	CreateItemFn        func(ctx context.Context, item *entity.InventoryItem) (int64, error)
}

func (m *mockInventory) GetQuantity(ctx context.Context, companyID, itemID int64) (float64, bool, error) {
	return m.GetQuantityFn(ctx, companyID, itemID)
}

func (m *mockInventory) IncrementQuantity(ctx context.Context, companyID, itemID int64, delta float64) error {
	return m.IncrementQuantityFn(ctx, companyID, itemID, delta)
}

func (m *mockInventory) CreateItem(ctx context.Context, item *entity.InventoryItem) (int64, error) {
	return m.CreateItemFn(ctx, item)
}
