package port

import (
	"context"
	"time"

	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/internal/domain/workflow"
)

// StageStamp carries the attribution recorded when a request enters a stage
type StageStamp struct {
	ActorID string
	At      time.Time
	Status  workflow.Status
}

// RequestRepository defines persistence operations for PurchaseRequest.
// Every operation is scoped by company id in addition to primary key.
type RequestRepository interface {
	Create(ctx context.Context, req *entity.PurchaseRequest) error

	// GetByID returns (nil, nil) when no row matches the company/id pair
	GetByID(ctx context.Context, companyID, id int64) (*entity.PurchaseRequest, error)

	// UpdateStatusIf moves the request to stamp.Status only if its current
	// status still equals expected, stamping the attribution pair for the
	// stage being entered. Returns false when the conditional write matched
	// no row, meaning a concurrent actor got there first.
	UpdateStatusIf(ctx context.Context, companyID, id int64, expected workflow.Status, stamp StageStamp) (bool, error)

	List(ctx context.Context, companyID int64, limit, offset int) ([]*entity.PurchaseRequest, error)
}

// ItemDecisionUpdate carries the fields written by a line item decision
type ItemDecisionUpdate struct {
	Status          workflow.ItemStatus
	ApprovedQty     *float64
	RejectComment   *string
	ResubmitComment *string
}

// ItemRepository defines persistence operations for RequestLineItem
type ItemRepository interface {
	Create(ctx context.Context, item *entity.RequestLineItem) error

	// GetByID returns (nil, nil) when no row matches the company/id pair
	GetByID(ctx context.Context, companyID, id int64) (*entity.RequestLineItem, error)

	GetByRequestID(ctx context.Context, companyID, requestID int64) ([]*entity.RequestLineItem, error)

	// ApplyDecisionIf writes a decision only if the item's status still
	// equals expected; returns false when the conditional write matched no
	// row. Fields with nil pointers in upd are left untouched.
	ApplyDecisionIf(ctx context.Context, companyID, id int64, expected workflow.ItemStatus, upd ItemDecisionUpdate) (bool, error)

	// SetLinkedItem records the inventory record created for the line item
	SetLinkedItem(ctx context.Context, companyID, id, inventoryItemID int64) error
}

// EventRepository defines persistence operations for the append-only audit log
type EventRepository interface {
	Create(ctx context.Context, event *entity.WorkflowEvent) error
	GetByRequestID(ctx context.Context, companyID, requestID int64) ([]*entity.WorkflowEvent, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
