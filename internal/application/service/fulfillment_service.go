package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stokstak/procurement/internal/apperr"
	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/internal/domain/workflow"
)

// Outcome constants for FulfillmentReport entries
const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// ItemOutcome records what fulfillment did with one line item
type ItemOutcome struct {
	ItemID          int64   `json:"item_id"`
	Outcome         string  `json:"outcome"`
	Quantity        float64 `json:"quantity,omitempty"`
	InventoryItemID *int64  `json:"inventory_item_id,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}

// FulfillmentReport is the aggregate result of one fulfillment run. A run with
// failed entries is still a successful operation; inventory effects already
// applied for earlier items are never rolled back.
type FulfillmentReport struct {
	RequestID int64         `json:"request_id"`
	Results   []ItemOutcome `json:"results"`
}

// Applied returns the number of items reconciled into inventory
func (r *FulfillmentReport) Applied() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeApplied {
			n++
		}
	}
	return n
}

// FulfillmentService projects approved line items of a received request into
// the inventory store
type FulfillmentService interface {
	FulfillToInventory(ctx context.Context, companyID, requestID int64, actorID string, role workflow.Role) (*FulfillmentReport, error)
}

type fulfillmentServiceImpl struct {
	requestRepo port.RequestRepository
	itemRepo    port.ItemRepository
	eventRepo   port.EventRepository
	inventory   port.InventoryStore
	logger      Logger
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(
	requestRepo port.RequestRepository,
	itemRepo port.ItemRepository,
	eventRepo port.EventRepository,
	inventory port.InventoryStore,
	logger Logger,
) FulfillmentService {
	return &fulfillmentServiceImpl{
		requestRepo: requestRepo,
		itemRepo:    itemRepo,
		eventRepo:   eventRepo,
		inventory:   inventory,
		logger:      logger,
	}
}

// FulfillToInventory implements FulfillmentService. Items are processed
// independently with no cross-item transaction: a failure reconciling one item
// is recorded in the report and the loop continues, because inventory effects
// already applied for earlier items cannot be rolled back across stores.
// Re-running against items that already carry a linked inventory record
// increments inventory additively a second time; that is the documented
// contract, not a bug.
func (s *fulfillmentServiceImpl) FulfillToInventory(ctx context.Context, companyID, requestID int64, actorID string, role workflow.Role) (*FulfillmentReport, error) {
	if !workflow.CanFulfill(role) {
		return nil, apperr.Forbidden("role %s may not stock requests into inventory", role)
	}

	req, err := s.requestRepo.GetByID(ctx, companyID, requestID)
	if err != nil {
		s.logger.Error("Failed to load request", "error", err, "company_id", companyID, "request_id", requestID)
		return nil, fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return nil, apperr.NotFound("purchase request %d not found", requestID)
	}
	if req.Status != workflow.StatusReceived {
		return nil, apperr.InvalidArgument("request %d is %s; only received requests can be stocked", requestID, req.Status)
	}

	items, err := s.itemRepo.GetByRequestID(ctx, companyID, requestID)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}

	report := &FulfillmentReport{RequestID: requestID}
	for _, item := range items {
		report.Results = append(report.Results, s.reconcileItem(ctx, req, item, actorID))
	}

	event := &entity.WorkflowEvent{
		CompanyID:   companyID,
		RequestID:   requestID,
		PerformedBy: actorID,
		EventType:   entity.EventStocked,
		Comment:     optionalText(fmt.Sprintf("%d of %d line items received into inventory", report.Applied(), len(items))),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		// Inventory writes are already durable at this point; surface the
		// log failure rather than pretending the audit row exists.
		s.logger.Error("Failed to append stocked event", "error", err, "request_id", requestID)
		return report, fmt.Errorf("append stocked event: %w", err)
	}

	s.logger.Info("Fulfillment completed",
		"company_id", companyID, "request_id", requestID,
		"applied", report.Applied(), "total", len(items))
	return report, nil
}

// reconcileItem projects a single line item into the inventory store
func (s *fulfillmentServiceImpl) reconcileItem(ctx context.Context, req *entity.PurchaseRequest, item *entity.RequestLineItem, actorID string) ItemOutcome {
	if item.Status == workflow.ItemRejected {
		return ItemOutcome{ItemID: item.ID, Outcome: OutcomeSkipped, Reason: "item rejected"}
	}

	qty := item.EffectiveQty()
	if qty <= 0 {
		return ItemOutcome{ItemID: item.ID, Outcome: OutcomeSkipped, Reason: "nothing approved to stock"}
	}

	if item.LinkedItemID != nil {
		invID := *item.LinkedItemID
		_, found, err := s.inventory.GetQuantity(ctx, item.CompanyID, invID)
		if err != nil {
			s.logger.Error("Failed to read stock item", "error", err, "item_id", item.ID, "inventory_item_id", invID)
			return ItemOutcome{ItemID: item.ID, Outcome: OutcomeFailed, Reason: fmt.Sprintf("read inventory: %v", err)}
		}
		if !found {
			return ItemOutcome{ItemID: item.ID, Outcome: OutcomeFailed, Reason: "linked inventory record not found"}
		}
		if err := s.inventory.IncrementQuantity(ctx, item.CompanyID, invID, qty); err != nil {
			s.logger.Error("Failed to increment stock item", "error", err, "item_id", item.ID, "inventory_item_id", invID)
			return ItemOutcome{ItemID: item.ID, Outcome: OutcomeFailed, Reason: fmt.Sprintf("increment inventory: %v", err)}
		}
		return ItemOutcome{ItemID: item.ID, Outcome: OutcomeApplied, Quantity: qty, InventoryItemID: &invID}
	}

	today := time.Now()
	newItem := &entity.InventoryItem{
		CompanyID:     item.CompanyID,
		Name:          item.Description,
		Description:   req.Notes,
		Quantity:      qty,
		Location:      item.ApplicationLocation,
		PurchasePrice: item.EstUnitPrice,
		PurchaseDate:  &today,
		CreatedBy:     actorID,
	}
	invID, err := s.inventory.CreateItem(ctx, newItem)
	if err != nil {
		s.logger.Error("Failed to create inventory item", "error", err, "item_id", item.ID)
		return ItemOutcome{ItemID: item.ID, Outcome: OutcomeFailed, Reason: fmt.Sprintf("create inventory: %v", err)}
	}

	if err := s.itemRepo.SetLinkedItem(ctx, item.CompanyID, item.ID, invID); err != nil {
		// The inventory record exists but the back-link did not persist; a
		// retry of the run would create a duplicate record for this item.
		s.logger.Error("Failed to link inventory item", "error", err, "item_id", item.ID, "inventory_item_id", invID)
		return ItemOutcome{ItemID: item.ID, Outcome: OutcomeFailed, Reason: fmt.Sprintf("link inventory record %d: %v", invID, err)}
	}

	return ItemOutcome{ItemID: item.ID, Outcome: OutcomeApplied, Quantity: qty, InventoryItemID: &invID}
}
