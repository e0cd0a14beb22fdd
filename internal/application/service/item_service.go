package service

import (
	"context"
	"fmt"

	"github.com/stokstak/procurement/internal/apperr"
	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/internal/domain/workflow"
)

// DecisionAction identifies the kind of line item decision
type DecisionAction string

const (
	ActionApprove DecisionAction = "approve"
	ActionReject  DecisionAction = "reject"
)

// ItemDecision is a validated per-item decision payload. Approve carries the
// approved quantity (and a resubmit comment when re-approving a rejected
// item); reject carries the mandatory rejection comment.
type ItemDecision struct {
	Action   DecisionAction
	Quantity float64
	Comment  string
}

// ItemService adjudicates individual line items independently of, but
// constrained by, the parent request's stage
type ItemService interface {
	DecideItem(ctx context.Context, companyID, itemID int64, actorID string, role workflow.Role, decision ItemDecision) (*entity.RequestLineItem, error)
}

type itemServiceImpl struct {
	requestRepo port.RequestRepository
	itemRepo    port.ItemRepository
	eventRepo   port.EventRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewItemService creates a new ItemService
func NewItemService(
	requestRepo port.RequestRepository,
	itemRepo port.ItemRepository,
	eventRepo port.EventRepository,
	txManager port.TransactionManager,
	logger Logger,
) ItemService {
	return &itemServiceImpl{
		requestRepo: requestRepo,
		itemRepo:    itemRepo,
		eventRepo:   eventRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// DecideItem implements ItemService
func (s *itemServiceImpl) DecideItem(ctx context.Context, companyID, itemID int64, actorID string, role workflow.Role, decision ItemDecision) (*entity.RequestLineItem, error) {
	if decision.Action != ActionApprove && decision.Action != ActionReject {
		return nil, apperr.InvalidArgument("unknown decision action %q", decision.Action)
	}

	item, err := s.itemRepo.GetByID(ctx, companyID, itemID)
	if err != nil {
		s.logger.Error("Failed to load line item", "error", err, "company_id", companyID, "item_id", itemID)
		return nil, fmt.Errorf("load item: %w", err)
	}
	if item == nil {
		return nil, apperr.NotFound("line item %d not found", itemID)
	}

	req, err := s.requestRepo.GetByID(ctx, companyID, item.RequestID)
	if err != nil {
		return nil, fmt.Errorf("load parent request: %w", err)
	}
	if req == nil {
		return nil, apperr.NotFound("purchase request %d not found", item.RequestID)
	}

	if !workflow.CanDecideItem(role, req.Status) {
		return nil, apperr.Forbidden("role %s may not decide items while the request is %s", role, req.Status)
	}

	upd, eventType, comment, err := buildDecisionUpdate(item, decision)
	if err != nil {
		return nil, err
	}

	prior := item.Status
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.itemRepo.ApplyDecisionIf(txCtx, companyID, itemID, prior, upd)
		if err != nil {
			return fmt.Errorf("apply decision: %w", err)
		}
		if !ok {
			return apperr.Conflict("line item %d is no longer in status %s", itemID, prior)
		}

		event := &entity.WorkflowEvent{
			CompanyID:   companyID,
			RequestID:   item.RequestID,
			ItemID:      &itemID,
			PerformedBy: actorID,
			EventType:   eventType,
			Comment:     optionalText(comment),
		}
		if err := s.eventRepo.Create(txCtx, event); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to decide line item", "error", err,
			"company_id", companyID, "item_id", itemID, "action", string(decision.Action))
		return nil, err
	}

	s.logger.Info("Line item decided",
		"company_id", companyID, "item_id", itemID,
		"action", string(decision.Action), "actor_id", actorID)

	updated, err := s.itemRepo.GetByID(ctx, companyID, itemID)
	if err != nil {
		return nil, fmt.Errorf("reload item: %w", err)
	}
	return updated, nil
}

// buildDecisionUpdate validates the decision against the item and produces the
// fields to write plus the audit event type and comment
func buildDecisionUpdate(item *entity.RequestLineItem, decision ItemDecision) (port.ItemDecisionUpdate, string, string, error) {
	switch decision.Action {
	case ActionApprove:
		if decision.Quantity <= 0 || decision.Quantity > item.Quantity {
			return port.ItemDecisionUpdate{}, "", "", apperr.InvalidArgument(
				"approved quantity must be between 1 and %v", item.Quantity)
		}
		upd := port.ItemDecisionUpdate{
			Status:      workflow.ItemApproved,
			ApprovedQty: &decision.Quantity,
		}
		if item.Status == workflow.ItemRejected {
			// Re-approving a previously rejected item requires an explicit
			// resubmit comment; the earlier reject comment stays for history.
			if decision.Comment == "" {
				return port.ItemDecisionUpdate{}, "", "", apperr.InvalidArgument(
					"a comment is required to re-approve a rejected item")
			}
			upd.ResubmitComment = &decision.Comment
		}
		return upd, entity.EventItemApproved, decision.Comment, nil

	case ActionReject:
		if decision.Comment == "" {
			return port.ItemDecisionUpdate{}, "", "", apperr.InvalidArgument(
				"rejection comment is required")
		}
		zero := 0.0
		upd := port.ItemDecisionUpdate{
			Status:        workflow.ItemRejected,
			ApprovedQty:   &zero,
			RejectComment: &decision.Comment,
		}
		return upd, entity.EventItemRejected, decision.Comment, nil
	}

	return port.ItemDecisionUpdate{}, "", "", apperr.InvalidArgument("unknown decision action %q", decision.Action)
}
