package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stokstak/procurement/internal/apperr"
	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/internal/domain/workflow"
	"github.com/stokstak/procurement/pkg/utils"
)

// LineItemInput is one line item row on a submission
type LineItemInput struct {
	ItemType            string   `json:"item_type"`
	Description         string   `json:"description"`
	Quantity            float64  `json:"quantity"`
	Unit                string   `json:"unit"`
	ApplicationLocation *string  `json:"application_location,omitempty"`
	EstUnitPrice        *float64 `json:"est_unit_price,omitempty"`
}

// CreateRequestInput is the payload for a new purchase request submission
type CreateRequestInput struct {
	ProjectRef *string         `json:"project_ref,omitempty"`
	NeededBy   *time.Time      `json:"needed_by,omitempty"`
	Notes      *string         `json:"notes,omitempty"`
	Items      []LineItemInput `json:"items"`
}

// RequestDetail bundles a request with its line items
type RequestDetail struct {
	Request *entity.PurchaseRequest   `json:"request"`
	Items   []*entity.RequestLineItem `json:"items"`
}

// RequestService handles request submission and read access
type RequestService interface {
	CreateRequest(ctx context.Context, companyID int64, actorID string, input CreateRequestInput) (*RequestDetail, error)
	GetRequest(ctx context.Context, companyID, requestID int64) (*RequestDetail, error)
	ListRequests(ctx context.Context, companyID int64, limit, offset int) ([]*entity.PurchaseRequest, error)
	GetEvents(ctx context.Context, companyID, requestID int64) ([]*entity.WorkflowEvent, error)
}

type requestServiceImpl struct {
	requestRepo port.RequestRepository
	itemRepo    port.ItemRepository
	eventRepo   port.EventRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewRequestService creates a new RequestService
func NewRequestService(
	requestRepo port.RequestRepository,
	itemRepo port.ItemRepository,
	eventRepo port.EventRepository,
	txManager port.TransactionManager,
	logger Logger,
) RequestService {
	return &requestServiceImpl{
		requestRepo: requestRepo,
		itemRepo:    itemRepo,
		eventRepo:   eventRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// CreateRequest creates a request in status submitted together with its line
// items in status pending. Blank line item rows are dropped the way the
// submission form drops them; everything is written in one transaction.
func (s *requestServiceImpl) CreateRequest(ctx context.Context, companyID int64, actorID string, input CreateRequestInput) (*RequestDetail, error) {
	items, err := buildLineItems(companyID, input.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.InvalidArgument("at least one line item with a description and a positive quantity is required")
	}

	req := &entity.PurchaseRequest{
		CompanyID:   companyID,
		ProjectRef:  input.ProjectRef,
		RequestedBy: actorID,
		Status:      workflow.StatusSubmitted,
		NeededBy:    input.NeededBy,
		Notes:       input.Notes,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Create(txCtx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		for _, item := range items {
			item.RequestID = req.ID
			if err := s.itemRepo.Create(txCtx, item); err != nil {
				return fmt.Errorf("create line item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create purchase request", "error", err, "company_id", companyID, "actor_id", actorID)
		return nil, err
	}

	s.logger.Info("Purchase request created",
		"company_id", companyID, "request_id", req.ID,
		"items", len(items), "actor_id", actorID)
	return &RequestDetail{Request: req, Items: items}, nil
}

// GetRequest retrieves a request and its line items
func (s *requestServiceImpl) GetRequest(ctx context.Context, companyID, requestID int64) (*RequestDetail, error) {
	req, err := s.requestRepo.GetByID(ctx, companyID, requestID)
	if err != nil {
		s.logger.Error("Failed to get request", "error", err, "company_id", companyID, "request_id", requestID)
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFound("purchase request %d not found", requestID)
	}

	items, err := s.itemRepo.GetByRequestID(ctx, companyID, requestID)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	return &RequestDetail{Request: req, Items: items}, nil
}

// ListRequests retrieves a paginated list of requests, newest first
func (s *requestServiceImpl) ListRequests(ctx context.Context, companyID int64, limit, offset int) ([]*entity.PurchaseRequest, error) {
	requests, err := s.requestRepo.List(ctx, companyID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list requests", "error", err, "company_id", companyID)
		return nil, err
	}
	return requests, nil
}

// GetEvents retrieves the audit trail for a request, sorted by timestamp
func (s *requestServiceImpl) GetEvents(ctx context.Context, companyID, requestID int64) ([]*entity.WorkflowEvent, error) {
	req, err := s.requestRepo.GetByID(ctx, companyID, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFound("purchase request %d not found", requestID)
	}

	events, err := s.eventRepo.GetByRequestID(ctx, companyID, requestID)
	if err != nil {
		s.logger.Error("Failed to get events", "error", err, "company_id", companyID, "request_id", requestID)
		return nil, err
	}
	return events, nil
}

// buildLineItems validates and normalizes submitted line item rows, dropping
// rows the form would treat as blank
func buildLineItems(companyID int64, inputs []LineItemInput) ([]*entity.RequestLineItem, error) {
	var items []*entity.RequestLineItem
	for _, in := range inputs {
		desc := strings.TrimSpace(in.Description)
		if desc == "" && in.Quantity <= 0 {
			continue
		}
		if desc == "" {
			return nil, apperr.InvalidArgument("line item description is required")
		}
		if err := utils.ValidateQuantity(in.Quantity); err != nil {
			return nil, apperr.InvalidArgument("%s: %v", desc, err)
		}
		if in.EstUnitPrice != nil {
			if err := utils.ValidateUnitPrice(*in.EstUnitPrice); err != nil {
				return nil, apperr.InvalidArgument("%s: %v", desc, err)
			}
		}

		unit := strings.TrimSpace(in.Unit)
		if unit == "" {
			unit = entity.DefaultUnit
		}
		itemType := in.ItemType
		if itemType != entity.LineItemTypeMaterial {
			itemType = entity.LineItemTypeTool
		}

		items = append(items, &entity.RequestLineItem{
			CompanyID:           companyID,
			ItemType:            itemType,
			Description:         utils.SanitizeString(desc),
			Quantity:            in.Quantity,
			Unit:                unit,
			ApplicationLocation: trimOptional(in.ApplicationLocation),
			EstUnitPrice:        in.EstUnitPrice,
			Status:              workflow.ItemPending,
		})
	}
	return items, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
