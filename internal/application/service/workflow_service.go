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

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// WorkflowService orchestrates request-level status transitions
type WorkflowService interface {
	// RequestTransition moves a request to targetStatus on behalf of the
	// actor, enforcing the role gate and stamping stage attribution
	RequestTransition(ctx context.Context, companyID, requestID int64, actorID string, role workflow.Role, targetStatus workflow.Status, comment string) (*entity.PurchaseRequest, error)
}

type workflowServiceImpl struct {
	requestRepo port.RequestRepository
	eventRepo   port.EventRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	requestRepo port.RequestRepository,
	eventRepo port.EventRepository,
	txManager port.TransactionManager,
	logger Logger,
) WorkflowService {
	return &workflowServiceImpl{
		requestRepo: requestRepo,
		eventRepo:   eventRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// RequestTransition implements WorkflowService
func (s *workflowServiceImpl) RequestTransition(ctx context.Context, companyID, requestID int64, actorID string, role workflow.Role, targetStatus workflow.Status, comment string) (*entity.PurchaseRequest, error) {
	if !targetStatus.IsValid() {
		return nil, apperr.InvalidArgument("unknown target status %q", targetStatus)
	}

	req, err := s.requestRepo.GetByID(ctx, companyID, requestID)
	if err != nil {
		s.logger.Error("Failed to load request", "error", err, "company_id", companyID, "request_id", requestID)
		return nil, fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return nil, apperr.NotFound("purchase request %d not found", requestID)
	}

	from := req.Status
	if !workflow.CanTransition(role, from, targetStatus) {
		return nil, apperr.Forbidden("role %s may not move a request from %s to %s", role, from, targetStatus)
	}
	if targetStatus == workflow.StatusRejected && comment == "" {
		return nil, apperr.InvalidArgument("rejection reason is required")
	}

	stamp := port.StageStamp{
		ActorID: actorID,
		At:      time.Now(),
		Status:  targetStatus,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.requestRepo.UpdateStatusIf(txCtx, companyID, requestID, from, stamp)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !ok {
			// Another actor moved the request after our read; the caller
			// must re-read and retry.
			return apperr.Conflict("request %d is no longer in status %s", requestID, from)
		}

		event := &entity.WorkflowEvent{
			CompanyID:   companyID,
			RequestID:   requestID,
			PerformedBy: actorID,
			EventType:   entity.EventStatusChange,
			FromStatus:  statusPtr(from),
			ToStatus:    statusPtr(targetStatus),
			Comment:     optionalText(comment),
		}
		if err := s.eventRepo.Create(txCtx, event); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to transition request", "error", err,
			"company_id", companyID, "request_id", requestID,
			"from", from.String(), "to", targetStatus.String())
		return nil, err
	}

	s.logger.Info("Request transitioned",
		"company_id", companyID, "request_id", requestID,
		"from", from.String(), "to", targetStatus.String(), "actor_id", actorID)

	updated, err := s.requestRepo.GetByID(ctx, companyID, requestID)
	if err != nil {
		return nil, fmt.Errorf("reload request: %w", err)
	}
	return updated, nil
}

func statusPtr(s workflow.Status) *string {
	v := s.String()
	return &v
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
