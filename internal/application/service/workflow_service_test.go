package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stokstak/procurement/internal/apperr"
	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/internal/domain/workflow"
)

func newWorkflowFixture(req *entity.PurchaseRequest) (*mockRequestRepo, *mockEventRepo, WorkflowService) {
	requestRepo := &mockRequestRepo{
		GetByIDFn: func(ctx context.Context, companyID, id int64) (*entity.PurchaseRequest, error) {
			if req != nil && req.CompanyID == companyID && req.ID == id {
				return req, nil
			}
			return nil, nil
		},
		UpdateStatusIfFn: func(ctx context.Context, companyID, id int64, expected workflow.Status, stamp port.StageStamp) (bool, error) {
			if req.Status != expected {
				return false, nil
			}
			req.Status = stamp.Status
			return true, nil
		},
	}
	eventRepo := &mockEventRepo{}
	svc := NewWorkflowService(requestRepo, eventRepo, passthroughTx{}, noopLogger{})
	return requestRepo, eventRepo, svc
}

func TestRequestTransitionHappyPath(t *testing.T) {
	req := &entity.PurchaseRequest{ID: 1, CompanyID: 10, Status: workflow.StatusSubmitted}
	_, eventRepo, svc := newWorkflowFixture(req)

	updated, err := svc.RequestTransition(context.Background(), 10, 1, "pm-user", workflow.RolePM, workflow.StatusPMApproved, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != workflow.StatusPMApproved {
		t.Errorf("status = %s, want pm_approved", updated.Status)
	}

	if len(eventRepo.created) != 1 {
		t.Fatalf("expected 1 event, got %d", len(eventRepo.created))
	}
	ev := eventRepo.created[0]
	if ev.EventType != entity.EventStatusChange {
		t.Errorf("event type = %s, want status_change", ev.EventType)
	}
	if ev.FromStatus == nil || *ev.FromStatus != "submitted" {
		t.Errorf("from_status = %v, want submitted", ev.FromStatus)
	}
	if ev.ToStatus == nil || *ev.ToStatus != "pm_approved" {
		t.Errorf("to_status = %v, want pm_approved", ev.ToStatus)
	}
	if ev.PerformedBy != "pm-user" {
		t.Errorf("performed_by = %s, want pm-user", ev.PerformedBy)
	}
}

func TestRequestTransitionForbiddenRole(t *testing.T) {
	req := &entity.PurchaseRequest{ID: 1, CompanyID: 10, Status: workflow.StatusSubmitted}
	_, eventRepo, svc := newWorkflowFixture(req)

	_, err := svc.RequestTransition(context.Background(), 10, 1, "pres", workflow.RolePresident, workflow.StatusPMApproved, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if req.Status != workflow.StatusSubmitted {
		t.Errorf("denied transition must not change status, got %s", req.Status)
	}
	if len(eventRepo.created) != 0 {
		t.Errorf("denied transition must not append events, got %d", len(eventRepo.created))
	}
}

func TestRequestTransitionSkipStageDenied(t *testing.T) {
	req := &entity.PurchaseRequest{ID: 1, CompanyID: 10, Status: workflow.StatusSubmitted}
	_, _, svc := newWorkflowFixture(req)

	_, err := svc.RequestTransition(context.Background(), 10, 1, "pm-user", workflow.RolePM, workflow.StatusPresidentApproved, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for stage skip, got %v", err)
	}
}

func TestRequestTransitionRejectionRequiresComment(t *testing.T) {
	req := &entity.PurchaseRequest{ID: 1, CompanyID: 10, Status: workflow.StatusSubmitted}
	_, _, svc := newWorkflowFixture(req)

	_, err := svc.RequestTransition(context.Background(), 10, 1, "pm-user", workflow.RolePM, workflow.StatusRejected, "")
	if !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	updated, err := svc.RequestTransition(context.Background(), 10, 1, "pm-user", workflow.RolePM, workflow.StatusRejected, "over budget")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != workflow.StatusRejected {
		t.Errorf("status = %s, want rejected", updated.Status)
	}
}

func TestRequestTransitionOutOfTerminal(t *testing.T) {
	req := &entity.PurchaseRequest{ID: 1, CompanyID: 10, Status: workflow.StatusRejected}
	_, _, svc := newWorkflowFixture(req)

	_, err := svc.RequestTransition(context.Background(), 10, 1, "pm-user", workflow.RolePM, workflow.StatusPMApproved, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden out of terminal status, got %v", err)
	}
}

func TestRequestTransitionNotFound(t *testing.T) {
	_, _, svc := newWorkflowFixture(nil)

	_, err := svc.RequestTransition(context.Background(), 10, 99, "pm-user", workflow.RolePM, workflow.StatusPMApproved, "")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRequestTransitionWrongTenant(t *testing.T) {
	req := &entity.PurchaseRequest{ID: 1, CompanyID: 10, Status: workflow.StatusSubmitted}
	_, _, svc := newWorkflowFixture(req)

	_, err := svc.RequestTransition(context.Background(), 11, 1, "pm-user", workflow.RolePM, workflow.StatusPMApproved, "")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("tenant mismatch must read as not found, got %v", err)
	}
}

func TestRequestTransitionConflict(t *testing.T) {
	req := &entity.PurchaseRequest{ID: 1, CompanyID: 10, Status: workflow.StatusSubmitted}
	requestRepo, eventRepo, svc := newWorkflowFixture(req)

	// Another actor moves the request between our read and our write
	requestRepo.UpdateStatusIfFn = func(ctx context.Context, companyID, id int64, expected workflow.Status, stamp port.StageStamp) (bool, error) {
		return false, nil
	}

	_, err := svc.RequestTransition(context.Background(), 10, 1, "pm-user", workflow.RolePM, workflow.StatusPMApproved, "")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(eventRepo.created) != 0 {
		t.Errorf("conflicted transition must not append events, got %d", len(eventRepo.created))
	}
}

func TestRequestTransitionInvalidTarget(t *testing.T) {
	req := &entity.PurchaseRequest{ID: 1, CompanyID: 10, Status: workflow.StatusSubmitted}
	_, _, svc := newWorkflowFixture(req)

	_, err := svc.RequestTransition(context.Background(), 10, 1, "pm-user", workflow.RolePM, workflow.Status("shipped"), "")
	if !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestRequestTransitionEventAppendFailure(t *testing.T) {
	req := &entity.PurchaseRequest{ID: 1, CompanyID: 10, Status: workflow.StatusSubmitted}
	_, eventRepo, svc := newWorkflowFixture(req)
	eventRepo.CreateFn = func(ctx context.Context, event *entity.WorkflowEvent) error {
		return errors.New("disk full")
	}

	_, err := svc.RequestTransition(context.Background(), 10, 1, "pm-user", workflow.RolePM, workflow.StatusPMApproved, "")
	if err == nil {
		t.Fatal("expected error when event append fails")
	}
	if len(eventRepo.created) != 0 {
		t.Errorf("failed append must not record events, got %d", len(eventRepo.created))
	}
}
