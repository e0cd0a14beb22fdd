package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/internal/domain/workflow"
	"github.com/stokstak/procurement/pkg/database"
	"go.uber.org/zap"
)

// RequestRepository implements port.RequestRepository over SQLite
type RequestRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new purchase request repository
func NewRequestRepository(db *database.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

const requestColumns = `
	id, company_id, pur_number, project_ref, requested_by, status,
	needed_by, notes,
	pm_approved_by, pm_approved_at,
	president_approved_by, president_approved_at,
	purchased_by, purchased_at,
	received_by, received_at,
	created_at, updated_at
`

// Create creates a new purchase request
func (r *RequestRepository) Create(ctx context.Context, req *entity.PurchaseRequest) error {
	query := `
		INSERT INTO purchase_requests (
			company_id, pur_number, project_ref, requested_by, status,
			needed_by, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		req.CompanyID,
		req.PurNumber,
		req.ProjectRef,
		req.RequestedBy,
		req.Status.String(),
		req.NeededBy,
		req.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to create purchase request", zap.Error(err))
		return fmt.Errorf("failed to create purchase request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	req.ID = id
	return nil
}

// GetByID retrieves a purchase request by company and id. Returns (nil, nil)
// when no row matches, including on a tenant mismatch.
func (r *RequestRepository) GetByID(ctx context.Context, companyID, id int64) (*entity.PurchaseRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM purchase_requests WHERE company_id = ? AND id = ?`

	req, err := scanRequest(r.db.Executor(ctx).QueryRowContext(ctx, query, companyID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get purchase request", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get purchase request: %w", err)
	}
	return req, nil
}

// UpdateStatusIf moves the request to stamp.Status only if its current status
// still equals expected. The attribution pair for the stage being entered is
// stamped in the same write; rejection has no attribution field.
func (r *RequestRepository) UpdateStatusIf(ctx context.Context, companyID, id int64, expected workflow.Status, stamp port.StageStamp) (bool, error) {
	set := "status = ?, updated_at = ?"
	args := []interface{}{stamp.Status.String(), stamp.At}

	switch stamp.Status {
	case workflow.StatusPMApproved:
		set += ", pm_approved_by = ?, pm_approved_at = ?"
		args = append(args, stamp.ActorID, stamp.At)
	case workflow.StatusPresidentApproved:
		set += ", president_approved_by = ?, president_approved_at = ?"
		args = append(args, stamp.ActorID, stamp.At)
	case workflow.StatusPurchased:
		set += ", purchased_by = ?, purchased_at = ?"
		args = append(args, stamp.ActorID, stamp.At)
	case workflow.StatusReceived:
		set += ", received_by = ?, received_at = ?"
		args = append(args, stamp.ActorID, stamp.At)
	}

	query := `UPDATE purchase_requests SET ` + set + ` WHERE company_id = ? AND id = ? AND status = ?`
	args = append(args, companyID, id, expected.String())

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update request status",
			zap.Int64("id", id),
			zap.String("to", stamp.Status.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to update request status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// List retrieves purchase requests for a company with pagination, newest first
func (r *RequestRepository) List(ctx context.Context, companyID int64, limit, offset int) ([]*entity.PurchaseRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM purchase_requests
		WHERE company_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list purchase requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list purchase requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.PurchaseRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.PurchaseRequest, error) {
	var req entity.PurchaseRequest
	var status string
	var purNumber, projectRef, notes sql.NullString
	var neededBy sql.NullTime
	var pmBy, presBy, purBy, recBy sql.NullString
	var pmAt, presAt, purAt, recAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.CompanyID,
		&purNumber,
		&projectRef,
		&req.RequestedBy,
		&status,
		&neededBy,
		&notes,
		&pmBy, &pmAt,
		&presBy, &presAt,
		&purBy, &purAt,
		&recBy, &recAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = workflow.Status(status)
	req.PurNumber = nullString(purNumber)
	req.ProjectRef = nullString(projectRef)
	req.Notes = nullString(notes)
	req.NeededBy = nullTime(neededBy)
	req.PMApprovedBy = nullString(pmBy)
	req.PMApprovedAt = nullTime(pmAt)
	req.PresidentApprovedBy = nullString(presBy)
	req.PresidentApprovedAt = nullTime(presAt)
	req.PurchasedBy = nullString(purBy)
	req.PurchasedAt = nullTime(purAt)
	req.ReceivedBy = nullString(recBy)
	req.ReceivedAt = nullTime(recAt)

	return &req, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
