package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/internal/domain/workflow"
	"github.com/stokstak/procurement/pkg/database"
	"go.uber.org/zap"
)

// ItemRepository implements port.ItemRepository over SQLite
type ItemRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewItemRepository creates a new line item repository
func NewItemRepository(db *database.DB, logger *zap.Logger) port.ItemRepository {
	return &ItemRepository{
		db:     db,
		logger: logger,
	}
}

const itemColumns = `
	id, company_id, request_id, item_type, description, quantity, unit,
	application_location, est_unit_price, status, approved_qty,
	reject_comment, resubmit_comment, linked_item_id, created_at
`

// Create creates a new line item
func (r *ItemRepository) Create(ctx context.Context, item *entity.RequestLineItem) error {
	query := `
		INSERT INTO purchase_request_items (
			company_id, request_id, item_type, description, quantity, unit,
			application_location, est_unit_price, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		item.CompanyID,
		item.RequestID,
		item.ItemType,
		item.Description,
		item.Quantity,
		item.Unit,
		item.ApplicationLocation,
		item.EstUnitPrice,
		item.Status.String(),
	)
	if err != nil {
		r.logger.Error("Failed to create line item", zap.Error(err))
		return fmt.Errorf("failed to create line item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = id
	return nil
}

// GetByID retrieves a line item by company and id. Returns (nil, nil) when no
// row matches.
func (r *ItemRepository) GetByID(ctx context.Context, companyID, id int64) (*entity.RequestLineItem, error) {
	query := `SELECT ` + itemColumns + ` FROM purchase_request_items WHERE company_id = ? AND id = ?`

	item, err := scanItem(r.db.Executor(ctx).QueryRowContext(ctx, query, companyID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get line item", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get line item: %w", err)
	}
	return item, nil
}

// GetByRequestID retrieves all line items for a request in creation order
func (r *ItemRepository) GetByRequestID(ctx context.Context, companyID, requestID int64) ([]*entity.RequestLineItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM purchase_request_items
		WHERE company_id = ? AND request_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID, requestID)
	if err != nil {
		r.logger.Error("Failed to get line items", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	var items []*entity.RequestLineItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ApplyDecisionIf writes a decision only if the item's status still equals
// expected. Comment columns with nil pointers are left untouched so the prior
// history survives later decisions.
func (r *ItemRepository) ApplyDecisionIf(ctx context.Context, companyID, id int64, expected workflow.ItemStatus, upd port.ItemDecisionUpdate) (bool, error) {
	set := "status = ?, approved_qty = ?"
	args := []interface{}{upd.Status.String(), upd.ApprovedQty}

	if upd.RejectComment != nil {
		set += ", reject_comment = ?"
		args = append(args, *upd.RejectComment)
	}
	if upd.ResubmitComment != nil {
		set += ", resubmit_comment = ?"
		args = append(args, *upd.ResubmitComment)
	}

	query := `UPDATE purchase_request_items SET ` + set + ` WHERE company_id = ? AND id = ? AND status = ?`
	args = append(args, companyID, id, expected.String())

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to apply item decision",
			zap.Int64("id", id),
			zap.String("status", upd.Status.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to apply item decision: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// SetLinkedItem records the inventory record created for the line item
func (r *ItemRepository) SetLinkedItem(ctx context.Context, companyID, id, inventoryItemID int64) error {
	query := `UPDATE purchase_request_items SET linked_item_id = ? WHERE company_id = ? AND id = ?`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, inventoryItemID, companyID, id)
	if err != nil {
		r.logger.Error("Failed to set linked inventory item",
			zap.Int64("id", id),
			zap.Int64("inventory_item_id", inventoryItemID),
			zap.Error(err))
		return fmt.Errorf("failed to set linked inventory item: %w", err)
	}
	return nil
}

func scanItem(row rowScanner) (*entity.RequestLineItem, error) {
	var item entity.RequestLineItem
	var status string
	var location, rejectComment, resubmitComment sql.NullString
	var estPrice, approvedQty sql.NullFloat64
	var linkedID sql.NullInt64

	err := row.Scan(
		&item.ID,
		&item.CompanyID,
		&item.RequestID,
		&item.ItemType,
		&item.Description,
		&item.Quantity,
		&item.Unit,
		&location,
		&estPrice,
		&status,
		&approvedQty,
		&rejectComment,
		&resubmitComment,
		&linkedID,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Status = workflow.ItemStatus(status)
	item.ApplicationLocation = nullString(location)
	item.EstUnitPrice = nullFloat(estPrice)
	item.ApprovedQty = nullFloat(approvedQty)
	item.RejectComment = nullString(rejectComment)
	item.ResubmitComment = nullString(resubmitComment)
	item.LinkedItemID = nullInt(linkedID)

	return &item, nil
}
