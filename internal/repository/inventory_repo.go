package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/pkg/database"
	"go.uber.org/zap"
)

// InventoryRepository implements port.InventoryStore over SQLite
type InventoryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *database.DB, logger *zap.Logger) port.InventoryStore {
	return &InventoryRepository{
		db:     db,
		logger: logger,
	}
}

// GetQuantity returns the stocked quantity for an inventory record
func (r *InventoryRepository) GetQuantity(ctx context.Context, companyID, itemID int64) (float64, bool, error) {
	query := `SELECT quantity FROM inventory_items WHERE company_id = ? AND id = ?`

	var qty float64
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, companyID, itemID).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		r.logger.Error("Failed to get inventory quantity", zap.Int64("item_id", itemID), zap.Error(err))
		return 0, false, fmt.Errorf("failed to get inventory quantity: %w", err)
	}
	return qty, true, nil
}

// IncrementQuantity adds delta to the stocked quantity
func (r *InventoryRepository) IncrementQuantity(ctx context.Context, companyID, itemID int64, delta float64) error {
	query := `UPDATE inventory_items SET quantity = quantity + ? WHERE company_id = ? AND id = ?`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, delta, companyID, itemID)
	if err != nil {
		r.logger.Error("Failed to increment inventory quantity", zap.Int64("item_id", itemID), zap.Error(err))
		return fmt.Errorf("failed to increment inventory quantity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("inventory item %d not found", itemID)
	}
	return nil
}

// CreateItem creates a new inventory record and returns its id
func (r *InventoryRepository) CreateItem(ctx context.Context, item *entity.InventoryItem) (int64, error) {
	query := `
		INSERT INTO inventory_items (
			company_id, name, description, quantity, location,
			purchase_price, purchase_date, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		item.CompanyID,
		item.Name,
		item.Description,
		item.Quantity,
		item.Location,
		item.PurchasePrice,
		item.PurchaseDate,
		item.CreatedBy,
	)
	if err != nil {
		r.logger.Error("Failed to create inventory item", zap.Error(err))
		return 0, fmt.Errorf("failed to create inventory item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = id
	return id, nil
}
