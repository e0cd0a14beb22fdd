package port

import (
	"context"

	"github.com/stokstak/procurement/internal/domain/entity"
)

// InventoryStore is the collaborator interface fulfillment reconciles into.
// Implementations must scope every call by company id; the processor never
// issues a cross-tenant read or write.
type InventoryStore interface {
	// GetQuantity returns the current stocked quantity; found is false when
	// no record exists for the company/id pair
	GetQuantity(ctx context.Context, companyID, itemID int64) (qty float64, found bool, err error)

	// IncrementQuantity adds delta to the stocked quantity, never overwriting
	IncrementQuantity(ctx context.Context, companyID, itemID int64, delta float64) error

	// CreateItem creates a new inventory record and returns its id
	CreateItem(ctx context.Context, item *entity.InventoryItem) (int64, error)
}
