package entity

import "time"

// InventoryItem represents a stocked item record. Fulfillment either
// increments the quantity of an existing record or creates a new one from an
// approved line item.
type InventoryItem struct {
	ID            int64      `json:"id"`
	CompanyID     int64      `json:"company_id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	Quantity      float64    `json:"quantity"`
	Location      *string    `json:"location,omitempty"`
	PurchasePrice *float64   `json:"purchase_price,omitempty"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
}
