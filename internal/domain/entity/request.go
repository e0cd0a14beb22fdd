package entity

import (
	"time"

	"github.com/stokstak/procurement/internal/domain/workflow"
)

// PurchaseRequest represents a purchase request moving through the approval
// workflow. Every row is partitioned by CompanyID; the attribution pairs are
// stamped once when the corresponding stage is first reached and never cleared.
type PurchaseRequest struct {
	ID          int64           `json:"id"`
	CompanyID   int64           `json:"company_id"`
	PurNumber   *string         `json:"pur_number,omitempty"`
	ProjectRef  *string         `json:"project_ref,omitempty"`
	RequestedBy string          `json:"requested_by"`
	Status      workflow.Status `json:"status"`
	NeededBy    *time.Time      `json:"needed_by,omitempty"`
	Notes       *string         `json:"notes,omitempty"`

	PMApprovedBy        *string    `json:"pm_approved_by,omitempty"`
	PMApprovedAt        *time.Time `json:"pm_approved_at,omitempty"`
	PresidentApprovedBy *string    `json:"president_approved_by,omitempty"`
	PresidentApprovedAt *time.Time `json:"president_approved_at,omitempty"`
	PurchasedBy         *string    `json:"purchased_by,omitempty"`
	PurchasedAt         *time.Time `json:"purchased_at,omitempty"`
	ReceivedBy          *string    `json:"received_by,omitempty"`
	ReceivedAt          *time.Time `json:"received_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestLineItem represents one requested material or tool entry within a
// purchase request, adjudicated independently of the request's own status.
type RequestLineItem struct {
	ID                  int64               `json:"id"`
	CompanyID           int64               `json:"company_id"`
	RequestID           int64               `json:"request_id"`
	ItemType            string              `json:"item_type"`
	Description         string              `json:"description"`
	Quantity            float64             `json:"quantity"`
	Unit                string              `json:"unit"`
	ApplicationLocation *string             `json:"application_location,omitempty"`
	EstUnitPrice        *float64            `json:"est_unit_price,omitempty"`
	Status              workflow.ItemStatus `json:"status"`
	ApprovedQty         *float64            `json:"approved_qty,omitempty"`
	RejectComment       *string             `json:"reject_comment,omitempty"`
	ResubmitComment     *string             `json:"resubmit_comment,omitempty"`
	LinkedItemID        *int64              `json:"linked_item_id,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

// EffectiveQty returns the quantity that fulfillment should project into
// inventory: the approved quantity when a decision recorded one, otherwise the
// requested quantity.
func (i *RequestLineItem) EffectiveQty() float64 {
	if i.ApprovedQty != nil {
		return *i.ApprovedQty
	}
	return i.Quantity
}
