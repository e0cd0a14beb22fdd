package entity

import "time"

// WorkflowEvent is one append-only audit trail row for a purchase request.
// Rows are never mutated or deleted; readers sort by timestamp rather than
// assuming insertion order across concurrent actors.
type WorkflowEvent struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	RequestID   int64     `json:"request_id"`
	ItemID      *int64    `json:"item_id,omitempty"`
	PerformedBy string    `json:"performed_by"`
	EventType   string    `json:"event_type"`
	FromStatus  *string   `json:"from_status,omitempty"`
	ToStatus    *string   `json:"to_status,omitempty"`
	Comment     *string   `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
