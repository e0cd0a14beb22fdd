package entity

// Workflow event types recorded in the audit log
const (
	EventStatusChange = "status_change"
	EventItemApproved = "item_approved"
	EventItemRejected = "item_rejected"
	EventStocked      = "stocked"
)

// Line item types
const (
	LineItemTypeMaterial = "material"
	LineItemTypeTool     = "tool"
)

// DefaultUnit is used when a line item omits its unit of measure
const DefaultUnit = "ea"
