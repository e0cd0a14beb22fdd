package workflow

// Status represents a purchase request status in the approval lifecycle
type Status string

const (
	StatusSubmitted         Status = "submitted"
	StatusPMApproved        Status = "pm_approved"
	StatusPresidentApproved Status = "president_approved"
	StatusPurchased         Status = "purchased"
	StatusReceived          Status = "received"
	StatusRejected          Status = "rejected"
)

var validStatuses = map[Status]bool{
	StatusSubmitted:         true,
	StatusPMApproved:        true,
	StatusPresidentApproved: true,
	StatusPurchased:         true,
	StatusReceived:          true,
	StatusRejected:          true,
}

var terminalStatuses = map[Status]bool{
	StatusReceived: true,
	StatusRejected: true,
}

// IsTerminal returns true if the status is terminal (no further transitions allowed)
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a valid request status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// ItemStatus represents the decision state of a single line item
type ItemStatus string

const (
	ItemPending  ItemStatus = "pending"
	ItemApproved ItemStatus = "approved"
	ItemRejected ItemStatus = "rejected"
)

var validItemStatuses = map[ItemStatus]bool{
	ItemPending:  true,
	ItemApproved: true,
	ItemRejected: true,
}

// IsValid returns true if the item status is a valid decision state
func (s ItemStatus) IsValid() bool {
	return validItemStatuses[s]
}

// String returns the string representation of the item status
func (s ItemStatus) String() string {
	return string(s)
}
