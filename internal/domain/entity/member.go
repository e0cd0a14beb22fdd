package entity

import (
	"time"

	"github.com/stokstak/procurement/internal/domain/workflow"
)

// CompanyMember records a user's membership and role within a company.
// The role gate re-validates the role on every core operation.
type CompanyMember struct {
	ID        int64         `json:"id"`
	CompanyID int64         `json:"company_id"`
	UserID    string        `json:"user_id"`
	Role      workflow.Role `json:"role"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}
