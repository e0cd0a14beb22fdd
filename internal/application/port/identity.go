package port

import (
	"context"

	"github.com/stokstak/procurement/internal/domain/workflow"
)

// RoleOracle resolves an actor's role within a company. Callers obtain the
// role before invoking a core operation; the role gate re-validates it against
// the request's current status.
type RoleOracle interface {
	// RoleOf returns the actor's role, or an empty role when the actor has no
	// active membership in the company
	RoleOf(ctx context.Context, companyID int64, actorID string) (workflow.Role, error)
}
