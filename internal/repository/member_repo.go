package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/workflow"
	"github.com/stokstak/procurement/pkg/database"
	"go.uber.org/zap"
)

// MemberRepository implements port.RoleOracle over the company_members table
type MemberRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewMemberRepository creates a new company membership repository
func NewMemberRepository(db *database.DB, logger *zap.Logger) port.RoleOracle {
	return &MemberRepository{
		db:     db,
		logger: logger,
	}
}

// RoleOf returns the actor's role within the company, or an empty role when
// the actor has no active membership there
func (r *MemberRepository) RoleOf(ctx context.Context, companyID int64, actorID string) (workflow.Role, error) {
	query := `SELECT role FROM company_members WHERE company_id = ? AND user_id = ? AND is_active = 1`

	var role string
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, companyID, actorID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		r.logger.Error("Failed to resolve role",
			zap.Int64("company_id", companyID),
			zap.String("actor_id", actorID),
			zap.Error(err))
		return "", fmt.Errorf("failed to resolve role: %w", err)
	}
	return workflow.Role(role), nil
}
