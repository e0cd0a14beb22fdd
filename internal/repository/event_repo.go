package repository

import (
	"context"
	"fmt"

	"database/sql"

	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/domain/entity"
	"github.com/stokstak/procurement/pkg/database"
	"go.uber.org/zap"
)

// EventRepository implements port.EventRepository over SQLite. The event table
// is append-only; no update or delete is ever issued.
type EventRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewEventRepository creates a new workflow event repository
func NewEventRepository(db *database.DB, logger *zap.Logger) port.EventRepository {
	return &EventRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a new workflow event
func (r *EventRepository) Create(ctx context.Context, event *entity.WorkflowEvent) error {
	query := `
		INSERT INTO purchase_request_events (
			company_id, request_id, item_id, performed_by, event_type,
			from_status, to_status, comment
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		event.CompanyID,
		event.RequestID,
		event.ItemID,
		event.PerformedBy,
		event.EventType,
		event.FromStatus,
		event.ToStatus,
		event.Comment,
	)
	if err != nil {
		r.logger.Error("Failed to append workflow event", zap.Error(err))
		return fmt.Errorf("failed to append workflow event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	return nil
}

// GetByRequestID retrieves all events for a request sorted by timestamp.
// Timestamps are not globally monotonic across concurrent actors; id breaks
// ties only within a single connection's inserts.
func (r *EventRepository) GetByRequestID(ctx context.Context, companyID, requestID int64) ([]*entity.WorkflowEvent, error) {
	query := `
		SELECT id, company_id, request_id, item_id, performed_by, event_type,
			from_status, to_status, comment, created_at
		FROM purchase_request_events
		WHERE company_id = ? AND request_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID, requestID)
	if err != nil {
		r.logger.Error("Failed to get workflow events", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow events: %w", err)
	}
	defer rows.Close()

	var events []*entity.WorkflowEvent
	for rows.Next() {
		var event entity.WorkflowEvent
		var itemID sql.NullInt64
		var fromStatus, toStatus, comment sql.NullString

		err := rows.Scan(
			&event.ID,
			&event.CompanyID,
			&event.RequestID,
			&itemID,
			&event.PerformedBy,
			&event.EventType,
			&fromStatus,
			&toStatus,
			&comment,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow event: %w", err)
		}

		event.ItemID = nullInt(itemID)
		event.FromStatus = nullString(fromStatus)
		event.ToStatus = nullString(toStatus)
		event.Comment = nullString(comment)
		events = append(events, &event)
	}

	return events, rows.Err()
}
