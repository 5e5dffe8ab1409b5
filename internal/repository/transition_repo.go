package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/madadhq/invoice-financing/internal/domain/entity"
)

// TransitionLogRepository handles audit trail database operations
type TransitionLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTransitionLogRepository creates a new transition log repository
func NewTransitionLogRepository(db *sql.DB, logger *zap.Logger) *TransitionLogRepository {
	return &TransitionLogRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new transition record
func (r *TransitionLogRepository) Create(ctx context.Context, record *entity.TransitionRecord) error {
	query := `
		INSERT INTO application_transitions (
			application_id, event_type, actor_id, actor_role, from_status, to_status
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		record.ApplicationID,
		record.EventType,
		record.ActorID,
		record.ActorRole,
		record.FromStatus,
		record.ToStatus,
	)
	if err != nil {
		r.logger.Error("Failed to create transition record",
			zap.Int64("application_id", record.ApplicationID),
			zap.Error(err))
		return fmt.Errorf("failed to create transition record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// ListByApplication retrieves an application's transition records in
// chronological order
func (r *TransitionLogRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*entity.TransitionRecord, error) {
	query := `
		SELECT id, application_id, event_type, actor_id, actor_role, from_status, to_status, created_at
		FROM application_transitions
		WHERE application_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to list transition records",
			zap.Int64("application_id", applicationID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list transition records: %w", err)
	}
	defer rows.Close()

	var records []*entity.TransitionRecord
	for rows.Next() {
		var rec entity.TransitionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.ApplicationID,
			&rec.EventType,
			&rec.ActorID,
			&rec.ActorRole,
			&rec.FromStatus,
			&rec.ToStatus,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transition record: %w", err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
