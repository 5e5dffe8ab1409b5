package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/madadhq/invoice-financing/internal/domain/entity"
)

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts all notifications in one transaction. Either every
// row lands or none do.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*entity.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notifications (recipient_id, title, message, link, is_read)
		VALUES (?, ?, ?, ?, 0)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range notifications {
		result, err := stmt.ExecContext(ctx, n.RecipientID, n.Title, n.Message, n.Link)
		if err != nil {
			r.logger.Error("Failed to insert notification", zap.Int64("recipient_id", n.RecipientID), zap.Error(err))
			return fmt.Errorf("failed to insert notification: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		n.ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notifications: %w", err)
	}
	return nil
}

// ListByRecipient retrieves a recipient's notifications, newest first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int64) ([]*entity.Notification, error) {
	query := `
		SELECT id, recipient_id, title, message, link, is_read, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.Int64("recipient_id", recipientID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Title,
			&n.Message,
			&n.Link,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// CountUnread returns the number of unread notifications for a recipient
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0`

	var count int
	if err := r.db.QueryRowContext(ctx, query, recipientID).Scan(&count); err != nil {
		r.logger.Error("Failed to count unread notifications", zap.Int64("recipient_id", recipientID), zap.Error(err))
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAllRead marks every notification for a recipient as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int64) error {
	query := `UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0`

	if _, err := r.db.ExecContext(ctx, query, recipientID); err != nil {
		r.logger.Error("Failed to mark notifications read", zap.Int64("recipient_id", recipientID), zap.Error(err))
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
