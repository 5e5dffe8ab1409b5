package service

import (
	"context"
	"fmt"
	"time"

	"github.com/madadhq/invoice-financing/internal/application/port"
	"github.com/madadhq/invoice-financing/internal/domain/entity"
)

// NotificationService fans workflow messages out to recipients and serves
// each user's notification feed. Dispatch is best-effort and carries no
// retry or deduplication: two identical calls produce two notifications.
type NotificationService interface {
	Notifier
	ListForUser(ctx context.Context, userID int64) ([]*entity.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	logger           Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo port.NotificationRepository, logger Logger) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Dispatch expands the recipient set into one notification record per
// recipient and performs a single batched insert.
func (s *notificationServiceImpl) Dispatch(ctx context.Context, recipients []int64, title, message, link string) error {
	if len(recipients) == 0 || title == "" || message == "" {
		return fmt.Errorf("missing required notification parameters")
	}

	now := time.Now()
	notifications := make([]*entity.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		notifications = append(notifications, &entity.Notification{
			RecipientID: recipientID,
			Title:       title,
			Message:     message,
			Link:        link,
			CreatedAt:   now,
		})
	}

	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		s.logger.Error("Failed to insert notifications",
			"error", err,
			"title", title,
			"recipients", len(recipients))
		return fmt.Errorf("insert notifications: %w", err)
	}

	s.logger.Info("Notifications dispatched", "title", title, "recipients", len(recipients))
	return nil
}

// ListForUser returns the user's notifications newest first and marks
// every unread one as read.
func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID int64) ([]*entity.Notification, error) {
	notifications, err := s.notificationRepo.ListByRecipient(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list notifications", "error", err, "user_id", userID)
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		s.logger.Error("Failed to mark notifications read", "error", err, "user_id", userID)
	}

	return notifications, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", "error", err, "user_id", userID)
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
