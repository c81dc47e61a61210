package app

import (
	"context"
	"fmt"

	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/ports/secondary"
)

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	notificationRepo secondary.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo secondary.NotificationRepository) *NotificationServiceImpl {
	return &NotificationServiceImpl{notificationRepo: notificationRepo}
}

// ListNotifications lists queued notifications, newest first.
func (s *NotificationServiceImpl) ListNotifications(ctx context.Context, filters primary.NotificationFilters) ([]*primary.Notification, error) {
	records, err := s.notificationRepo.List(ctx, secondary.NotificationFilters{
		RecipientID: filters.RecipientID,
		PromotionID: filters.PromotionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]*primary.Notification, 0, len(records))
	for _, r := range records {
		out = append(out, &primary.Notification{
			ID:          r.ID,
			RecipientID: r.RecipientID,
			EventType:   r.EventType,
			PromotionID: r.PromotionID,
			Message:     r.Message,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out, nil
}

var _ primary.NotificationService = (*NotificationServiceImpl)(nil)
