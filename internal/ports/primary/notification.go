package primary

import "context"

// NotificationService reads the notification outbox.
type NotificationService interface {
	// ListNotifications lists queued notifications, newest first.
	ListNotifications(ctx context.Context, filters NotificationFilters) ([]*Notification, error)
}

// Notification represents a queued notification at the port boundary.
type Notification struct {
	ID          string
	RecipientID string
	EventType   string
	PromotionID string
	Message     string
	CreatedAt   string
}

// NotificationFilters contains filter options for listing notifications.
type NotificationFilters struct {
	RecipientID string
	PromotionID string
}
