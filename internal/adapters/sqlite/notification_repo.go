package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/ladder/internal/ports/secondary"
)

// NotificationRepository implements secondary.NotificationRepository as an
// outbox table. Delivery happens outside this process.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Notify queues a notification.
func (r *NotificationRepository) Notify(ctx context.Context, notification *secondary.NotificationRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO notifications (id, recipient_id, event_type, promotion_id, message, created_at)
		 VALUES (?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		notification.ID,
		notification.RecipientID,
		notification.EventType,
		notification.PromotionID,
		notification.Message,
		nullString(notification.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to queue notification: %w", err)
	}
	return nil
}

// List retrieves queued notifications, newest first.
func (r *NotificationRepository) List(ctx context.Context, filters secondary.NotificationFilters) ([]*secondary.NotificationRecord, error) {
	query := "SELECT id, recipient_id, event_type, promotion_id, message, created_at FROM notifications WHERE 1=1"
	args := []any{}

	if filters.RecipientID != "" {
		query += " AND recipient_id = ?"
		args = append(args, filters.RecipientID)
	}

	if filters.PromotionID != "" {
		query += " AND promotion_id = ?"
		args = append(args, filters.PromotionID)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*secondary.NotificationRecord
	for rows.Next() {
		n := &secondary.NotificationRecord{}
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.EventType, &n.PromotionID, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

var _ secondary.NotificationRepository = (*NotificationRepository)(nil)
