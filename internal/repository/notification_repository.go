package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/resolveit/complaints-api/internal/models"
)

// NotificationRepository persists per-recipient notification rows.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts one row per recipient. Rows are immutable except the
// read flag.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range notifications {
		if notifications[i].ID == "" {
			notifications[i].ID = uuid.NewString()
		}
		if notifications[i].CreatedAt.IsZero() {
			notifications[i].CreatedAt = now
		}
	}
	const query = `INSERT INTO notifications
	(id, type, recipient_id, complaint_id, title, message, read, created_at)
	VALUES (:id, :type, :recipient_id, :complaint_id, :title, :message, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notifications); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}
	return nil
}

// ListByRecipient returns a page of the recipient's notifications, newest
// first, along with the total count for pagination.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, page, pageSize int) ([]models.Notification, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`, recipientID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	const query = `SELECT id, type, recipient_id, complaint_id, title, message, read, created_at
	FROM notifications WHERE recipient_id = $1
	ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, recipientID, pageSize, (page-1)*pageSize); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, total, nil
}

// UnreadCount returns the recipient's unread notification count.
func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	const query = `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = false`
	if err := r.db.GetContext(ctx, &count, query, recipientID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flips the read flag, scoped to the requesting recipient so one
// user cannot acknowledge another's notifications. Returns how many rows
// matched.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) (int64, error) {
	const query = `UPDATE notifications SET read = true WHERE id = $1 AND recipient_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark notification read: %w", err)
	}
	return affected, nil
}

// MarkAllRead acknowledges every unread notification for the recipient.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	const query = `UPDATE notifications SET read = true WHERE recipient_id = $1 AND read = false`
	result, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return affected, nil
}
