package models

import "time"

// NotificationType categorises notifications for client rendering.
type NotificationType string

const (
	NotificationComplaintAssigned    NotificationType = "COMPLAINT_ASSIGNED"
	NotificationComplaintEscalated   NotificationType = "COMPLAINT_ESCALATED"
	NotificationComplaintStatus      NotificationType = "COMPLAINT_STATUS_UPDATE"
	NotificationComplaintDeadline    NotificationType = "COMPLAINT_DEADLINE_UPDATE"
	NotificationEscalationAlert      NotificationType = "ESCALATION_ALERT"
	NotificationSystemAnnouncement   NotificationType = "SYSTEM_ANNOUNCEMENT"
)

// Notification is a per-recipient message row, immutable except the read flag.
type Notification struct {
	ID          string           `db:"id" json:"id"`
	Type        NotificationType `db:"type" json:"type"`
	RecipientID string           `db:"recipient_id" json:"recipient_id"`
	ComplaintID *string          `db:"complaint_id" json:"complaint_id,omitempty"`
	Title       string           `db:"title" json:"title"`
	Message     string           `db:"message" json:"message"`
	Read        bool             `db:"read" json:"read"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}
