package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/resolveit/complaints-api/internal/models"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
	"github.com/resolveit/complaints-api/pkg/jobs"
)

type notificationStore interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, page, pageSize int) ([]models.Notification, int, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) (int64, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

type notificationUserStore interface {
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// NotificationService fans committed lifecycle events out into per-recipient
// notification rows and serves the recipient-scoped query surface. Delivery
// is at-least-once: a dispatcher retry may write duplicate rows, which
// clients tolerate.
type NotificationService struct {
	store   notificationStore
	users   notificationUserStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService wires the dispatcher.
func NewNotificationService(store notificationStore, users notificationUserStore, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, users: users, metrics: metrics, logger: logger}
}

// Dispatch resolves recipients for one lifecycle event and writes one
// notification row per recipient. Recipients are the assignee, the
// escalation target (or every admin when the escalation is general), and the
// submitter of a non-anonymous complaint for non-internal changes.
func (s *NotificationService) Dispatch(ctx context.Context, event LifecycleEvent) error {
	c := event.Complaint
	notifType, title := s.describe(event)

	recipients := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	add := func(id string) {
		if id == "" || id == models.SystemActor {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}

	if c.AssignedToID != nil {
		add(*c.AssignedToID)
	}

	if event.Kind == EventEscalated {
		if c.EscalatedToID != nil {
			add(*c.EscalatedToID)
		} else {
			admins, err := s.users.ListByRole(ctx, models.RoleAdmin)
			if err != nil {
				return appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to resolve escalation recipients")
			}
			for _, admin := range admins {
				add(admin.ID)
			}
		}
	}

	if !c.Anonymous && c.SubmitterID != nil {
		add(*c.SubmitterID)
	}

	if len(recipients) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]models.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		rowType := notifType
		// General escalations reach admins as alerts, not as the complaint
		// update the participants receive.
		if event.Kind == EventEscalated && c.EscalatedToID == nil &&
			recipientDiffers(recipientID, c.AssignedToID, c.SubmitterID) {
			rowType = models.NotificationEscalationAlert
		}
		rows = append(rows, models.Notification{
			Type:        rowType,
			RecipientID: recipientID,
			ComplaintID: &c.ID,
			Title:       title,
			Message:     s.message(event),
			CreatedAt:   now,
		})
	}

	if err := s.store.CreateBatch(ctx, rows); err != nil {
		return appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to write notifications")
	}
	if s.metrics != nil {
		s.metrics.RecordNotifications(string(event.Kind), len(rows))
	}
	s.logger.Debug("notifications dispatched",
		zap.String("complaint_id", c.ID),
		zap.String("kind", string(event.Kind)),
		zap.Int("recipients", len(rows)))
	return nil
}

func (s *NotificationService) describe(event LifecycleEvent) (models.NotificationType, string) {
	switch event.Kind {
	case EventAssigned:
		return models.NotificationComplaintAssigned, "Complaint assigned"
	case EventEscalated:
		return models.NotificationComplaintEscalated, "Complaint escalated"
	case EventDeadlineUpdated:
		return models.NotificationComplaintDeadline, "Complaint deadline updated"
	default:
		return models.NotificationComplaintStatus, "Complaint status updated"
	}
}

func (s *NotificationService) message(event LifecycleEvent) string {
	c := event.Complaint
	base := fmt.Sprintf("Complaint %s (%s) is now %s.", shortID(c.ID), c.Category, c.Status)
	if event.Comment != "" {
		return base + " " + event.Comment
	}
	return base
}

// List returns a page of notifications for the recipient, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID string, page, pageSize int) ([]models.Notification, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	items, total, err := s.store.ListByRecipient(ctx, recipientID, page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}
	return items, pagination, nil
}

// UnreadCount returns how many unread notifications the recipient has.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.store.UnreadCount(ctx, recipientID)
}

// MarkRead flags one notification as read, scoped to its recipient.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	affected, err := s.store.MarkRead(ctx, id, recipientID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

// MarkAllRead flags every unread notification of the recipient as read and
// returns how many were updated.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.store.MarkAllRead(ctx, recipientID)
}

// DispatchHandler adapts the notification service into a job queue handler.
// The queue retries failed jobs, which gives dispatch its at-least-once
// delivery.
func (s *NotificationService) DispatchHandler() jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(LifecycleEvent)
		if !ok {
			s.logger.Error("dropping job with unexpected payload",
				zap.String("job_id", job.ID), zap.String("type", job.Type))
			return nil
		}
		return s.Dispatch(ctx, event)
	}
}

// QueuePublisher bridges the state machine to the background job queue so
// notification writes happen off the request path.
type QueuePublisher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewQueuePublisher constructs a publisher backed by the given queue.
func NewQueuePublisher(queue *jobs.Queue, logger *zap.Logger) *QueuePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueuePublisher{queue: queue, logger: logger}
}

// Publish enqueues the event for async dispatch. Enqueue failures are logged
// and dropped; the timeline remains the source of truth.
func (p *QueuePublisher) Publish(event LifecycleEvent) {
	job := jobs.Job{
		Type:    "notify:" + string(event.Kind),
		Payload: event,
	}
	if err := p.queue.Enqueue(job); err != nil {
		p.logger.Error("failed to enqueue notification dispatch",
			zap.String("complaint_id", event.Complaint.ID),
			zap.Error(err))
	}
}

func recipientDiffers(id string, others ...*string) bool {
	for _, other := range others {
		if other != nil && *other == id {
			return false
		}
	}
	return true
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
