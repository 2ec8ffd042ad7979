package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/complaints-api/internal/models"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
)

type notificationStoreStub struct {
	batches      [][]models.Notification
	markReadHits int64
}

func (s *notificationStoreStub) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	s.batches = append(s.batches, notifications)
	return nil
}

func (s *notificationStoreStub) ListByRecipient(ctx context.Context, recipientID string, page, pageSize int) ([]models.Notification, int, error) {
	return nil, 0, nil
}

func (s *notificationStoreStub) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return 0, nil
}

func (s *notificationStoreStub) MarkRead(ctx context.Context, id, recipientID string) (int64, error) {
	return s.markReadHits, nil
}

func (s *notificationStoreStub) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return 3, nil
}

type roleListerStub struct {
	admins []models.User
}

func (s *roleListerStub) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	if role == models.RoleAdmin {
		return s.admins, nil
	}
	return nil, nil
}

func (s *notificationStoreStub) rows() []models.Notification {
	if len(s.batches) == 0 {
		return nil
	}
	return s.batches[len(s.batches)-1]
}

func recipientSet(rows []models.Notification) map[string]models.NotificationType {
	out := make(map[string]models.NotificationType, len(rows))
	for _, row := range rows {
		out[row.RecipientID] = row.Type
	}
	return out
}

func TestNotificationDispatchAssignedReachesAssigneeAndSubmitter(t *testing.T) {
	store := &notificationStoreStub{}
	svc := NewNotificationService(store, &roleListerStub{}, nil, nil)

	officer := "officer-1"
	submitter := "user-1"
	err := svc.Dispatch(context.Background(), LifecycleEvent{
		Kind: EventAssigned,
		Complaint: models.Complaint{
			ID:           "11112222-3333",
			Status:       models.StatusAssigned,
			AssignedToID: &officer,
			SubmitterID:  &submitter,
		},
		ActorID: "admin-1",
	})
	require.NoError(t, err)

	rows := store.rows()
	require.Len(t, rows, 2)
	byRecipient := recipientSet(rows)
	assert.Equal(t, models.NotificationComplaintAssigned, byRecipient["officer-1"])
	assert.Equal(t, models.NotificationComplaintAssigned, byRecipient["user-1"])
}

func TestNotificationDispatchSkipsAnonymousSubmitter(t *testing.T) {
	store := &notificationStoreStub{}
	svc := NewNotificationService(store, &roleListerStub{}, nil, nil)

	officer := "officer-1"
	err := svc.Dispatch(context.Background(), LifecycleEvent{
		Kind: EventStatusChanged,
		Complaint: models.Complaint{
			ID:           "c-1",
			Status:       models.StatusCompleted,
			AssignedToID: &officer,
			Anonymous:    true,
		},
	})
	require.NoError(t, err)

	rows := store.rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "officer-1", rows[0].RecipientID)
}

func TestNotificationDispatchTargetedEscalation(t *testing.T) {
	store := &notificationStoreStub{}
	svc := NewNotificationService(store, &roleListerStub{admins: []models.User{{ID: "admin-1"}}}, nil, nil)

	officer := "officer-1"
	target := "admin-2"
	submitter := "user-1"
	err := svc.Dispatch(context.Background(), LifecycleEvent{
		Kind: EventEscalated,
		Complaint: models.Complaint{
			ID:            "c-1",
			Status:        models.StatusEscalated,
			AssignedToID:  &officer,
			EscalatedToID: &target,
			SubmitterID:   &submitter,
			IsEscalated:   true,
		},
	})
	require.NoError(t, err)

	byRecipient := recipientSet(store.rows())
	require.Len(t, byRecipient, 3)
	// targeted escalations never fall back to the admin broadcast
	_, broadcast := byRecipient["admin-1"]
	assert.False(t, broadcast)
	assert.Equal(t, models.NotificationComplaintEscalated, byRecipient["admin-2"])
}

func TestNotificationDispatchGeneralEscalationAlertsAdmins(t *testing.T) {
	store := &notificationStoreStub{}
	svc := NewNotificationService(store, &roleListerStub{admins: []models.User{
		{ID: "admin-1"}, {ID: "admin-2"},
	}}, nil, nil)

	officer := "officer-1"
	submitter := "user-1"
	err := svc.Dispatch(context.Background(), LifecycleEvent{
		Kind: EventEscalated,
		Complaint: models.Complaint{
			ID:           "c-1",
			Status:       models.StatusEscalated,
			AssignedToID: &officer,
			SubmitterID:  &submitter,
			IsEscalated:  true,
		},
	})
	require.NoError(t, err)

	byRecipient := recipientSet(store.rows())
	require.Len(t, byRecipient, 4)
	assert.Equal(t, models.NotificationEscalationAlert, byRecipient["admin-1"])
	assert.Equal(t, models.NotificationEscalationAlert, byRecipient["admin-2"])
	assert.Equal(t, models.NotificationComplaintEscalated, byRecipient["officer-1"])
	assert.Equal(t, models.NotificationComplaintEscalated, byRecipient["user-1"])
}

func TestNotificationDispatchDeduplicatesRecipients(t *testing.T) {
	store := &notificationStoreStub{}
	svc := NewNotificationService(store, &roleListerStub{}, nil, nil)

	same := "user-1"
	err := svc.Dispatch(context.Background(), LifecycleEvent{
		Kind: EventStatusChanged,
		Complaint: models.Complaint{
			ID:           "c-1",
			Status:       models.StatusInProgress,
			AssignedToID: &same,
			SubmitterID:  &same,
		},
	})
	require.NoError(t, err)
	assert.Len(t, store.rows(), 1)
}

func TestNotificationDispatchNoRecipientsWritesNothing(t *testing.T) {
	store := &notificationStoreStub{}
	svc := NewNotificationService(store, &roleListerStub{}, nil, nil)

	err := svc.Dispatch(context.Background(), LifecycleEvent{
		Kind:      EventStatusChanged,
		Complaint: models.Complaint{ID: "c-1", Anonymous: true},
	})
	require.NoError(t, err)
	assert.Empty(t, store.batches)
}

func TestNotificationMarkReadUnknownIDIsNotFound(t *testing.T) {
	store := &notificationStoreStub{markReadHits: 0}
	svc := NewNotificationService(store, &roleListerStub{}, nil, nil)

	err := svc.MarkRead(context.Background(), "n-1", "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	store.markReadHits = 1
	assert.NoError(t, svc.MarkRead(context.Background(), "n-1", "user-1"))
}

func TestNotificationListNormalisesPaging(t *testing.T) {
	store := &notificationStoreStub{}
	svc := NewNotificationService(store, &roleListerStub{}, nil, nil)

	_, pagination, err := svc.List(context.Background(), "user-1", 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
}
