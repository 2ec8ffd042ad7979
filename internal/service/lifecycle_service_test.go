package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/complaints-api/internal/models"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
)

type lifecycleStoreStub struct {
	events []*models.TimelineEvent
	err    error
}

func (s *lifecycleStoreStub) UpdateWithTimeline(ctx context.Context, c *models.Complaint, event *models.TimelineEvent) error {
	if s.err != nil {
		return s.err
	}
	c.Version++
	s.events = append(s.events, event)
	return nil
}

type publisherStub struct {
	published []LifecycleEvent
}

func (p *publisherStub) Publish(event LifecycleEvent) {
	p.published = append(p.published, event)
}

func newLifecycleFixture() (*LifecycleService, *lifecycleStoreStub, *publisherStub) {
	store := &lifecycleStoreStub{}
	publisher := &publisherStub{}
	return NewLifecycleService(store, publisher, nil), store, publisher
}

func officerUser() *models.User {
	return &models.User{ID: "officer-1", Username: "officer", FullName: "Officer One", Roles: []string{"OFFICER"}, Active: true}
}

func TestLifecycleAssignTransitionsToAssigned(t *testing.T) {
	svc, store, publisher := newLifecycleFixture()
	deadline := time.Now().UTC().Add(48 * time.Hour)
	c := &models.Complaint{ID: "c-1", Status: models.StatusNew, Version: 1}

	err := svc.Apply(context.Background(), c, TransitionRequest{
		Transition: TransitionAssign,
		ActorID:    "admin-1",
		AssignTo:   officerUser(),
		Deadline:   &deadline,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusAssigned, c.Status)
	require.NotNil(t, c.AssignedToID)
	assert.Equal(t, "officer-1", *c.AssignedToID)
	require.NotNil(t, c.Deadline)
	assert.Equal(t, int64(2), c.Version)

	require.Len(t, store.events, 1)
	assert.Equal(t, string(models.StatusAssigned), store.events[0].Action)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, EventAssigned, publisher.published[0].Kind)
}

func TestLifecycleTerminalStateRejectsMutation(t *testing.T) {
	svc, store, publisher := newLifecycleFixture()

	for _, status := range []models.ComplaintStatus{models.StatusResolved, models.StatusClosed} {
		c := &models.Complaint{ID: "c-1", Status: status, Version: 3}
		err := svc.Apply(context.Background(), c, TransitionRequest{
			Transition: TransitionAssign,
			ActorID:    "admin-1",
			AssignTo:   officerUser(),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, appErrors.ErrTerminalState)
		assert.Equal(t, int64(3), c.Version)
	}
	assert.Empty(t, store.events)
	assert.Empty(t, publisher.published)
}

func TestLifecycleAssignIllegalFromInProgress(t *testing.T) {
	svc, _, _ := newLifecycleFixture()
	c := &models.Complaint{ID: "c-1", Status: models.StatusInProgress}

	err := svc.Apply(context.Background(), c, TransitionRequest{
		Transition: TransitionAssign,
		ActorID:    "admin-1",
		AssignTo:   officerUser(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestLifecycleUnassignClearsAssigneeAndDeadline(t *testing.T) {
	svc, _, _ := newLifecycleFixture()
	officer := "officer-1"
	deadline := time.Now().UTC().Add(24 * time.Hour)
	c := &models.Complaint{ID: "c-1", Status: models.StatusAssigned, AssignedToID: &officer, Deadline: &deadline}

	err := svc.Apply(context.Background(), c, TransitionRequest{Transition: TransitionUnassign, ActorID: "admin-1"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusUnderReview, c.Status)
	assert.Nil(t, c.AssignedToID)
	assert.Nil(t, c.Deadline)
}

func TestLifecycleResolveRequiresCompleted(t *testing.T) {
	svc, _, _ := newLifecycleFixture()

	c := &models.Complaint{ID: "c-1", Status: models.StatusInProgress}
	err := svc.Apply(context.Background(), c, TransitionRequest{Transition: TransitionMarkResolved, ActorID: "admin-1"})
	require.Error(t, err)

	c.Status = models.StatusCompleted
	err = svc.Apply(context.Background(), c, TransitionRequest{Transition: TransitionMarkResolved, ActorID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, c.Status)
}

func TestLifecycleEscalateSetsOverlayAndStatus(t *testing.T) {
	svc, _, publisher := newLifecycleFixture()
	c := &models.Complaint{ID: "c-1", Status: models.StatusInProgress}

	err := svc.Apply(context.Background(), c, TransitionRequest{
		Transition: TransitionEscalate,
		ActorID:    "admin-1",
		Reason:     "no progress",
		Priority:   models.PriorityUrgent,
		Source:     models.EscalationManual,
	})
	require.NoError(t, err)

	assert.True(t, c.IsEscalated)
	require.NotNil(t, c.EscalatedAt)
	require.NotNil(t, c.EscalationPriority)
	assert.Equal(t, models.PriorityUrgent, *c.EscalationPriority)
	assert.Equal(t, models.StatusEscalated, c.Status)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, EventEscalated, publisher.published[0].Kind)
}

func TestLifecycleEscalateKeepStatusLeavesStatus(t *testing.T) {
	svc, _, _ := newLifecycleFixture()
	c := &models.Complaint{ID: "c-1", Status: models.StatusInProgress}

	err := svc.Apply(context.Background(), c, TransitionRequest{
		Transition: TransitionEscalate,
		ActorID:    "admin-1",
		Reason:     "visibility only",
		KeepStatus: true,
	})
	require.NoError(t, err)

	assert.True(t, c.IsEscalated)
	assert.Equal(t, models.StatusInProgress, c.Status)
}

func TestLifecycleDoubleEscalationRejected(t *testing.T) {
	svc, _, _ := newLifecycleFixture()
	now := time.Now().UTC()
	c := &models.Complaint{ID: "c-1", Status: models.StatusEscalated, IsEscalated: true, EscalatedAt: &now}

	err := svc.Apply(context.Background(), c, TransitionRequest{
		Transition: TransitionEscalate,
		ActorID:    "admin-1",
		Reason:     "again",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrAlreadyEscalated)
}

func TestLifecycleDeEscalateRevertsToAssignedWhenAssigned(t *testing.T) {
	svc, _, _ := newLifecycleFixture()
	now := time.Now().UTC()
	officer := "officer-1"
	source := models.EscalationAutomated
	c := &models.Complaint{
		ID:               "c-1",
		Status:           models.StatusEscalated,
		AssignedToID:     &officer,
		IsEscalated:      true,
		EscalatedAt:      &now,
		EscalationSource: &source,
	}

	err := svc.Apply(context.Background(), c, TransitionRequest{Transition: TransitionDeEscalate, ActorID: "admin-1"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusAssigned, c.Status)
	assert.False(t, c.IsEscalated)
	assert.Nil(t, c.EscalatedAt)
	assert.Nil(t, c.EscalationSource)
}

func TestLifecycleDeEscalateRevertsToUnderReviewWhenUnassigned(t *testing.T) {
	svc, _, _ := newLifecycleFixture()
	now := time.Now().UTC()
	c := &models.Complaint{ID: "c-1", Status: models.StatusEscalated, IsEscalated: true, EscalatedAt: &now}

	err := svc.Apply(context.Background(), c, TransitionRequest{Transition: TransitionDeEscalate, ActorID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, c.Status)
}

func TestLifecycleDeEscalateRequiresEscalation(t *testing.T) {
	svc, _, _ := newLifecycleFixture()
	c := &models.Complaint{ID: "c-1", Status: models.StatusAssigned}

	err := svc.Apply(context.Background(), c, TransitionRequest{Transition: TransitionDeEscalate, ActorID: "admin-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotEscalated)
}

func TestLifecycleDeadlineRequiresAssignee(t *testing.T) {
	svc, _, _ := newLifecycleFixture()
	deadline := time.Now().UTC().Add(24 * time.Hour)
	c := &models.Complaint{ID: "c-1", Status: models.StatusUnderReview}

	err := svc.Apply(context.Background(), c, TransitionRequest{
		Transition: TransitionUpdateDeadline,
		ActorID:    "officer-1",
		Deadline:   &deadline,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestLifecycleConflictPropagatesWithoutEvent(t *testing.T) {
	store := &lifecycleStoreStub{err: appErrors.ErrConflict}
	publisher := &publisherStub{}
	svc := NewLifecycleService(store, publisher, nil)

	c := &models.Complaint{ID: "c-1", Status: models.StatusNew}
	err := svc.Apply(context.Background(), c, TransitionRequest{
		Transition: TransitionAssign,
		ActorID:    "admin-1",
		AssignTo:   officerUser(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, publisher.published)
}

func TestLifecycleStatusChangedAtOnlyMovesOnRealChange(t *testing.T) {
	svc, _, _ := newLifecycleFixture()
	before := time.Now().UTC().Add(-10 * time.Hour)
	officer := "officer-1"
	c := &models.Complaint{ID: "c-1", Status: models.StatusAssigned, AssignedToID: &officer, StatusChangedAt: before}

	deadline := time.Now().UTC().Add(24 * time.Hour)
	err := svc.Apply(context.Background(), c, TransitionRequest{
		Transition: TransitionUpdateDeadline,
		ActorID:    "officer-1",
		Deadline:   &deadline,
	})
	require.NoError(t, err)
	assert.Equal(t, before, c.StatusChangedAt)

	err = svc.Apply(context.Background(), c, TransitionRequest{Transition: TransitionMarkCompleted, ActorID: "officer-1"})
	require.NoError(t, err)
	assert.True(t, c.StatusChangedAt.After(before))
}
