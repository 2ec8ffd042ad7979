package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/resolveit/complaints-api/internal/models"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
)

// Transition names a lifecycle state change.
type Transition string

const (
	TransitionAssign         Transition = "ASSIGN"
	TransitionUnassign       Transition = "UNASSIGN"
	TransitionMarkCompleted  Transition = "MARK_COMPLETED"
	TransitionMarkResolved   Transition = "MARK_RESOLVED"
	TransitionSetStatus      Transition = "SET_STATUS"
	TransitionEscalate       Transition = "ESCALATE"
	TransitionDeEscalate     Transition = "DE_ESCALATE"
	TransitionUpdateDeadline Transition = "UPDATE_DEADLINE"
)

// EventKind categorises lifecycle events for the notification dispatcher.
type EventKind string

const (
	EventAssigned        EventKind = "ASSIGNED"
	EventEscalated       EventKind = "ESCALATED"
	EventStatusChanged   EventKind = "STATUS_CHANGED"
	EventDeadlineUpdated EventKind = "DEADLINE_UPDATED"
)

// LifecycleEvent describes one committed transition. Dispatch happens after
// the transaction commits and is best-effort.
type LifecycleEvent struct {
	Kind      EventKind
	Complaint models.Complaint
	ActorID   string
	Comment   string
}

// EventPublisher receives committed lifecycle events for async fan-out.
type EventPublisher interface {
	Publish(event LifecycleEvent)
}

// EventPublisherFunc allows plain functions as publishers.
type EventPublisherFunc func(event LifecycleEvent)

// Publish implements EventPublisher.
func (f EventPublisherFunc) Publish(event LifecycleEvent) { f(event) }

// TransitionRequest carries everything a transition needs. Which fields are
// read depends on the transition.
type TransitionRequest struct {
	Transition Transition
	ActorID    string // empty means SYSTEM
	ActorName  string
	Comment    string

	// assign / deadline
	AssignTo *models.User
	Deadline *time.Time

	// setStatus
	TargetStatus models.ComplaintStatus

	// escalate
	EscalateTo *models.User
	Reason     string
	Priority   models.EscalationPriority
	Source     models.EscalationSource
	KeepStatus bool

	InternalNote bool
}

type lifecycleStore interface {
	UpdateWithTimeline(ctx context.Context, c *models.Complaint, event *models.TimelineEvent) error
}

// LifecycleService is the single point of truth for complaint status
// transitions. Every human action and every scheduler escalation funnels
// through Apply, which validates transition legality, mutates the snapshot,
// commits it together with exactly one timeline entry, and then publishes
// one lifecycle event.
type LifecycleService struct {
	store     lifecycleStore
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewLifecycleService constructs the state machine.
func NewLifecycleService(store lifecycleStore, publisher EventPublisher, logger *zap.Logger) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = EventPublisherFunc(func(LifecycleEvent) {})
	}
	return &LifecycleService{store: store, publisher: publisher, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// legalSources maps each transition to the statuses it may start from.
// An empty slice means any non-terminal status.
var legalSources = map[Transition][]models.ComplaintStatus{
	TransitionAssign:         {models.StatusNew, models.StatusUnderReview, models.StatusEscalated},
	TransitionUnassign:       {models.StatusAssigned, models.StatusInProgress},
	TransitionMarkCompleted:  {models.StatusAssigned, models.StatusInProgress},
	TransitionMarkResolved:   {models.StatusCompleted},
	TransitionSetStatus:      {},
	TransitionEscalate:       {},
	TransitionDeEscalate:     {},
	TransitionUpdateDeadline: {},
}

// Apply validates and executes the transition on the given snapshot. On
// success the snapshot reflects the committed state, including the advanced
// version. A stale snapshot fails with a conflict and leaves no side effects.
func (s *LifecycleService) Apply(ctx context.Context, c *models.Complaint, req TransitionRequest) error {
	if c.Terminal() {
		return appErrors.Clone(appErrors.ErrTerminalState,
			fmt.Sprintf("complaint is %s and can no longer be modified", c.Status))
	}

	sources, ok := legalSources[req.Transition]
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown transition %s", req.Transition))
	}
	if len(sources) > 0 && !statusIn(c.Status, sources) {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("cannot %s a complaint in status %s", req.Transition, c.Status))
	}

	now := s.now()
	event := &models.TimelineEvent{
		ComplaintID:    c.ID,
		Actor:          req.ActorID,
		Comment:        req.Comment,
		IsInternalNote: req.InternalNote,
		CreatedAt:      now,
	}

	kind, err := s.mutate(c, req, now, event)
	if err != nil {
		return err
	}

	if err := s.store.UpdateWithTimeline(ctx, c, event); err != nil {
		return err
	}

	s.publisher.Publish(LifecycleEvent{
		Kind:      kind,
		Complaint: *c,
		ActorID:   event.Actor,
		Comment:   event.Comment,
	})
	return nil
}

func (s *LifecycleService) mutate(c *models.Complaint, req TransitionRequest, now time.Time, event *models.TimelineEvent) (EventKind, error) {
	switch req.Transition {
	case TransitionAssign:
		if req.AssignTo == nil {
			return "", appErrors.Clone(appErrors.ErrValidation, "assignment requires an officer")
		}
		c.AssignedToID = &req.AssignTo.ID
		if req.Deadline != nil {
			deadline := req.Deadline.UTC()
			c.Deadline = &deadline
		}
		s.setStatus(c, models.StatusAssigned, now)
		event.Action = string(models.StatusAssigned)
		if event.Comment == "" {
			event.Comment = "Complaint assigned to " + req.AssignTo.FullName
		}
		return EventAssigned, nil

	case TransitionUnassign:
		c.AssignedToID = nil
		c.Deadline = nil
		s.setStatus(c, models.StatusUnderReview, now)
		event.Action = string(models.StatusUnderReview)
		if event.Comment == "" {
			event.Comment = "Complaint unassigned"
		}
		return EventStatusChanged, nil

	case TransitionMarkCompleted:
		s.setStatus(c, models.StatusCompleted, now)
		event.Action = string(models.StatusCompleted)
		if event.Comment == "" {
			event.Comment = "Complaint marked as completed"
		}
		return EventStatusChanged, nil

	case TransitionMarkResolved:
		s.setStatus(c, models.StatusResolved, now)
		event.Action = string(models.StatusResolved)
		if event.Comment == "" {
			event.Comment = "Complaint resolved"
		}
		return EventStatusChanged, nil

	case TransitionSetStatus:
		switch req.TargetStatus {
		case models.StatusUnderReview, models.StatusInProgress, models.StatusClosed:
		default:
			return "", appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("status override to %s is not permitted", req.TargetStatus))
		}
		s.setStatus(c, req.TargetStatus, now)
		event.Action = string(req.TargetStatus)
		if event.Comment == "" {
			event.Comment = "Status updated to " + string(req.TargetStatus)
		}
		return EventStatusChanged, nil

	case TransitionEscalate:
		if c.IsEscalated {
			return "", appErrors.ErrAlreadyEscalated
		}
		if req.Reason == "" {
			return "", appErrors.Clone(appErrors.ErrValidation, "escalation requires a reason")
		}
		priority := req.Priority
		if priority == "" {
			priority = models.PriorityHigh
		}
		source := req.Source
		if source == "" {
			source = models.EscalationManual
		}
		escalatedAt := now
		c.IsEscalated = true
		c.EscalatedAt = &escalatedAt
		c.EscalationSource = &source
		c.EscalationReason = &req.Reason
		c.EscalationPriority = &priority
		if req.EscalateTo != nil {
			c.EscalatedToID = &req.EscalateTo.ID
		}
		if !req.KeepStatus {
			s.setStatus(c, models.StatusEscalated, now)
		}
		event.Action = string(models.StatusEscalated)
		if event.Comment == "" {
			event.Comment = fmt.Sprintf("Complaint escalated (%s). Reason: %s", source, req.Reason)
		}
		return EventEscalated, nil

	case TransitionDeEscalate:
		if !c.IsEscalated {
			return "", appErrors.ErrNotEscalated
		}
		c.ClearEscalation()
		if c.AssignedToID != nil {
			s.setStatus(c, models.StatusAssigned, now)
		} else {
			s.setStatus(c, models.StatusUnderReview, now)
		}
		event.Action = string(c.Status)
		if event.Comment == "" {
			event.Comment = "Complaint de-escalated"
		}
		return EventStatusChanged, nil

	case TransitionUpdateDeadline:
		if c.AssignedToID == nil {
			return "", appErrors.Clone(appErrors.ErrValidation, "deadline requires an assigned complaint")
		}
		if req.Deadline == nil {
			return "", appErrors.Clone(appErrors.ErrValidation, "deadline is required")
		}
		deadline := req.Deadline.UTC()
		c.Deadline = &deadline
		event.Action = string(c.Status)
		if event.Comment == "" {
			event.Comment = "Deadline updated to " + deadline.Format(time.RFC3339)
		}
		return EventDeadlineUpdated, nil
	}

	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown transition %s", req.Transition))
}

// setStatus records the transition timestamp only when the status actually
// changes, keeping the stuck-complaint rule honest.
func (s *LifecycleService) setStatus(c *models.Complaint, status models.ComplaintStatus, now time.Time) {
	if c.Status != status {
		c.Status = status
		c.StatusChangedAt = now
	}
}

func statusIn(status models.ComplaintStatus, set []models.ComplaintStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
