package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/complaints-api/internal/models"
	"github.com/resolveit/complaints-api/pkg/config"
)

func policyConfig() config.EscalationConfig {
	return config.EscalationConfig{
		Enabled:                     true,
		UnassignedThresholdHours:    48,
		OverdueThresholdHours:       24,
		StuckThresholdHours:         72,
		HighUrgencyThresholdHours:   24,
		MediumUrgencyThresholdHours: 72,
		LowUrgencyThresholdHours:    120,
		SchedulingInterval:          time.Hour,
	}
}

func baseComplaint(now time.Time) models.Complaint {
	return models.Complaint{
		ID:              "c-1",
		Category:        models.CategoryTechnical,
		Urgency:         models.UrgencyMedium,
		Status:          models.StatusNew,
		CreatedAt:       now.Add(-1 * time.Hour),
		StatusChangedAt: now.Add(-1 * time.Hour),
	}
}

func TestEvaluateEscalationSkipsTerminalAndEscalated(t *testing.T) {
	now := time.Now().UTC()
	cfg := policyConfig()

	resolved := baseComplaint(now)
	resolved.Status = models.StatusResolved
	resolved.CreatedAt = now.Add(-200 * time.Hour)
	assert.False(t, EvaluateEscalation(&resolved, cfg, now).IsCandidate)

	closed := baseComplaint(now)
	closed.Status = models.StatusClosed
	closed.CreatedAt = now.Add(-200 * time.Hour)
	assert.False(t, EvaluateEscalation(&closed, cfg, now).IsCandidate)

	escalated := baseComplaint(now)
	escalated.IsEscalated = true
	escalated.CreatedAt = now.Add(-200 * time.Hour)
	assert.False(t, EvaluateEscalation(&escalated, cfg, now).IsCandidate)
}

func TestEvaluateEscalationOverdueDeadline(t *testing.T) {
	now := time.Now().UTC()
	cfg := policyConfig()

	officer := "officer-1"
	c := baseComplaint(now)
	c.Status = models.StatusInProgress
	c.AssignedToID = &officer
	deadline := now.Add(-1 * time.Hour)
	c.Deadline = &deadline

	decision := EvaluateEscalation(&c, cfg, now)
	require.True(t, decision.IsCandidate)
	assert.Equal(t, models.ReasonOverdueDeadline, decision.Reason)
	assert.Equal(t, models.PriorityHigh, decision.Priority)
}

func TestEvaluateEscalationOverdueBeyondTwoDaysIsCritical(t *testing.T) {
	now := time.Now().UTC()
	cfg := policyConfig()

	officer := "officer-1"
	c := baseComplaint(now)
	c.AssignedToID = &officer
	deadline := now.Add(-49 * time.Hour)
	c.Deadline = &deadline

	decision := EvaluateEscalation(&c, cfg, now)
	require.True(t, decision.IsCandidate)
	assert.Equal(t, models.ReasonOverdueDeadline, decision.Reason)
	assert.Equal(t, models.PriorityCritical, decision.Priority)
}

func TestEvaluateEscalationOverdueWinsOverUnassigned(t *testing.T) {
	now := time.Now().UTC()
	cfg := policyConfig()

	// Both overdue and unassigned past threshold; overdue has precedence.
	c := baseComplaint(now)
	c.CreatedAt = now.Add(-100 * time.Hour)
	deadline := now.Add(-2 * time.Hour)
	c.Deadline = &deadline

	decision := EvaluateEscalation(&c, cfg, now)
	require.True(t, decision.IsCandidate)
	assert.Equal(t, models.ReasonOverdueDeadline, decision.Reason)
}

func TestEvaluateEscalationUnassignedTimeout(t *testing.T) {
	now := time.Now().UTC()
	cfg := policyConfig()

	c := baseComplaint(now)
	c.Urgency = models.UrgencyLow
	c.CreatedAt = now.Add(-49 * time.Hour)

	decision := EvaluateEscalation(&c, cfg, now)
	require.True(t, decision.IsCandidate)
	assert.Equal(t, models.ReasonUnassignedTimeout, decision.Reason)
	assert.Equal(t, models.PriorityHigh, decision.Priority)
}

func TestEvaluateEscalationHighUrgencyTimeout(t *testing.T) {
	now := time.Now().UTC()
	cfg := policyConfig()
	cfg.HighUrgencyThresholdHours = 18

	c := baseComplaint(now)
	c.Urgency = models.UrgencyHigh
	c.CreatedAt = now.Add(-20 * time.Hour)

	decision := EvaluateEscalation(&c, cfg, now)
	require.True(t, decision.IsCandidate)
	assert.Equal(t, models.ReasonUrgencyTimeout, decision.Reason)
	assert.Equal(t, models.PriorityUrgent, decision.Priority)
}

func TestEvaluateEscalationMediumUrgencyTimeoutIsHigh(t *testing.T) {
	now := time.Now().UTC()
	cfg := policyConfig()

	officer := "officer-1"
	c := baseComplaint(now)
	c.AssignedToID = &officer
	c.Urgency = models.UrgencyMedium
	c.CreatedAt = now.Add(-73 * time.Hour)
	c.StatusChangedAt = now.Add(-1 * time.Hour)

	decision := EvaluateEscalation(&c, cfg, now)
	require.True(t, decision.IsCandidate)
	assert.Equal(t, models.ReasonUrgencyTimeout, decision.Reason)
	assert.Equal(t, models.PriorityHigh, decision.Priority)
}

func TestEvaluateEscalationStuckInProgress(t *testing.T) {
	now := time.Now().UTC()
	cfg := policyConfig()

	officer := "officer-1"
	c := baseComplaint(now)
	c.Status = models.StatusInProgress
	c.AssignedToID = &officer
	c.Urgency = models.UrgencyLow
	c.CreatedAt = now.Add(-80 * time.Hour)
	c.StatusChangedAt = now.Add(-73 * time.Hour)

	decision := EvaluateEscalation(&c, cfg, now)
	require.True(t, decision.IsCandidate)
	assert.Equal(t, models.ReasonStuckInProgress, decision.Reason)
}

func TestEvaluateEscalationFreshComplaintNotCandidate(t *testing.T) {
	now := time.Now().UTC()
	c := baseComplaint(now)

	decision := EvaluateEscalation(&c, policyConfig(), now)
	assert.False(t, decision.IsCandidate)
	assert.Empty(t, decision.Reason)
}
