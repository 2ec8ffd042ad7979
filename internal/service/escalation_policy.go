package service

import (
	"fmt"
	"time"

	"github.com/resolveit/complaints-api/internal/models"
	"github.com/resolveit/complaints-api/pkg/config"
)

// EvaluateEscalation decides whether a complaint should be auto-escalated.
// The rules are checked in strict precedence order and the first match wins,
// so a complaint both overdue and unassigned is always reported as overdue.
// The function is pure: it never touches the clock or the database.
func EvaluateEscalation(c *models.Complaint, cfg config.EscalationConfig, now time.Time) models.EscalationDecision {
	if c.Terminal() || c.IsEscalated {
		return models.EscalationDecision{}
	}

	if c.Deadline != nil && c.Deadline.Before(now) {
		overdue := now.Sub(*c.Deadline)
		priority := models.PriorityHigh
		if overdue > 48*time.Hour {
			priority = models.PriorityCritical
		}
		return models.EscalationDecision{
			IsCandidate: true,
			Reason:      models.ReasonOverdueDeadline,
			Priority:    priority,
			Detail:      fmt.Sprintf("deadline passed %s ago", formatAge(overdue)),
		}
	}

	age := now.Sub(c.CreatedAt)

	if c.AssignedToID == nil && age > hours(cfg.UnassignedThresholdHours) {
		return models.EscalationDecision{
			IsCandidate: true,
			Reason:      models.ReasonUnassignedTimeout,
			Priority:    models.PriorityHigh,
			Detail:      fmt.Sprintf("unassigned for %s", formatAge(age)),
		}
	}

	if threshold, ok := urgencyThreshold(c.Urgency, cfg); ok && age > threshold {
		priority := models.PriorityHigh
		if c.Urgency == models.UrgencyHigh {
			priority = models.PriorityUrgent
		}
		return models.EscalationDecision{
			IsCandidate: true,
			Reason:      models.ReasonUrgencyTimeout,
			Priority:    priority,
			Detail:      fmt.Sprintf("%s urgency complaint unresolved for %s", c.Urgency, formatAge(age)),
		}
	}

	if c.AssignedToID != nil {
		stalled := now.Sub(c.StatusChangedAt)
		if stalled > hours(cfg.StuckThresholdHours) {
			return models.EscalationDecision{
				IsCandidate: true,
				Reason:      models.ReasonStuckInProgress,
				Priority:    models.PriorityHigh,
				Detail:      fmt.Sprintf("no status change for %s since assignment", formatAge(stalled)),
			}
		}
	}

	return models.EscalationDecision{}
}

func urgencyThreshold(u models.Urgency, cfg config.EscalationConfig) (time.Duration, bool) {
	switch u {
	case models.UrgencyHigh:
		return hours(cfg.HighUrgencyThresholdHours), true
	case models.UrgencyMedium:
		return hours(cfg.MediumUrgencyThresholdHours), true
	case models.UrgencyLow:
		return hours(cfg.LowUrgencyThresholdHours), true
	}
	// Unknown urgency falls back to the most conservative threshold.
	return hours(cfg.HighUrgencyThresholdHours), true
}

func hours(h int) time.Duration {
	return time.Duration(h) * time.Hour
}

func formatAge(d time.Duration) string {
	if d >= 24*time.Hour {
		days := int(d.Hours()) / 24
		rem := int(d.Hours()) % 24
		if rem == 0 {
			return fmt.Sprintf("%dd", days)
		}
		return fmt.Sprintf("%dd%dh", days, rem)
	}
	if d >= time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
