package models

import "time"

// EscalationReason codes why a complaint became an escalation candidate.
type EscalationReason string

const (
	ReasonOverdueDeadline   EscalationReason = "OVERDUE_DEADLINE"
	ReasonUnassignedTimeout EscalationReason = "UNASSIGNED_TIMEOUT"
	ReasonUrgencyTimeout    EscalationReason = "URGENCY_TIMEOUT"
	ReasonStuckInProgress   EscalationReason = "STUCK_IN_PROGRESS"
)

// EscalationDecision is the policy engine verdict for a single complaint.
type EscalationDecision struct {
	IsCandidate bool               `json:"is_candidate"`
	Reason      EscalationReason   `json:"reason,omitempty"`
	Priority    EscalationPriority `json:"priority,omitempty"`
	Detail      string             `json:"detail,omitempty"`
}

// SweepTrigger identifies what started a sweep.
type SweepTrigger string

const (
	TriggerScheduled SweepTrigger = "SCHEDULED"
	TriggerManual    SweepTrigger = "MANUAL"
)

// SweepError records a per-candidate failure that did not abort the sweep.
type SweepError struct {
	ComplaintID string `json:"complaint_id"`
	Message     string `json:"message"`
}

// SweepResult summarises one escalation sweep.
type SweepResult struct {
	Trigger    SweepTrigger `json:"trigger"`
	Scanned    int          `json:"scanned"`
	Escalated  int          `json:"escalated"`
	Errors     []SweepError `json:"errors,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// EscalationStats reports aggregate escalation activity.
type EscalationStats struct {
	TotalEscalated       int64 `json:"total_escalated"`
	EscalatedLast24Hours int64 `json:"escalated_last_24_hours"`
	EscalatedLastWeek    int64 `json:"escalated_last_week"`
	PendingEscalation    int   `json:"pending_escalation"`
}
