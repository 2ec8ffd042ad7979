package models

import (
	"strings"
	"time"
)

// ComplaintStatus tracks a complaint through its lifecycle.
type ComplaintStatus string

const (
	StatusNew         ComplaintStatus = "NEW"
	StatusUnderReview ComplaintStatus = "UNDER_REVIEW"
	StatusAssigned    ComplaintStatus = "ASSIGNED"
	StatusInProgress  ComplaintStatus = "IN_PROGRESS"
	StatusCompleted   ComplaintStatus = "COMPLETED"
	StatusEscalated   ComplaintStatus = "ESCALATED"
	StatusResolved    ComplaintStatus = "RESOLVED"
	StatusClosed      ComplaintStatus = "CLOSED"
)

// Terminal reports whether the status freezes workflow mutations.
func (s ComplaintStatus) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// ParseStatus normalises raw status input, accepting legacy aliases.
func ParseStatus(raw string) (ComplaintStatus, bool) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_"))
	switch ComplaintStatus(s) {
	case StatusNew, StatusUnderReview, StatusAssigned, StatusInProgress,
		StatusCompleted, StatusEscalated, StatusResolved, StatusClosed:
		return ComplaintStatus(s), true
	}
	if s == "PENDING" {
		return StatusNew, true
	}
	return "", false
}

// ComplaintCategory classifies the subject of a grievance.
type ComplaintCategory string

const (
	CategoryTechnical       ComplaintCategory = "TECHNICAL"
	CategoryBilling         ComplaintCategory = "BILLING"
	CategoryServiceQuality  ComplaintCategory = "SERVICE_QUALITY"
	CategoryDelivery        ComplaintCategory = "DELIVERY"
	CategoryProductQuality  ComplaintCategory = "PRODUCT_QUALITY"
	CategoryCustomerService ComplaintCategory = "CUSTOMER_SERVICE"
	CategoryWebsite         ComplaintCategory = "WEBSITE"
	CategoryMobileApp       ComplaintCategory = "MOBILE_APP"
	CategorySecurity        ComplaintCategory = "SECURITY"
	CategoryFeedback        ComplaintCategory = "FEEDBACK"
	CategoryOther           ComplaintCategory = "OTHER"
)

// Categories lists every accepted complaint category.
var Categories = []ComplaintCategory{
	CategoryTechnical, CategoryBilling, CategoryServiceQuality, CategoryDelivery,
	CategoryProductQuality, CategoryCustomerService, CategoryWebsite,
	CategoryMobileApp, CategorySecurity, CategoryFeedback, CategoryOther,
}

// Urgency is the submitter-chosen severity, immutable after creation.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// EscalationPriority grades how urgently an escalated complaint needs attention.
type EscalationPriority string

const (
	PriorityHigh     EscalationPriority = "HIGH"
	PriorityUrgent   EscalationPriority = "URGENT"
	PriorityCritical EscalationPriority = "CRITICAL"
)

// EscalationSource distinguishes scheduler-driven escalations from admin actions.
type EscalationSource string

const (
	EscalationAutomated EscalationSource = "AUTOMATED"
	EscalationManual    EscalationSource = "MANUAL"
)

// Complaint is the central grievance record.
type Complaint struct {
	ID          string            `db:"id" json:"id"`
	Category    ComplaintCategory `db:"category" json:"category"`
	Description string            `db:"description" json:"description"`
	Urgency     Urgency           `db:"urgency" json:"urgency"`
	Anonymous   bool              `db:"anonymous" json:"anonymous"`
	SubmitterID *string           `db:"submitter_id" json:"submitter_id,omitempty"`

	Status       ComplaintStatus `db:"status" json:"status"`
	AssignedToID *string         `db:"assigned_to" json:"assigned_to,omitempty"`
	Deadline     *time.Time      `db:"deadline" json:"deadline,omitempty"`

	IsEscalated        bool                `db:"is_escalated" json:"is_escalated"`
	EscalatedToID      *string             `db:"escalated_to" json:"escalated_to,omitempty"`
	EscalatedAt        *time.Time          `db:"escalated_at" json:"escalated_at,omitempty"`
	EscalationSource   *EscalationSource   `db:"escalation_source" json:"escalation_source,omitempty"`
	EscalationReason   *string             `db:"escalation_reason" json:"escalation_reason,omitempty"`
	EscalationPriority *EscalationPriority `db:"escalation_priority" json:"escalation_priority,omitempty"`

	AttachmentPath *string `db:"attachment_path" json:"attachment_path,omitempty"`

	Version         int64     `db:"version" json:"version"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
	StatusChangedAt time.Time `db:"status_changed_at" json:"status_changed_at"`
}

// Terminal reports whether the record is frozen for workflow purposes.
func (c *Complaint) Terminal() bool {
	return c.Status.Terminal()
}

// ClearEscalation resets every escalation field together so the
// is_escalated ⇔ escalated_at invariant cannot be half-applied.
func (c *Complaint) ClearEscalation() {
	c.IsEscalated = false
	c.EscalatedToID = nil
	c.EscalatedAt = nil
	c.EscalationSource = nil
	c.EscalationReason = nil
	c.EscalationPriority = nil
}

// ComplaintFilter captures listing criteria.
type ComplaintFilter struct {
	Status       *ComplaintStatus
	Category     *ComplaintCategory
	Urgency      *Urgency
	SubmitterID  string
	AssignedToID string
	Escalated    *bool
	Unresolved   bool
	Limit        int
	Offset       int
}
