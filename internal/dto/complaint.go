package dto

import (
	"time"

	"github.com/resolveit/complaints-api/internal/models"
)

// SubmitComplaintRequest is the multipart form payload for submissions.
type SubmitComplaintRequest struct {
	Category    string `form:"category" validate:"required,category"`
	Description string `form:"description" validate:"required,min=10"`
	Urgency     string `form:"urgency" validate:"required,urgency"`
}

// AssignComplaintRequest assigns an officer, optionally with a deadline.
type AssignComplaintRequest struct {
	AssignToUserID string     `json:"assign_to_user_id" validate:"required"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Comment        string     `json:"comment,omitempty"`
}

// DeadlineUpdateRequest changes the deadline on an assigned complaint.
type DeadlineUpdateRequest struct {
	Deadline time.Time `json:"deadline" validate:"required"`
	Comment  string    `json:"comment,omitempty"`
}

// StatusUpdateRequest is the admin status override payload.
type StatusUpdateRequest struct {
	Status  string `json:"status" validate:"required"`
	Comment string `json:"comment,omitempty"`
}

// EscalationRequest is the manual escalation payload.
type EscalationRequest struct {
	EscalateToUserID *string `json:"escalate_to_user_id,omitempty"`
	Reason           string  `json:"reason" validate:"required"`
	Priority         string  `json:"priority,omitempty"`
	Comment          string  `json:"comment,omitempty"`
	KeepStatus       bool    `json:"keep_status,omitempty"`
}

// NoteRequest appends a timeline note.
type NoteRequest struct {
	Comment        string `json:"comment" validate:"required"`
	IsInternalNote bool   `json:"is_internal_note"`
}

// ComplaintResponse augments the entity with resolved display names.
type ComplaintResponse struct {
	models.Complaint
	SubmitterName   string `json:"submitter_name,omitempty"`
	AssignedToName  string `json:"assigned_to_name,omitempty"`
	EscalatedToName string `json:"escalated_to_name,omitempty"`
}
