package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/resolveit/complaints-api/internal/dto"
	"github.com/resolveit/complaints-api/internal/models"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
)

type complaintRepository interface {
	Create(ctx context.Context, c *models.Complaint) error
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
}

type timelineRepository interface {
	Append(ctx context.Context, event *models.TimelineEvent) error
	ListByComplaint(ctx context.Context, complaintID string, includeInternal bool) ([]models.TimelineEvent, error)
}

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListByRoles(ctx context.Context, roles ...models.UserRole) ([]models.User, error)
}

type attachmentStorage interface {
	SaveAttachment(header *multipart.FileHeader) (string, error)
	Open(filename string) (*os.File, error)
}

// ComplaintService implements complaint intake, the role-scoped query
// surface, and every workflow operation. All workflow mutations are
// delegated to the lifecycle state machine.
type ComplaintService struct {
	repo      complaintRepository
	timeline  timelineRepository
	users     userDirectory
	storage   attachmentStorage
	lifecycle lifecycleApplier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewComplaintService instantiates ComplaintService and registers the
// domain enum validations.
func NewComplaintService(
	repo complaintRepository,
	timeline timelineRepository,
	users userDirectory,
	storage attachmentStorage,
	lifecycle lifecycleApplier,
	validate *validator.Validate,
	logger *zap.Logger,
) *ComplaintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerComplaintValidations(validate)
	return &ComplaintService{
		repo:      repo,
		timeline:  timeline,
		users:     users,
		storage:   storage,
		lifecycle: lifecycle,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func registerComplaintValidations(v *validator.Validate) {
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		raw := models.ComplaintCategory(strings.ToUpper(fl.Field().String()))
		for _, c := range models.Categories {
			if c == raw {
				return true
			}
		}
		return false
	})
	_ = v.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
		switch models.Urgency(strings.ToUpper(fl.Field().String())) {
		case models.UrgencyLow, models.UrgencyMedium, models.UrgencyHigh:
			return true
		}
		return false
	})
}

// Submit files a new complaint. A nil claims value files it anonymously.
// The attachment is optional and validated by the storage layer.
func (s *ComplaintService) Submit(ctx context.Context, req dto.SubmitComplaintRequest, attachment *multipart.FileHeader, claims *models.JWTClaims) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}

	complaint := models.Complaint{
		Category:    models.ComplaintCategory(strings.ToUpper(req.Category)),
		Description: strings.TrimSpace(req.Description),
		Urgency:     models.Urgency(strings.ToUpper(req.Urgency)),
		Status:      models.StatusNew,
		Anonymous:   claims == nil,
	}
	if claims != nil {
		submitterID := claims.UserID
		complaint.SubmitterID = &submitterID
	}

	if attachment != nil {
		path, err := s.storage.SaveAttachment(attachment)
		if err != nil {
			return nil, err
		}
		complaint.AttachmentPath = &path
	}

	if err := s.repo.Create(ctx, &complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}

	actor := models.SystemActor
	if claims != nil {
		actor = claims.UserID
	}
	if err := s.timeline.Append(ctx, &models.TimelineEvent{
		ComplaintID: complaint.ID,
		Actor:       actor,
		Action:      string(models.StatusNew),
		Comment:     "Complaint submitted",
	}); err != nil {
		s.logger.Warn("failed to record submission timeline entry",
			zap.String("complaint_id", complaint.ID), zap.Error(err))
	}

	s.logger.Info("complaint submitted",
		zap.String("complaint_id", complaint.ID),
		zap.String("category", string(complaint.Category)),
		zap.Bool("anonymous", complaint.Anonymous))
	return &complaint, nil
}

// GetByID loads a complaint and enforces view access: admins and officers
// see everything, submitters only their own records.
func (s *ComplaintService) GetByID(ctx context.Context, id string, claims *models.JWTClaims) (*models.Complaint, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(claims, complaint) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this complaint")
	}
	return complaint, nil
}

// Detail returns the complaint with submitter, assignee and escalation target
// display names resolved. Name lookups are best effort; a missing user leaves
// the name empty rather than failing the read.
func (s *ComplaintService) Detail(ctx context.Context, id string, claims *models.JWTClaims) (*dto.ComplaintResponse, error) {
	complaint, err := s.GetByID(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	detail := &dto.ComplaintResponse{Complaint: *complaint}
	if !complaint.Anonymous && complaint.SubmitterID != nil {
		detail.SubmitterName = s.displayName(ctx, *complaint.SubmitterID)
	}
	if complaint.AssignedToID != nil {
		detail.AssignedToName = s.displayName(ctx, *complaint.AssignedToID)
	}
	if complaint.EscalatedToID != nil {
		detail.EscalatedToName = s.displayName(ctx, *complaint.EscalatedToID)
	}
	return detail, nil
}

func (s *ComplaintService) displayName(ctx context.Context, userID string) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.FullName
}

// Timeline returns the complaint history. Internal notes are only visible
// to officers and admins.
func (s *ComplaintService) Timeline(ctx context.Context, id string, claims *models.JWTClaims) ([]models.TimelineEvent, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(claims, complaint) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this complaint")
	}
	includeInternal := isStaff(claims)
	return s.timeline.ListByComplaint(ctx, id, includeInternal)
}

// Attachment opens the stored attachment after the same access check as a
// complaint view.
func (s *ComplaintService) Attachment(ctx context.Context, id string, claims *models.JWTClaims) (*os.File, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(claims, complaint) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this complaint")
	}
	if complaint.AttachmentPath == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint has no attachment")
	}
	return s.storage.Open(*complaint.AttachmentPath)
}

// ListMy returns the authenticated submitter's complaints.
func (s *ComplaintService) ListMy(ctx context.Context, claims *models.JWTClaims, filter models.ComplaintFilter) ([]models.Complaint, error) {
	filter.SubmitterID = claims.UserID
	return s.repo.List(ctx, filter)
}

// ListAssigned returns complaints assigned to the requesting officer.
func (s *ComplaintService) ListAssigned(ctx context.Context, claims *models.JWTClaims, filter models.ComplaintFilter) ([]models.Complaint, error) {
	filter.AssignedToID = claims.UserID
	return s.repo.List(ctx, filter)
}

// ListAll returns complaints matching the filter. Admin and officer only,
// enforced at the route.
func (s *ComplaintService) ListAll(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	return s.repo.List(ctx, filter)
}

// ListEscalated returns currently escalated complaints.
func (s *ComplaintService) ListEscalated(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	escalated := true
	filter.Escalated = &escalated
	return s.repo.List(ctx, filter)
}

// ListUnresolved returns every non-terminal complaint, the admin worklist.
func (s *ComplaintService) ListUnresolved(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	filter.Unresolved = true
	filter.Status = nil
	return s.repo.List(ctx, filter)
}

// Officers lists users eligible for assignment and escalation targeting.
func (s *ComplaintService) Officers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListByRoles(ctx, models.RoleOfficer, models.RoleAdmin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list officers")
	}
	return users, nil
}

// Assign hands the complaint to an officer, optionally with a deadline.
func (s *ComplaintService) Assign(ctx context.Context, id string, req dto.AssignComplaintRequest, claims *models.JWTClaims) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if req.Deadline != nil && !req.Deadline.After(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "deadline must be in the future")
	}

	officer, err := s.users.FindByID(ctx, req.AssignToUserID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignee")
	}
	if !officer.CanBeAssigned() {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("user %s cannot be assigned complaints", officer.Username))
	}

	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.Apply(ctx, complaint, TransitionRequest{
		Transition: TransitionAssign,
		ActorID:    claims.UserID,
		ActorName:  claims.FullName,
		Comment:    req.Comment,
		AssignTo:   officer,
		Deadline:   req.Deadline,
	}); err != nil {
		return nil, err
	}
	return complaint, nil
}

// Unassign reverts the complaint to review, clearing assignee and deadline.
func (s *ComplaintService) Unassign(ctx context.Context, id string, claims *models.JWTClaims) (*models.Complaint, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.Apply(ctx, complaint, TransitionRequest{
		Transition: TransitionUnassign,
		ActorID:    claims.UserID,
		ActorName:  claims.FullName,
	}); err != nil {
		return nil, err
	}
	return complaint, nil
}

// UpdateDeadline moves the deadline on an assigned, non-terminal complaint.
func (s *ComplaintService) UpdateDeadline(ctx context.Context, id string, req dto.DeadlineUpdateRequest, claims *models.JWTClaims) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid deadline payload")
	}
	if !req.Deadline.After(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "deadline must be in the future")
	}

	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireAssigneeOrAdmin(claims, complaint); err != nil {
		return nil, err
	}

	deadline := req.Deadline
	if err := s.lifecycle.Apply(ctx, complaint, TransitionRequest{
		Transition: TransitionUpdateDeadline,
		ActorID:    claims.UserID,
		ActorName:  claims.FullName,
		Comment:    req.Comment,
		Deadline:   &deadline,
	}); err != nil {
		return nil, err
	}
	return complaint, nil
}

// MarkCompleted is the assigned officer declaring the work done.
func (s *ComplaintService) MarkCompleted(ctx context.Context, id, comment string, claims *models.JWTClaims) (*models.Complaint, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireAssigneeOrAdmin(claims, complaint); err != nil {
		return nil, err
	}
	if err := s.lifecycle.Apply(ctx, complaint, TransitionRequest{
		Transition: TransitionMarkCompleted,
		ActorID:    claims.UserID,
		ActorName:  claims.FullName,
		Comment:    comment,
	}); err != nil {
		return nil, err
	}
	return complaint, nil
}

// MarkResolved is the admin sign-off that closes out a completed complaint.
func (s *ComplaintService) MarkResolved(ctx context.Context, id, comment string, claims *models.JWTClaims) (*models.Complaint, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.Apply(ctx, complaint, TransitionRequest{
		Transition: TransitionMarkResolved,
		ActorID:    claims.UserID,
		ActorName:  claims.FullName,
		Comment:    comment,
	}); err != nil {
		return nil, err
	}
	return complaint, nil
}

// SetStatus is the admin override for exceptional corrections.
func (s *ComplaintService) SetStatus(ctx context.Context, id string, req dto.StatusUpdateRequest, claims *models.JWTClaims) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	status, ok := models.ParseStatus(req.Status)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+req.Status)
	}

	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.Apply(ctx, complaint, TransitionRequest{
		Transition:   TransitionSetStatus,
		ActorID:      claims.UserID,
		ActorName:    claims.FullName,
		Comment:      req.Comment,
		TargetStatus: status,
	}); err != nil {
		return nil, err
	}
	return complaint, nil
}

// Escalate raises a manual escalation, optionally targeting a specific
// officer or admin. Without a target the escalation is general and reaches
// every admin.
func (s *ComplaintService) Escalate(ctx context.Context, id string, req dto.EscalationRequest, claims *models.JWTClaims) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid escalation payload")
	}

	priority := models.PriorityHigh
	if req.Priority != "" {
		switch models.EscalationPriority(strings.ToUpper(req.Priority)) {
		case models.PriorityHigh, models.PriorityUrgent, models.PriorityCritical:
			priority = models.EscalationPriority(strings.ToUpper(req.Priority))
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown escalation priority "+req.Priority)
		}
	}

	var target *models.User
	if req.EscalateToUserID != nil {
		user, err := s.users.FindByID(ctx, *req.EscalateToUserID)
		if err != nil {
			if errors.Is(err, appErrors.ErrNotFound) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "escalation target not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load escalation target")
		}
		if !user.CanBeAssigned() {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("user %s cannot receive escalations", user.Username))
		}
		target = user
	}

	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.Apply(ctx, complaint, TransitionRequest{
		Transition: TransitionEscalate,
		ActorID:    claims.UserID,
		ActorName:  claims.FullName,
		Comment:    req.Comment,
		EscalateTo: target,
		Reason:     req.Reason,
		Priority:   priority,
		Source:     models.EscalationManual,
		KeepStatus: req.KeepStatus,
	}); err != nil {
		return nil, err
	}
	return complaint, nil
}

// DeEscalate clears the escalation overlay and reverts the status.
func (s *ComplaintService) DeEscalate(ctx context.Context, id, comment string, claims *models.JWTClaims) (*models.Complaint, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.Apply(ctx, complaint, TransitionRequest{
		Transition: TransitionDeEscalate,
		ActorID:    claims.UserID,
		ActorName:  claims.FullName,
		Comment:    comment,
	}); err != nil {
		return nil, err
	}
	return complaint, nil
}

// AddNote appends a timeline note. Notes bypass the state machine because
// they are permitted even on terminal records. Internal notes are staff-only.
func (s *ComplaintService) AddNote(ctx context.Context, id string, req dto.NoteRequest, claims *models.JWTClaims) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}

	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canView(claims, complaint) {
		return appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this complaint")
	}
	if req.IsInternalNote && !isStaff(claims) {
		return appErrors.Clone(appErrors.ErrForbidden, "internal notes are restricted to staff")
	}

	return s.timeline.Append(ctx, &models.TimelineEvent{
		ComplaintID:    id,
		Actor:          claims.UserID,
		Action:         "NOTE",
		Comment:        req.Comment,
		IsInternalNote: req.IsInternalNote,
	})
}

// Categories lists the accepted complaint categories.
func (s *ComplaintService) Categories() []models.ComplaintCategory {
	return models.Categories
}

func (s *ComplaintService) requireAssigneeOrAdmin(claims *models.JWTClaims, c *models.Complaint) error {
	if claims.HasRole(models.RoleAdmin) {
		return nil
	}
	if c.AssignedToID != nil && *c.AssignedToID == claims.UserID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "only the assigned officer or an admin may do this")
}

func canView(claims *models.JWTClaims, c *models.Complaint) bool {
	if claims == nil {
		return false
	}
	if isStaff(claims) {
		return true
	}
	return c.SubmitterID != nil && *c.SubmitterID == claims.UserID
}

func isStaff(claims *models.JWTClaims) bool {
	if claims == nil {
		return false
	}
	return claims.HasRole(models.RoleOfficer) || claims.HasRole(models.RoleAdmin)
}
