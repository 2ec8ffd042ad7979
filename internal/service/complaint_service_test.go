package service

import (
	"context"
	"mime/multipart"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/complaints-api/internal/dto"
	"github.com/resolveit/complaints-api/internal/models"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
)

type complaintRepoStub struct {
	created    []*models.Complaint
	byID       map[string]*models.Complaint
	lastFilter models.ComplaintFilter
}

func (r *complaintRepoStub) Create(ctx context.Context, c *models.Complaint) error {
	c.ID = "generated-id"
	r.created = append(r.created, c)
	return nil
}

func (r *complaintRepoStub) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	if c, ok := r.byID[id]; ok {
		snapshot := *c
		return &snapshot, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
}

func (r *complaintRepoStub) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	r.lastFilter = filter
	return nil, nil
}

type timelineRepoStub struct {
	appended []*models.TimelineEvent
}

func (r *timelineRepoStub) Append(ctx context.Context, event *models.TimelineEvent) error {
	r.appended = append(r.appended, event)
	return nil
}

func (r *timelineRepoStub) ListByComplaint(ctx context.Context, complaintID string, includeInternal bool) ([]models.TimelineEvent, error) {
	return nil, nil
}

type userDirectoryStub struct {
	byID map[string]*models.User
}

func (d *userDirectoryStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := d.byID[id]; ok {
		return u, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
}

func (d *userDirectoryStub) ListByRoles(ctx context.Context, roles ...models.UserRole) ([]models.User, error) {
	return nil, nil
}

type storageStub struct {
	saved int
}

func (s *storageStub) SaveAttachment(header *multipart.FileHeader) (string, error) {
	s.saved++
	return "stored-file.pdf", nil
}

func (s *storageStub) Open(filename string) (*os.File, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment missing")
}

type complaintFixture struct {
	svc      *ComplaintService
	repo     *complaintRepoStub
	timeline *timelineRepoStub
	users    *userDirectoryStub
	applier  *applierStub
}

func newComplaintFixture() *complaintFixture {
	repo := &complaintRepoStub{byID: map[string]*models.Complaint{}}
	timeline := &timelineRepoStub{}
	users := &userDirectoryStub{byID: map[string]*models.User{}}
	applier := &applierStub{}
	svc := NewComplaintService(repo, timeline, users, &storageStub{}, applier, nil, nil)
	return &complaintFixture{svc: svc, repo: repo, timeline: timeline, users: users, applier: applier}
}

func userClaims(id string, roles ...models.UserRole) *models.JWTClaims {
	if len(roles) == 0 {
		roles = []models.UserRole{models.RoleUser}
	}
	return &models.JWTClaims{UserID: id, Roles: roles, FullName: "Test User"}
}

func submitRequest() dto.SubmitComplaintRequest {
	return dto.SubmitComplaintRequest{
		Category:    "technical",
		Description: "the portal rejects every upload I try",
		Urgency:     "medium",
	}
}

func TestComplaintServiceSubmitAnonymous(t *testing.T) {
	f := newComplaintFixture()

	complaint, err := f.svc.Submit(context.Background(), submitRequest(), nil, nil)
	require.NoError(t, err)

	assert.True(t, complaint.Anonymous)
	assert.Nil(t, complaint.SubmitterID)
	assert.Equal(t, models.StatusNew, complaint.Status)
	assert.Equal(t, models.CategoryTechnical, complaint.Category)

	require.Len(t, f.timeline.appended, 1)
	assert.Equal(t, models.SystemActor, f.timeline.appended[0].Actor)
}

func TestComplaintServiceSubmitAuthenticated(t *testing.T) {
	f := newComplaintFixture()

	complaint, err := f.svc.Submit(context.Background(), submitRequest(), nil, userClaims("user-1"))
	require.NoError(t, err)

	assert.False(t, complaint.Anonymous)
	require.NotNil(t, complaint.SubmitterID)
	assert.Equal(t, "user-1", *complaint.SubmitterID)
	require.Len(t, f.timeline.appended, 1)
	assert.Equal(t, "user-1", f.timeline.appended[0].Actor)
}

func TestComplaintServiceSubmitRejectsShortDescription(t *testing.T) {
	f := newComplaintFixture()

	req := submitRequest()
	req.Description = "too short"
	_, err := f.svc.Submit(context.Background(), req, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, f.repo.created)
}

func TestComplaintServiceSubmitRejectsUnknownCategory(t *testing.T) {
	f := newComplaintFixture()

	req := submitRequest()
	req.Category = "GOSSIP"
	_, err := f.svc.Submit(context.Background(), req, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestComplaintServiceGetByIDAccess(t *testing.T) {
	f := newComplaintFixture()
	submitter := "user-1"
	f.repo.byID["c-1"] = &models.Complaint{ID: "c-1", SubmitterID: &submitter}
	f.repo.byID["c-2"] = &models.Complaint{ID: "c-2", Anonymous: true}

	_, err := f.svc.GetByID(context.Background(), "c-1", userClaims("user-1"))
	assert.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), "c-1", userClaims("user-2"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	// anonymous complaints are staff-only, even submitters cannot claim them
	_, err = f.svc.GetByID(context.Background(), "c-2", userClaims("user-1"))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.GetByID(context.Background(), "c-2", userClaims("officer-1", models.RoleOfficer))
	assert.NoError(t, err)
}

func TestComplaintServiceAssignRejectsPastDeadline(t *testing.T) {
	f := newComplaintFixture()
	past := time.Now().UTC().Add(-1 * time.Hour)

	_, err := f.svc.Assign(context.Background(), "c-1", dto.AssignComplaintRequest{
		AssignToUserID: "officer-1",
		Deadline:       &past,
	}, userClaims("admin-1", models.RoleAdmin))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, f.applier.calls)
}

func TestComplaintServiceAssignRejectsIneligibleAssignee(t *testing.T) {
	f := newComplaintFixture()
	f.repo.byID["c-1"] = &models.Complaint{ID: "c-1", Status: models.StatusNew}
	f.users.byID["user-9"] = &models.User{ID: "user-9", Username: "plainuser", Roles: []string{string(models.RoleUser)}, Active: true}
	f.users.byID["ghost"] = &models.User{ID: "ghost", Username: "ghost", Roles: []string{string(models.RoleOfficer)}, Active: false}

	_, err := f.svc.Assign(context.Background(), "c-1", dto.AssignComplaintRequest{AssignToUserID: "user-9"},
		userClaims("admin-1", models.RoleAdmin))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Assign(context.Background(), "c-1", dto.AssignComplaintRequest{AssignToUserID: "ghost"},
		userClaims("admin-1", models.RoleAdmin))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.Empty(t, f.applier.calls)
}

func TestComplaintServiceDetailResolvesNames(t *testing.T) {
	f := newComplaintFixture()
	submitter := "user-1"
	officer := "officer-1"
	f.repo.byID["c-1"] = &models.Complaint{ID: "c-1", SubmitterID: &submitter, AssignedToID: &officer, Status: models.StatusAssigned}
	f.users.byID["user-1"] = &models.User{ID: "user-1", FullName: "Jane Filer", Roles: []string{string(models.RoleUser)}, Active: true}
	f.users.byID["officer-1"] = &models.User{ID: "officer-1", FullName: "Officer One", Roles: []string{string(models.RoleOfficer)}, Active: true}

	detail, err := f.svc.Detail(context.Background(), "c-1", userClaims("admin-1", models.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, "Jane Filer", detail.SubmitterName)
	assert.Equal(t, "Officer One", detail.AssignedToName)
	assert.Empty(t, detail.EscalatedToName)
}

func TestComplaintServiceDetailHidesAnonymousSubmitter(t *testing.T) {
	f := newComplaintFixture()
	submitter := "user-1"
	f.repo.byID["c-1"] = &models.Complaint{ID: "c-1", Anonymous: true, SubmitterID: &submitter, Status: models.StatusNew}
	f.users.byID["user-1"] = &models.User{ID: "user-1", FullName: "Jane Filer", Roles: []string{string(models.RoleUser)}, Active: true}

	detail, err := f.svc.Detail(context.Background(), "c-1", userClaims("officer-1", models.RoleOfficer))
	require.NoError(t, err)
	assert.Empty(t, detail.SubmitterName)
}

func TestComplaintServiceAssignUnknownAssigneeIsNotFound(t *testing.T) {
	f := newComplaintFixture()
	f.repo.byID["c-1"] = &models.Complaint{ID: "c-1", Status: models.StatusNew}

	_, err := f.svc.Assign(context.Background(), "c-1", dto.AssignComplaintRequest{AssignToUserID: "missing"},
		userClaims("admin-1", models.RoleAdmin))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, f.applier.calls)
}

func TestComplaintServiceAssignDelegatesToLifecycle(t *testing.T) {
	f := newComplaintFixture()
	f.repo.byID["c-1"] = &models.Complaint{ID: "c-1", Status: models.StatusNew}
	f.users.byID["officer-1"] = &models.User{ID: "officer-1", Username: "officer", FullName: "Officer One", Roles: []string{string(models.RoleOfficer)}, Active: true}
	deadline := time.Now().UTC().Add(72 * time.Hour)

	_, err := f.svc.Assign(context.Background(), "c-1", dto.AssignComplaintRequest{
		AssignToUserID: "officer-1",
		Deadline:       &deadline,
	}, userClaims("admin-1", models.RoleAdmin))
	require.NoError(t, err)

	require.Len(t, f.applier.calls, 1)
	call := f.applier.calls[0]
	assert.Equal(t, TransitionAssign, call.Transition)
	assert.Equal(t, "admin-1", call.ActorID)
	require.NotNil(t, call.AssignTo)
	assert.Equal(t, "officer-1", call.AssignTo.ID)
}

func TestComplaintServiceDeadlineRequiresAssigneeOrAdmin(t *testing.T) {
	f := newComplaintFixture()
	officer := "officer-1"
	f.repo.byID["c-1"] = &models.Complaint{ID: "c-1", Status: models.StatusAssigned, AssignedToID: &officer}
	future := time.Now().UTC().Add(24 * time.Hour)

	_, err := f.svc.UpdateDeadline(context.Background(), "c-1", dto.DeadlineUpdateRequest{Deadline: future},
		userClaims("officer-2", models.RoleOfficer))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.UpdateDeadline(context.Background(), "c-1", dto.DeadlineUpdateRequest{Deadline: future},
		userClaims("officer-1", models.RoleOfficer))
	assert.NoError(t, err)

	_, err = f.svc.UpdateDeadline(context.Background(), "c-1", dto.DeadlineUpdateRequest{Deadline: future},
		userClaims("admin-1", models.RoleAdmin))
	assert.NoError(t, err)
}

func TestComplaintServiceEscalateValidatesPriority(t *testing.T) {
	f := newComplaintFixture()
	f.repo.byID["c-1"] = &models.Complaint{ID: "c-1", Status: models.StatusInProgress}

	_, err := f.svc.Escalate(context.Background(), "c-1", dto.EscalationRequest{
		Reason:   "no movement",
		Priority: "WHENEVER",
	}, userClaims("admin-1", models.RoleAdmin))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Escalate(context.Background(), "c-1", dto.EscalationRequest{
		Reason: "no movement",
	}, userClaims("admin-1", models.RoleAdmin))
	require.NoError(t, err)

	require.Len(t, f.applier.calls, 1)
	assert.Equal(t, models.PriorityHigh, f.applier.calls[0].Priority)
	assert.Equal(t, models.EscalationManual, f.applier.calls[0].Source)
}

func TestComplaintServiceEscalateUnknownTargetIsNotFound(t *testing.T) {
	f := newComplaintFixture()
	f.repo.byID["c-1"] = &models.Complaint{ID: "c-1", Status: models.StatusInProgress}
	missing := "missing"

	_, err := f.svc.Escalate(context.Background(), "c-1", dto.EscalationRequest{
		Reason:           "no movement",
		EscalateToUserID: &missing,
	}, userClaims("admin-1", models.RoleAdmin))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, f.applier.calls)
}

func TestComplaintServiceInternalNoteIsStaffOnly(t *testing.T) {
	f := newComplaintFixture()
	submitter := "user-1"
	f.repo.byID["c-1"] = &models.Complaint{ID: "c-1", SubmitterID: &submitter, Status: models.StatusResolved}

	err := f.svc.AddNote(context.Background(), "c-1", dto.NoteRequest{
		Comment:        "following up internally",
		IsInternalNote: true,
	}, userClaims("user-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	// plain notes work even on terminal complaints
	err = f.svc.AddNote(context.Background(), "c-1", dto.NoteRequest{Comment: "thanks for resolving this"},
		userClaims("user-1"))
	require.NoError(t, err)
	require.Len(t, f.timeline.appended, 1)
	assert.Equal(t, "NOTE", f.timeline.appended[0].Action)
}

func TestComplaintServiceListScopes(t *testing.T) {
	f := newComplaintFixture()
	claims := userClaims("user-1")

	_, err := f.svc.ListMy(context.Background(), claims, models.ComplaintFilter{})
	require.NoError(t, err)
	assert.Equal(t, "user-1", f.repo.lastFilter.SubmitterID)

	_, err = f.svc.ListAssigned(context.Background(), userClaims("officer-1", models.RoleOfficer), models.ComplaintFilter{})
	require.NoError(t, err)
	assert.Equal(t, "officer-1", f.repo.lastFilter.AssignedToID)

	_, err = f.svc.ListEscalated(context.Background(), models.ComplaintFilter{})
	require.NoError(t, err)
	require.NotNil(t, f.repo.lastFilter.Escalated)
	assert.True(t, *f.repo.lastFilter.Escalated)

	status := models.StatusNew
	_, err = f.svc.ListUnresolved(context.Background(), models.ComplaintFilter{Status: &status})
	require.NoError(t, err)
	assert.True(t, f.repo.lastFilter.Unresolved)
	assert.Nil(t, f.repo.lastFilter.Status)
}
