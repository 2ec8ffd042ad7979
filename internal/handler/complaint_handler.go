package handler

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/resolveit/complaints-api/internal/dto"
	"github.com/resolveit/complaints-api/internal/models"
	"github.com/resolveit/complaints-api/internal/service"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
	"github.com/resolveit/complaints-api/pkg/response"
)

// ComplaintHandler manages complaint endpoints.
type ComplaintHandler struct {
	service *service.ComplaintService
}

// NewComplaintHandler constructs handler.
func NewComplaintHandler(svc *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: svc}
}

// Submit godoc
// @Summary Submit a complaint
// @Tags Complaints
// @Accept mpfd
// @Produce json
// @Param category formData string true "Complaint category"
// @Param description formData string true "Description"
// @Param urgency formData string true "Urgency (LOW/MEDIUM/HIGH)"
// @Param attachment formData file false "Optional attachment"
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Router /complaints/submit [post]
func (h *ComplaintHandler) Submit(c *gin.Context) {
	h.submit(c, claimsFromContext(c))
}

// SubmitAnonymous godoc
// @Summary Submit a complaint anonymously
// @Tags Complaints
// @Accept mpfd
// @Produce json
// @Param category formData string true "Complaint category"
// @Param description formData string true "Description"
// @Param urgency formData string true "Urgency (LOW/MEDIUM/HIGH)"
// @Param attachment formData file false "Optional attachment"
// @Success 201 {object} response.Envelope
// @Router /complaints/submit/anonymous [post]
func (h *ComplaintHandler) SubmitAnonymous(c *gin.Context) {
	h.submit(c, nil)
}

func (h *ComplaintHandler) submit(c *gin.Context, claims *models.JWTClaims) {
	var req dto.SubmitComplaintRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload"))
		return
	}

	attachment, err := c.FormFile("attachment")
	if err != nil && err != http.ErrMissingFile {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attachment"))
		return
	}

	complaint, err := h.service.Submit(c.Request.Context(), req, attachment, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complaint)
}

// Get godoc
// @Summary Get a complaint by id
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	complaint, err := h.service.Detail(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Timeline godoc
// @Summary Get the complaint timeline
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id}/timeline [get]
func (h *ComplaintHandler) Timeline(c *gin.Context) {
	events, err := h.service.Timeline(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Attachment godoc
// @Summary Download the complaint attachment
// @Tags Complaints
// @Produce octet-stream
// @Param id path string true "Complaint ID"
// @Success 200 {file} binary
// @Router /complaints/{id}/attachment [get]
func (h *ComplaintHandler) Attachment(c *gin.Context) {
	file, err := h.service.Attachment(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()
	c.FileAttachment(file.Name(), filepath.Base(file.Name()))
}

// My godoc
// @Summary List my complaints
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/my [get]
func (h *ComplaintHandler) My(c *gin.Context) {
	complaints, err := h.service.ListMy(c.Request.Context(), claimsFromContext(c), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, nil)
}

// Assigned godoc
// @Summary List complaints assigned to me
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/assigned [get]
func (h *ComplaintHandler) Assigned(c *gin.Context) {
	complaints, err := h.service.ListAssigned(c.Request.Context(), claimsFromContext(c), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, nil)
}

// All godoc
// @Summary List all complaints
// @Tags Complaints
// @Produce json
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Param urgency query string false "Filter by urgency"
// @Success 200 {object} response.Envelope
// @Router /complaints/admin/all [get]
func (h *ComplaintHandler) All(c *gin.Context) {
	complaints, err := h.service.ListAll(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, nil)
}

// Escalated godoc
// @Summary List escalated complaints
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/admin/escalated [get]
func (h *ComplaintHandler) Escalated(c *gin.Context) {
	complaints, err := h.service.ListEscalated(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, nil)
}

// Unresolved godoc
// @Summary List unresolved complaints
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/admin/unresolved [get]
func (h *ComplaintHandler) Unresolved(c *gin.Context) {
	complaints, err := h.service.ListUnresolved(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, nil)
}

// Officers godoc
// @Summary List assignable officers
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/officers [get]
func (h *ComplaintHandler) Officers(c *gin.Context) {
	officers, err := h.service.Officers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, officers, nil)
}

// Categories godoc
// @Summary List complaint categories
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/categories [get]
func (h *ComplaintHandler) Categories(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Categories(), nil)
}

// Assign godoc
// @Summary Assign a complaint to an officer
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.AssignComplaintRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Router /complaints/assign/{id} [put]
func (h *ComplaintHandler) Assign(c *gin.Context) {
	var req dto.AssignComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload"))
		return
	}
	complaint, err := h.service.Assign(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Unassign godoc
// @Summary Unassign a complaint
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/unassign/{id} [put]
func (h *ComplaintHandler) Unassign(c *gin.Context) {
	complaint, err := h.service.Unassign(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// UpdateDeadline godoc
// @Summary Update the complaint deadline
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.DeadlineUpdateRequest true "Deadline"
// @Success 200 {object} response.Envelope
// @Router /complaints/deadline/{id} [put]
func (h *ComplaintHandler) UpdateDeadline(c *gin.Context) {
	var req dto.DeadlineUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid deadline payload"))
		return
	}
	complaint, err := h.service.UpdateDeadline(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Complete godoc
// @Summary Mark a complaint as completed
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Param comment query string false "Comment"
// @Success 200 {object} response.Envelope
// @Router /complaints/complete/{id} [put]
func (h *ComplaintHandler) Complete(c *gin.Context) {
	complaint, err := h.service.MarkCompleted(c.Request.Context(), c.Param("id"), c.Query("comment"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Resolve godoc
// @Summary Mark a completed complaint as resolved
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Param comment query string false "Comment"
// @Success 200 {object} response.Envelope
// @Router /complaints/resolve/{id} [put]
func (h *ComplaintHandler) Resolve(c *gin.Context) {
	complaint, err := h.service.MarkResolved(c.Request.Context(), c.Param("id"), c.Query("comment"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// UpdateStatus godoc
// @Summary Override the complaint status
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.StatusUpdateRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /complaints/status/{id} [put]
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload"))
		return
	}
	complaint, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Escalate godoc
// @Summary Manually escalate a complaint
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.EscalationRequest true "Escalation"
// @Success 200 {object} response.Envelope
// @Router /complaints/escalate/{id} [post]
func (h *ComplaintHandler) Escalate(c *gin.Context) {
	var req dto.EscalationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid escalation payload"))
		return
	}
	complaint, err := h.service.Escalate(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// DeEscalate godoc
// @Summary De-escalate a complaint
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Param comment query string false "Comment"
// @Success 200 {object} response.Envelope
// @Router /complaints/de-escalate/{id} [put]
func (h *ComplaintHandler) DeEscalate(c *gin.Context) {
	complaint, err := h.service.DeEscalate(c.Request.Context(), c.Param("id"), c.Query("comment"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// AddNote godoc
// @Summary Append a note to the complaint timeline
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.NoteRequest true "Note"
// @Success 201 {object} response.Envelope
// @Router /complaints/{id}/notes [post]
func (h *ComplaintHandler) AddNote(c *gin.Context) {
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload"))
		return
	}
	if err := h.service.AddNote(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "note added")
}

func filterFromQuery(c *gin.Context) models.ComplaintFilter {
	var filter models.ComplaintFilter
	if raw := c.Query("status"); raw != "" {
		if status, ok := models.ParseStatus(raw); ok {
			filter.Status = &status
		}
	}
	if raw := c.Query("category"); raw != "" {
		category := models.ComplaintCategory(strings.ToUpper(raw))
		filter.Category = &category
	}
	if raw := c.Query("urgency"); raw != "" {
		urgency := models.Urgency(strings.ToUpper(raw))
		filter.Urgency = &urgency
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = offset
	}
	return filter
}
