package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resolveit/complaints-api/internal/models"
	"github.com/resolveit/complaints-api/internal/service"
	"github.com/resolveit/complaints-api/pkg/config"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
	"github.com/resolveit/complaints-api/pkg/response"
)

// EscalationHandler exposes the automatic escalation engine.
type EscalationHandler struct {
	service *service.EscalationService
}

// NewEscalationHandler constructs handler.
func NewEscalationHandler(svc *service.EscalationService) *EscalationHandler {
	return &EscalationHandler{service: svc}
}

// Trigger godoc
// @Summary Trigger a manual escalation sweep
// @Tags AutoEscalation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auto-escalation/trigger [post]
func (h *EscalationHandler) Trigger(c *gin.Context) {
	result, err := h.service.RunSweep(c.Request.Context(), models.TriggerManual)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Candidates godoc
// @Summary List complaints the policy would escalate right now
// @Tags AutoEscalation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auto-escalation/candidates [get]
func (h *EscalationHandler) Candidates(c *gin.Context) {
	candidates, err := h.service.Candidates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}

// Stats godoc
// @Summary Escalation statistics
// @Tags AutoEscalation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auto-escalation/stats [get]
func (h *EscalationHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Test godoc
// @Summary Dry-run the escalation policy against one complaint
// @Tags AutoEscalation
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /auto-escalation/test/{id} [get]
func (h *EscalationHandler) Test(c *gin.Context) {
	view, err := h.service.Evaluate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// GetConfig godoc
// @Summary Current escalation thresholds
// @Tags AutoEscalation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auto-escalation/config [get]
func (h *EscalationHandler) GetConfig(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Config(), nil)
}

// UpdateConfig godoc
// @Summary Update escalation thresholds at runtime
// @Tags AutoEscalation
// @Accept json
// @Produce json
// @Param payload body config.EscalationConfig true "Thresholds"
// @Success 200 {object} response.Envelope
// @Router /auto-escalation/config [put]
func (h *EscalationHandler) UpdateConfig(c *gin.Context) {
	var cfg config.EscalationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid escalation config payload"))
		return
	}
	response.JSON(c, http.StatusOK, h.service.UpdateConfig(cfg), nil)
}

// Health godoc
// @Summary Escalation engine health
// @Tags AutoEscalation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auto-escalation/health [get]
func (h *EscalationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"enabled":  h.service.Config().Enabled,
		"sweeping": h.service.Sweeping(),
	})
}
