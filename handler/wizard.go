package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ndeen17/Escrow/middleware"
	"github.com/ndeen17/Escrow/model"
	"github.com/ndeen17/Escrow/service"
)

// resumeNoticeMsec is the fixed display time for the draft-restored notice.
const resumeNoticeMsec = 5000

type WizardHandler struct {
	wizard *service.WizardService
}

func NewWizardHandler(wizard *service.WizardService) *WizardHandler {
	return &WizardHandler{wizard: wizard}
}

// Categories returns the contract taxonomy plus the other static pick lists
// the wizard and registration form need.
func (h *WizardHandler) Categories(c *gin.Context) {
	type category struct {
		Name          string   `json:"name"`
		Subcategories []string `json:"subcategories"`
	}

	out := make([]category, 0, len(model.CategoryOrder))
	for _, name := range model.CategoryOrder {
		out = append(out, category{Name: name, Subcategories: model.Categories[name]})
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": out,
		"currencies": model.Currencies,
		"countries":  model.Countries,
	})
}

// SaveDraft mirrors the current form snapshot to the draft slot. Called on
// every field change; blank drafts are skipped.
func (h *WizardHandler) SaveDraft(c *gin.Context) {
	var progress model.WizardProgress
	if err := c.ShouldBindJSON(&progress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session := middleware.GetSessionID(c)
	if err := h.wizard.Save(c.Request.Context(), session, progress); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": progress.Draft.Identifiable()})
}

// GetDraft restores a saved draft for this session, along with the transient
// notice telling the user their work survived.
func (h *WizardHandler) GetDraft(c *gin.Context) {
	session := middleware.GetSessionID(c)

	progress, ok, err := h.wizard.Resume(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": progress.Draft,
		"step": progress.Step,
		"notice": model.Notice{
			Message:         "Welcome back! We restored your draft contract.",
			AutoDismissMsec: resumeNoticeMsec,
		},
	})
}

// DiscardDraft drops the saved draft on an explicit discard.
func (h *WizardHandler) DiscardDraft(c *gin.Context) {
	session := middleware.GetSessionID(c)
	if err := h.wizard.Discard(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to discard draft"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft discarded"})
}

// Next validates the current step and advances on success. Field errors come
// back keyed by field so the UI can attach them.
func (h *WizardHandler) Next(c *gin.Context) {
	var progress model.WizardProgress
	if err := c.ShouldBindJSON(&progress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session := middleware.GetSessionID(c)
	errs, err := h.wizard.Advance(c.Request.Context(), session, &progress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}
	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs, "step": progress.Step})
		return
	}

	c.JSON(http.StatusOK, gin.H{"step": progress.Step})
}

// Back moves one step back without validation.
func (h *WizardHandler) Back(c *gin.Context) {
	var progress model.WizardProgress
	if err := c.ShouldBindJSON(&progress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session := middleware.GetSessionID(c)
	if err := h.wizard.Retreat(c.Request.Context(), session, &progress); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"step": progress.Step})
}

// Milestone actions
const (
	ActionToggleSplit = "toggle_split"
	ActionAdd         = "add"
	ActionRemove      = "remove"
	ActionUpdate      = "update"
)

type MilestoneRequest struct {
	Action    string               `json:"action" binding:"required"`
	Enabled   bool                 `json:"enabled"`
	Index     int                  `json:"index"`
	Milestone model.Milestone      `json:"milestone"`
	Progress  model.WizardProgress `json:"progress"`
}

// Milestones applies one milestone mutation to the draft and persists the
// result.
func (h *WizardHandler) Milestones(c *gin.Context) {
	var req MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	draft := &req.Progress.Draft
	switch req.Action {
	case ActionToggleSplit:
		service.ToggleSplit(draft, req.Enabled)
	case ActionAdd:
		service.AddMilestone(draft)
	case ActionRemove:
		service.RemoveMilestone(draft, req.Index)
	case ActionUpdate:
		service.UpdateMilestone(draft, req.Index, req.Milestone)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown milestone action"})
		return
	}

	session := middleware.GetSessionID(c)
	if err := h.wizard.Save(c.Request.Context(), session, req.Progress); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   draft,
		"payout": draft.Payout(),
	})
}

// Payout returns the fee breakdown for the saved draft.
func (h *WizardHandler) Payout(c *gin.Context) {
	session := middleware.GetSessionID(c)

	progress, ok, err := h.wizard.Resume(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No draft in progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payout": progress.Draft.Payout()})
}
