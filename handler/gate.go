package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/ndeen17/Escrow/config"
	"github.com/ndeen17/Escrow/middleware"
	"github.com/ndeen17/Escrow/model"
	"github.com/ndeen17/Escrow/pkg/logger"
	"github.com/ndeen17/Escrow/service"
)

// GateHandler finalizes the wizard: authenticated users submit directly,
// everyone else goes through the auth gate and the pending-submission
// envelope.
type GateHandler struct {
	wizard   *service.WizardService
	slots    *service.SlotStore
	escrow   *service.EscrowClient
	identity *config.IdentityConfig
}

func NewGateHandler(wizard *service.WizardService, slots *service.SlotStore, escrow *service.EscrowClient, identity *config.IdentityConfig) *GateHandler {
	return &GateHandler{wizard: wizard, slots: slots, escrow: escrow, identity: identity}
}

// validateAll runs every step's validation; submission requires the whole
// form to pass, not just step 3.
func validateAll(draft *model.ContractDraft) map[string]string {
	errs := make(map[string]string)
	for step := model.StepSetup; step <= model.StepBudget; step++ {
		for field, msg := range service.ValidateStep(draft, step) {
			errs[field] = msg
		}
	}
	return errs
}

// Submit finalizes step 3. Authenticated callers get their contract created
// immediately; anonymous callers are told to open the gate, with no envelope
// written yet.
func (h *GateHandler) Submit(c *gin.Context) {
	var progress model.WizardProgress
	if err := c.ShouldBindJSON(&progress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	session := middleware.GetSessionID(c)

	// The snapshot is mirrored before anything else; a failed submission
	// must leave the draft recoverable.
	if err := h.wizard.Save(ctx, session, progress); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	if errs := validateAll(&progress.Draft); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	if !middleware.IsAuthenticated(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"gate_required": true})
		return
	}

	resp, err := h.escrow.CreateContract(ctx, middleware.GetToken(c), progress.Draft, model.StatusPending)
	if err != nil {
		logger.Error(ctx, "contract submission failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	// Cleared only after the backend accepted the contract.
	if err := h.wizard.Discard(ctx, session); err != nil {
		logger.Warn(ctx, "failed to clear draft after submission", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"contract_id": resp.ID,
		"redirect":    h.identity.ReturnTo,
	})
}

// loginURL builds the identity-provider redirect, always rendezvousing back
// at the dashboard.
func (h *GateHandler) loginURL() string {
	return h.identity.LoginURL + "?returnTo=" + url.QueryEscape(h.identity.ReturnTo)
}

// SignIn handles the gate's "Sign In" choice: carry the contract alone
// across the redirect.
func (h *GateHandler) SignIn(c *gin.Context) {
	var progress model.WizardProgress
	if err := c.ShouldBindJSON(&progress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	session := middleware.GetSessionID(c)

	draft := progress.Draft
	env := model.PendingSubmission{Contract: &draft}
	if err := h.slots.SaveSubmission(ctx, session, env); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store pending submission"})
		return
	}

	logger.Info(ctx, "pending submission stored", "with_registration", false)
	c.JSON(http.StatusOK, gin.H{"login_url": h.loginURL()})
}

type SignUpRequest struct {
	FirstName string               `json:"first_name" binding:"required"`
	LastName  string               `json:"last_name" binding:"required"`
	Country   string               `json:"country" binding:"required"`
	Role      string               `json:"role"`
	Progress  model.WizardProgress `json:"progress"`
}

// SignUp handles the gate's registration form: carry identity fields and the
// contract together across the redirect. The role was chosen earlier in the
// signup flow and defaults to client.
func (h *GateHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "First name, last name and country are required"})
		return
	}

	ctx := c.Request.Context()
	session := middleware.GetSessionID(c)

	draft := req.Progress.Draft
	env := model.PendingSubmission{
		Registration: &model.RegistrationData{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Country:   req.Country,
			Role:      model.NormalizeRole(req.Role),
		},
		Contract: &draft,
	}
	if err := h.slots.SaveSubmission(ctx, session, env); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store pending submission"})
		return
	}

	logger.Info(ctx, "pending submission stored", "with_registration", true)
	c.JSON(http.StatusOK, gin.H{"login_url": h.loginURL()})
}
