package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ndeen17/Escrow/middleware"
	"github.com/ndeen17/Escrow/pkg/logger"
	"github.com/ndeen17/Escrow/service"
)

// ReconcileHandler runs the post-redirect reconciliation when an
// authenticated session arrives at the dashboard.
type ReconcileHandler struct {
	reconciler *service.Reconciler
}

func NewReconcileHandler(reconciler *service.Reconciler) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler}
}

// Reconcile consumes any pending envelope for this session. Safe to call on
// every dashboard load; once nothing is pending it does no backend calls.
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	ctx := c.Request.Context()
	session := middleware.GetSessionID(c)

	ident := service.Identity{
		Subject: middleware.GetSubject(c),
		Email:   middleware.GetEmail(c),
		Token:   middleware.GetToken(c),
	}

	result, err := h.reconciler.Reconcile(ctx, session, ident)
	if err != nil {
		// The envelope and draft are still in place; the next arrival
		// retries the same call.
		logger.Error(ctx, "reconciliation failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
