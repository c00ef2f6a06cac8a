package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradesim/middleware"
)

// History returns the user's full ledger and the net cash flow across it.
func (h *Handler) History(c *gin.Context) {
	entries, netFlow, err := h.trading.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.internalError(c, "failed to fetch history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries, "net_flow": netFlow})
}
