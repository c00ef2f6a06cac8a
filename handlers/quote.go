package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradesim/errs"
)

// Quote looks up a live price for a ticker. No persistence side effect.
func (h *Handler) Quote(c *gin.Context) {
	symbol := formValue(c, "symbol")
	if symbol == "" {
		apology(c, http.StatusBadRequest, "must provide symbol")
		return
	}

	q, err := h.quotes.Lookup(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, errs.ErrUnknownSymbol) {
			apology(c, http.StatusBadRequest, "symbol not found")
			return
		}
		h.internalError(c, "quote lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, q)
}
