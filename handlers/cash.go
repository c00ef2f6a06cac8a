package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradesim/errs"
	"tradesim/middleware"
)

func (h *Handler) Deposit(c *gin.Context) {
	amount, ok := amountInput(c, "must deposit at least $1")
	if !ok {
		return
	}

	entry, err := h.trading.Deposit(c.Request.Context(), middleware.UserID(c), amount)
	if err != nil {
		h.internalError(c, "deposit failed", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) Withdraw(c *gin.Context) {
	amount, ok := amountInput(c, "must withdraw at least $1")
	if !ok {
		return
	}

	entry, err := h.trading.Withdraw(c.Request.Context(), middleware.UserID(c), amount)
	if err != nil {
		if errors.Is(err, errs.ErrInsufficientFunds) {
			apology(c, http.StatusBadRequest, "not enough cash available")
			return
		}
		h.internalError(c, "withdraw failed", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func amountInput(c *gin.Context, message string) (int64, bool) {
	amount, err := strconv.ParseInt(c.PostForm("amount"), 10, 64)
	if err != nil || amount < 1 {
		apology(c, http.StatusBadRequest, message)
		return 0, false
	}
	return amount, true
}
