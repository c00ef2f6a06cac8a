package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradesim/errs"
	"tradesim/middleware"
	"tradesim/service"
)

// Index shows the portfolio: cash, live-priced holdings and the grand total.
func (h *Handler) Index(c *gin.Context) {
	view, err := h.trading.Portfolio(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		var qe *service.QuoteError
		if errors.As(err, &qe) {
			apology(c, http.StatusBadRequest, qe.Error())
			return
		}
		h.internalError(c, "failed to build portfolio", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// BuyForm returns the purchase context: the user's available cash.
func (h *Handler) BuyForm(c *gin.Context) {
	user, err := h.userRecord(c)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cash": user.Cash})
}

func (h *Handler) Buy(c *gin.Context) {
	symbol, shares, ok := tradeInput(c)
	if !ok {
		return
	}

	entry, err := h.trading.Buy(c.Request.Context(), middleware.UserID(c), symbol, shares)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUnknownSymbol):
			apology(c, http.StatusBadRequest, "symbol not found")
		case errors.Is(err, errs.ErrInsufficientFunds):
			apology(c, http.StatusForbidden, "insufficient cash for the purchase")
		default:
			h.internalError(c, "buy failed", err)
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// SellForm returns the sale context: available cash and the non-empty
// holdings to pick from.
func (h *Handler) SellForm(c *gin.Context) {
	user, err := h.userRecord(c)
	if err != nil {
		return
	}

	holdings, err := h.trading.Holdings(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "failed to fetch holdings", err)
		return
	}
	if len(holdings) == 0 {
		apology(c, http.StatusBadRequest, "portfolio is empty")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cash": user.Cash, "holdings": holdings})
}

func (h *Handler) Sell(c *gin.Context) {
	symbol, shares, ok := tradeInput(c)
	if !ok {
		return
	}

	entry, err := h.trading.Sell(c.Request.Context(), middleware.UserID(c), symbol, shares)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInsufficientShares):
			apology(c, http.StatusBadRequest, "not enough shares in portfolio")
		case errors.Is(err, errs.ErrUnknownSymbol):
			apology(c, http.StatusBadRequest, "symbol not found")
		default:
			h.internalError(c, "sell failed", err)
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// tradeInput validates the symbol and share count shared by buy and sell.
func tradeInput(c *gin.Context) (string, int64, bool) {
	symbol := formValue(c, "symbol")
	if symbol == "" {
		apology(c, http.StatusBadRequest, "must provide symbol")
		return "", 0, false
	}
	shares, err := strconv.ParseInt(formValue(c, "shares"), 10, 64)
	if err != nil || shares < 1 {
		apology(c, http.StatusBadRequest, "must select at least 1 share")
		return "", 0, false
	}
	return symbol, shares, true
}
