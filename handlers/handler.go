package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tradesim/middleware"
	"tradesim/models"
	"tradesim/quote"
	"tradesim/service"
	"tradesim/session"
)

// Handler carries the route handlers and their collaborators.
type Handler struct {
	auth       *service.AuthService
	trading    *service.TradingService
	quotes     quote.Service
	sessions   session.Store
	sessionTTL time.Duration
	log        *logrus.Logger
}

func New(auth *service.AuthService, trading *service.TradingService, quotes quote.Service, sessions session.Store, sessionTTL time.Duration, log *logrus.Logger) *Handler {
	return &Handler{
		auth:       auth,
		trading:    trading,
		quotes:     quotes,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// Register wires every route onto the engine.
func (h *Handler) Register(router *gin.Engine) {
	router.Use(middleware.NoCache())

	// Public routes
	router.GET("/login", h.LoginForm)
	router.POST("/login", h.Login)
	router.GET("/register", h.RegisterForm)
	router.POST("/register", h.Signup)
	router.GET("/logout", h.Logout)

	// Protected routes
	auth := router.Group("/")
	auth.Use(middleware.RequireSession(h.sessions))
	{
		auth.GET("/", h.Index)
		auth.GET("/quote", h.Quote)
		auth.POST("/quote", h.Quote)
		auth.GET("/buy", h.BuyForm)
		auth.POST("/buy", h.Buy)
		auth.GET("/sell", h.SellForm)
		auth.POST("/sell", h.Sell)
		auth.POST("/deposit", h.Deposit)
		auth.POST("/withdraw", h.Withdraw)
		auth.GET("/history", h.History)
	}
}

// apology renders the generic user-facing failure response.
func apology(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message, "status": status})
}

func (h *Handler) internalError(c *gin.Context, action string, err error) {
	h.log.WithError(err).Error(action)
	apology(c, http.StatusInternalServerError, "something went wrong")
}

// formValue reads a field from the POST form, falling back to the query
// string so GET variants of a route work the same way.
func formValue(c *gin.Context, key string) string {
	if v := c.PostForm(key); v != "" {
		return v
	}
	return c.Query(key)
}

// userRecord loads the session user's row, rendering the failure itself so
// callers can just return.
func (h *Handler) userRecord(c *gin.Context) (*models.User, error) {
	user, err := h.trading.Account(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		apology(c, http.StatusBadRequest, "cash balance not found")
		return nil, err
	}
	return user, nil
}
