package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradesim/errs"
	"tradesim/middleware"
	"tradesim/models"
)

// LoginForm describes the login fields for clients that GET the page.
func (h *Handler) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": []string{"username", "password"}})
}

func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if username == "" {
		apology(c, http.StatusForbidden, "must provide username")
		return
	}
	if password == "" {
		apology(c, http.StatusForbidden, "must provide password")
		return
	}

	user, err := h.auth.Login(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			apology(c, http.StatusForbidden, "invalid username and/or password")
			return
		}
		h.internalError(c, "login failed", err)
		return
	}

	if err := h.startSession(c, user); err != nil {
		h.internalError(c, "failed to establish session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": user.ID, "username": user.Username})
}

// RegisterForm describes the registration fields for clients that GET the page.
func (h *Handler) RegisterForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": []string{"username", "password", "confirmation"}})
}

func (h *Handler) Signup(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	confirmation := c.PostForm("confirmation")

	if username == "" {
		apology(c, http.StatusBadRequest, "must provide username")
		return
	}
	if password == "" {
		apology(c, http.StatusBadRequest, "must provide password")
		return
	}
	if password != confirmation {
		apology(c, http.StatusBadRequest, "passwords do not match")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicate) {
			apology(c, http.StatusBadRequest, fmt.Sprintf("username %s already exists", username))
			return
		}
		h.internalError(c, "registration failed", err)
		return
	}

	// Registration logs the new user straight in.
	if err := h.startSession(c, user); err != nil {
		h.internalError(c, "failed to establish session", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user_id": user.ID, "username": user.Username})
}

func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			h.log.WithError(err).Warn("failed to destroy session")
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) startSession(c *gin.Context, user *models.User) error {
	token, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		return err
	}
	c.SetCookie(middleware.SessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", false, true)
	return nil
}
