package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradesim/session"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session"

// UserIDKey is the context key the authenticated user id is stored under.
const UserIDKey = "user_id"

// RequireSession resolves the session cookie to a user id and stores it in
// the request context. Anything short of a valid, live session redirects to
// the login page.
func RequireSession(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		userID, err := sessions.UserID(c.Request.Context(), token)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireSession.
func UserID(c *gin.Context) uint {
	return c.MustGet(UserIDKey).(uint)
}
