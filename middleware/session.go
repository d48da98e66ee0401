package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ndeen17/Escrow/pkg/logger"
)

// SessionCookie names the anonymous wizard session cookie. It namespaces the
// draft and pending-submission slots and must survive the identity-provider
// redirect round trip, hence the long max age.
const SessionCookie = "escon_session"

const sessionMaxAge = 30 * 24 * 60 * 60 // seconds

// Session assigns each browser a stable anonymous session ID.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := c.Cookie(SessionCookie)
		if err != nil || session == "" {
			session = uuid.New().String()
			c.SetCookie(SessionCookie, session, sessionMaxAge, "/", "", false, true)
		}

		c.Set("session_id", session)

		// Add to request context for logger
		ctx := context.WithValue(c.Request.Context(), logger.SessionKey, session)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSessionID gets the wizard session ID from gin context
func GetSessionID(c *gin.Context) string {
	if session, exists := c.Get("session_id"); exists {
		return session.(string)
	}
	return ""
}
