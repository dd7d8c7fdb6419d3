package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/csrf"
	"github.com/gin-gonic/gin"
)

const userIDContextKey = "authkeeper.userId"

// csrfMiddleware enforces the double-submit check on every state-changing
// request. The cookie carries the secret, the header must echo the token
// derived from it.
func (s *Server) csrfMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if csrf.IsSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		secret, err := c.Cookie(csrfCookieName)
		if err != nil || !s.guard.Verify(secret, c.GetHeader(csrfHeaderName)) {
			c.AbortWithStatusJSON(http.StatusForbidden, envelope{OK: false, Message: "invalid csrf token"})
			return
		}

		c.Next()
	}
}

// authMiddleware requires a valid access token cookie and stores the
// authenticated user ID on the request context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(accessCookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{OK: false, Message: "unauthorized"})
			return
		}

		userID, err := s.signer.Verify(token, auth.AccessToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{OK: false, Message: "unauthorized"})
			return
		}

		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// currentUserID returns the user ID stored by authMiddleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIDContextKey)
}
