package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
	csrfCookieName    = "csrf_token"

	csrfHeaderName = "X-CSRF-Token"
)

// setSessionCookie writes an HttpOnly SameSite=Lax cookie whose lifetime
// matches the token it carries.
func (s *Server) setSessionCookie(c *gin.Context, name string, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", s.secureCookies, true)
}

// setCSRFCookie writes the double-submit secret. The cookie stays HttpOnly;
// clients echo the derived token from the response body, not the cookie.
func (s *Server) setCSRFCookie(c *gin.Context, secret string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(csrfCookieName, secret, int((24 * time.Hour).Seconds()), "/", "", s.secureCookies, true)
}

// clearSessionCookies expires both token cookies and the CSRF secret.
func (s *Server) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookieName, "", -1, "/", "", s.secureCookies, true)
	c.SetCookie(refreshCookieName, "", -1, "/", "", s.secureCookies, true)
	c.SetCookie(csrfCookieName, "", -1, "/", "", s.secureCookies, true)
}
