package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AuthService is the slice of the service layer the HTTP handlers depend on.
type AuthService interface {
	Register(ctx context.Context, input services.RegisterInput) (*services.PublicUser, error)
	Login(ctx context.Context, email string, password string) (*services.LoginResult, error)
	RefreshAccess(ctx context.Context, userID string, presented string) (string, error)
	Logout(ctx context.Context, userID string) error
	VerifyEmail(ctx context.Context, email string, code int64) error
	ResendVerification(ctx context.Context, email string) error
	GetUser(ctx context.Context, userID string) (*services.PublicUser, error)
}

type registerRequest struct {
	UserName        string `json:"username" binding:"required,min=3,max=32"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  int64  `json:"code" binding:"required,min=100000,max=999999"`
}

type resendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := s.svc.Register(c.Request.Context(), services.RegisterInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "registered, check your email for the verification code", user)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	res, err := s.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	s.setSessionCookie(c, accessCookieName, res.Tokens.AccessToken, s.signer.AccessValidity())
	s.setSessionCookie(c, refreshCookieName, res.Tokens.RefreshToken, s.signer.RefreshValidity())

	respondOK(c, http.StatusOK, "logged in", res.User)
}

// handleLogout clears the session cookies unconditionally. When a valid
// access token is presented, the stored refresh token is cleared too.
func (s *Server) handleLogout(c *gin.Context) {
	if token, err := c.Cookie(accessCookieName); err == nil {
		if userID, err := s.signer.Verify(token, auth.AccessToken); err == nil {
			_ = s.svc.Logout(c.Request.Context(), userID)
		}
	}

	s.clearSessionCookies(c)
	respondOK(c, http.StatusOK, "logged out", nil)
}

func (s *Server) handleRefreshToken(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, envelope{OK: false, Message: "unauthorized"})
		return
	}

	userID, err := s.signer.Verify(token, auth.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	access, err := s.svc.RefreshAccess(c.Request.Context(), userID, token)
	if err != nil {
		respondError(c, err)
		return
	}

	s.setSessionCookie(c, accessCookieName, access, s.signer.AccessValidity())
	respondOK(c, http.StatusOK, "token refreshed", nil)
}

// handleGetCSRF mints a fresh double-submit secret, sets it as a cookie,
// and returns the derived token for the client to echo in headers.
func (s *Server) handleGetCSRF(c *gin.Context) {
	secret, err := s.guard.NewSecret()
	if err != nil {
		respondError(c, err)
		return
	}

	s.setCSRFCookie(c, secret)
	respondOK(c, http.StatusOK, "csrf token issued", gin.H{"csrfToken": s.guard.Token(secret)})
}

func (s *Server) handleVerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := s.svc.VerifyEmail(c.Request.Context(), req.Email, req.Code); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "email verified", nil)
}

func (s *Server) handleSendEmailVerification(c *gin.Context) {
	var req resendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := s.svc.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "verification code sent", nil)
}

func (s *Server) handleUserInfo(c *gin.Context) {
	user, err := s.svc.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "user info", user)
}
