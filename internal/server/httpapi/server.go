// Package httpapi exposes the authentication service over HTTP using gin.
// All responses share a single JSON envelope, sessions travel in HttpOnly
// cookies, and state-changing requests are guarded by a double-submit
// CSRF check.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/csrf"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	addr          string
	svc           AuthService
	signer        *auth.Signer
	guard         *csrf.Guard
	logger        logging.Logger
	secureCookies bool
	corsOrigins   []string
}

func NewServer(cfg *config.Config, svc AuthService, signer *auth.Signer, guard *csrf.Guard, logger logging.Logger) *Server {
	gin.SetMode(cfg.GinMode)
	return &Server{
		addr:          cfg.EndpointAddr,
		svc:           svc,
		signer:        signer,
		guard:         guard,
		logger:        logger,
		secureCookies: cfg.GinMode == gin.ReleaseMode,
		corsOrigins:   cfg.CORSAllowedOrigins,
	}
}

// Router assembles the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.corsOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", csrfHeaderName},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(s.csrfMiddleware())

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/logout", s.handleLogout)
		authGroup.POST("/refresh-token", s.handleRefreshToken)
		authGroup.GET("/get-csrf", s.handleGetCSRF)
		authGroup.POST("/verify-email", s.handleVerifyEmail)
		authGroup.POST("/send-email-verification", s.handleSendEmailVerification)
	}

	userGroup := r.Group("/api/user", s.authMiddleware())
	{
		userGroup.GET("/info", s.handleUserInfo)
	}

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server starting", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info(ctx, "http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
