// Package services contains server-side business logic: account
// registration, credential checks, session token issuance, and the
// email-verification gate in front of login.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// dummyPasswordHash is compared against when the email is unknown, so the
// unknown-email and wrong-password paths take comparable time.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// PublicUser is the outward-facing shape of an account record. It never
// carries the password hash or the refresh token.
type PublicUser struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	User   *PublicUser
	Tokens *TokenPair
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	UserName string
	Email    string
	Password string
}

// Service orchestrates accounts and sessions on top of the repositories,
// the password hasher, the token signer, and the verification manager.
type Service struct {
	db           *sql.DB
	repos        repomanager.RepositoryManager
	hasher       password.Hasher
	signer       *auth.Signer
	verification *VerificationManager
	logger       logging.Logger
}

func NewService(db *sql.DB, repos repomanager.RepositoryManager, hasher password.Hasher, signer *auth.Signer, verification *VerificationManager, logger logging.Logger) *Service {
	return &Service{
		db:           db,
		repos:        repos,
		hasher:       hasher,
		signer:       signer,
		verification: verification,
		logger:       logger,
	}
}

func publicUser(u *models.User) *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Register creates an account with a pending verification code. The code is
// emailed before anything is written, so a delivery failure leaves no trace
// of the attempted registration.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*PublicUser, error) {
	users := s.repos.Users(s.db)

	if _, err := users.GetByEmail(ctx, input.Email); err == nil {
		return nil, common.ErrorEmailExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	code, err := s.verification.GenerateCode()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.verification.Deliver(ctx, code, input.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		UserName:     input.UserName,
		PasswordHash: hash,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.verification.Persist(ctx, tx, user.ID, code)
	}); err != nil {
		s.logger.Error(ctx, "registration failed", "error", err)
		return nil, common.ErrorInternal
	}

	return publicUser(user), nil
}

// Login checks credentials and, for verified accounts, mints a token pair
// and stores the refresh token on the user row. An unverified account with
// correct credentials receives a fresh verification code instead of tokens.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email string, plaintext string) (*LoginResult, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(dummyPasswordHash, plaintext)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(user.PasswordHash, plaintext) {
		return nil, common.ErrorInvalidCredentials
	}

	if user.Verification == nil || !user.Verification.Verified {
		if err := s.verification.Issue(ctx, user); err != nil {
			return nil, err
		}
		return nil, common.ErrorEmailNotVerified
	}

	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: publicUser(user), Tokens: tokens}, nil
}

func (s *Service) issueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := s.signer.IssueAccess(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.signer.IssueRefresh(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repos.Users(s.db).UpdateRefreshToken(ctx, userID, refresh); err != nil {
		s.logger.Error(ctx, "storing refresh token failed", "error", err, "userId", userID)
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshAccess exchanges a valid refresh token for a new access token. The
// presented token must equal the one stored on the user row exactly; the
// stored refresh token is left in place.
func (s *Service) RefreshAccess(ctx context.Context, userID string, presented string) (string, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", common.ErrorUnauthorized
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		return "", common.ErrorUnauthorized
	}

	access, err := s.signer.IssueAccess(userID)
	if err != nil {
		return "", common.ErrorInternal
	}

	return access, nil
}

// Logout clears the stored refresh token. It never fails from the caller's
// point of view; a missing user or a storage error just gets logged.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.repos.Users(s.db).ClearRefreshToken(ctx, userID); err != nil {
		s.logger.Warn(ctx, "clearing refresh token failed", "error", err, "userId", userID)
	}
	return nil
}

// VerifyEmail checks a submitted verification code for the given address.
func (s *Service) VerifyEmail(ctx context.Context, email string, code int64) error {
	return s.verification.Check(ctx, email, code)
}

// ResendVerification mints and delivers a fresh code for an unverified
// account.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	if user.Verification != nil && user.Verification.Verified {
		return common.ErrorAlreadyVerified
	}

	return s.verification.Issue(ctx, user)
}

// GetUser returns the public view of the account.
func (s *Service) GetUser(ctx context.Context, userID string) (*PublicUser, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return publicUser(user), nil
}
