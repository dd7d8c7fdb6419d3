package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/mail"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// VerificationManager owns the email-verification code lifecycle: minting
// codes, delivering them, persisting the pending state, and checking
// submitted codes. Delivery always happens before persistence, so a failed
// send leaves no pending code behind.
type VerificationManager struct {
	db     dbx.DBTX
	repos  repomanager.RepositoryManager
	mailer mail.Mailer
	window time.Duration
	logger logging.Logger

	now func() time.Time
}

func NewVerificationManager(db dbx.DBTX, repos repomanager.RepositoryManager, mailer mail.Mailer, window time.Duration, logger logging.Logger) *VerificationManager {
	return &VerificationManager{
		db:     db,
		repos:  repos,
		mailer: mailer,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

// GenerateCode mints a fresh six-digit code.
func (m *VerificationManager) GenerateCode() (int64, error) {
	return common.GenerateNumericCode()
}

// Deliver sends the code to the given address. Any transport failure is
// reported as common.ErrorDeliveryFailure.
func (m *VerificationManager) Deliver(ctx context.Context, code int64, email string) error {
	if err := m.mailer.SendVerificationEmail(ctx, code, email); err != nil {
		m.logger.Error(ctx, "verification email send failed", "error", err)
		return fmt.Errorf("%w: %v", common.ErrorDeliveryFailure, err)
	}
	return nil
}

// Persist stores the code as pending on the given connection or transaction,
// with the expiry window counted from now.
func (m *VerificationManager) Persist(ctx context.Context, db dbx.DBTX, userID string, code int64) error {
	return m.repos.Verifications(db).SetPending(ctx, userID, code, m.now().Add(m.window))
}

// Issue mints, delivers, and persists a fresh code for the user. Used when
// re-sending outside of registration.
func (m *VerificationManager) Issue(ctx context.Context, user *models.User) error {
	code, err := m.GenerateCode()
	if err != nil {
		return common.ErrorInternal
	}
	if err := m.Deliver(ctx, code, user.Email); err != nil {
		return err
	}
	return m.Persist(ctx, m.db, user.ID, code)
}

// Check validates a submitted code for the given email and, on success,
// marks the account verified. Failures are reported in a fixed order:
// unknown user, already verified, code mismatch, code expired. A mismatched
// code never reveals whether the stored code has expired.
func (m *VerificationManager) Check(ctx context.Context, email string, code int64) error {
	user, err := m.repos.Users(m.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	v := user.Verification
	if v != nil && v.Verified {
		return common.ErrorAlreadyVerified
	}
	if v == nil || v.Code == nil || *v.Code != code {
		return common.ErrorInvalidCode
	}
	if v.ExpiresAt == nil || !m.now().Before(*v.ExpiresAt) {
		return common.ErrorCodeExpired
	}

	if err := m.repos.Verifications(m.db).MarkVerified(ctx, user.ID, m.now()); err != nil {
		m.logger.Error(ctx, "marking email verified failed", "error", err, "userId", user.ID)
		return common.ErrorInternal
	}

	return nil
}
