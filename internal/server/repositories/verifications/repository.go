package verifications

import (
	"context"
	"time"
)

// Repository is the persistence contract for email-verification records.
type Repository interface {
	// SetPending stores a fresh code and expiry for the user. It has no
	// effect on an already-verified record.
	SetPending(ctx context.Context, userID string, code int64, expiresAt time.Time) error
	// MarkVerified flips the record to verified and clears the code and
	// expiry. Returns common.ErrorNotFound when no pending record exists.
	MarkVerified(ctx context.Context, userID string, at time.Time) error
}
