package models

import "time"

// EmailVerification tracks the one-time code lifecycle for a user's email
// address. Once Verified flips to true, Code and ExpiresAt are cleared and
// never repopulated; verification cannot be undone.
type EmailVerification struct {
	UserID     string
	Code       *int64
	ExpiresAt  *time.Time
	Verified   bool
	VerifiedAt *time.Time
}

// Pending reports whether an unexpired code is waiting to be checked at
// the given instant.
func (v *EmailVerification) Pending(now time.Time) bool {
	return !v.Verified && v.Code != nil && v.ExpiresAt != nil && now.Before(*v.ExpiresAt)
}
