package models

import "time"

// User is the identity record stored in the users table. PasswordHash never
// leaves the server; RefreshToken mirrors the single currently-valid refresh
// token (nil when logged out).
type User struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Verification is the 1:1 email-verification sub-record, populated on
	// user fetch. Nil when no sub-record exists yet.
	Verification *EmailVerification
}
