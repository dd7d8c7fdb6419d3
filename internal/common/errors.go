// Package common defines shared sentinel errors and crypto-random helpers
// used across client and server layers of AuthKeeper. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential errors. Unknown email and wrong password both collapse
	// into ErrorInvalidCredentials so the caller cannot tell them apart.
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Registration / account-state errors.
	ErrorEmailExists      = errors.New("email already in use")
	ErrorEmailNotVerified = errors.New("email not verified")

	// Verification-code lifecycle errors.
	ErrorAlreadyVerified = errors.New("email already verified")
	ErrorInvalidCode     = errors.New("invalid verification code")
	ErrorCodeExpired     = errors.New("verification code expired")

	// Mail collaborator errors.
	ErrorDeliveryFailure = errors.New("email delivery failed")
)
