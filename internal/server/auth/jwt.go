// Package auth issues and verifies the HS256-signed access and refresh
// tokens that back the session cookies.
package auth

import (
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// KeyClass selects which of the two signing secrets a token belongs to.
// Access and refresh tokens are never interchangeable.
type KeyClass int

const (
	AccessToken KeyClass = iota
	RefreshToken
)

// Claims carries the registered claims plus the user identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Signer issues and verifies tokens for both key classes.
type Signer struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
}

func NewSigner(accessSecret, refreshSecret []byte, accessValidity, refreshValidity time.Duration) *Signer {
	return &Signer{
		accessSecret:    accessSecret,
		refreshSecret:   refreshSecret,
		accessValidity:  accessValidity,
		refreshValidity: refreshValidity,
	}
}

func (s *Signer) secret(class KeyClass) []byte {
	if class == RefreshToken {
		return s.refreshSecret
	}
	return s.accessSecret
}

func (s *Signer) validity(class KeyClass) time.Duration {
	if class == RefreshToken {
		return s.refreshValidity
	}
	return s.accessValidity
}

// Issue signs a token of the given class for userID, with the class's
// configured validity window.
func (s *Signer) Issue(userID string, class KeyClass) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.validity(class))),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(s.secret(class))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// IssueAccess signs an access token for userID.
func (s *Signer) IssueAccess(userID string) (string, error) {
	return s.Issue(userID, AccessToken)
}

// IssueRefresh signs a refresh token for userID.
func (s *Signer) IssueRefresh(userID string) (string, error) {
	return s.Issue(userID, RefreshToken)
}

// Verify parses tokenString against the given class's secret and returns
// the embedded user ID. Every failure mode (expired, forged, malformed,
// wrong class) collapses to common.ErrorUnauthorized so callers cannot
// leak the distinction.
func (s *Signer) Verify(tokenString string, class KeyClass) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret(class), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", common.ErrorUnauthorized
	}

	if !token.Valid {
		return "", common.ErrorUnauthorized
	}

	return claims.UserID, nil
}

// AccessValidity reports the configured access token lifetime.
func (s *Signer) AccessValidity() time.Duration { return s.accessValidity }

// RefreshValidity reports the configured refresh token lifetime.
func (s *Signer) RefreshValidity() time.Duration { return s.refreshValidity }
