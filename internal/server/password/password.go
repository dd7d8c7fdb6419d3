// Package password wraps the hashing scheme used for stored credentials.
package password

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

// Hasher hashes plaintext passwords and checks candidates against stored
// hashes.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash string, plaintext string) bool
}

type BcryptHasher struct{}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(hash string, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
