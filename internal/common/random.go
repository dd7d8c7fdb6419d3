package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// verification codes are drawn from [codeMin, codeMax]; every value in that
// range renders as exactly six decimal digits, so no string padding is needed.
const (
	codeMin = 100000
	codeMax = 999999
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes. The resulting string is twice as long as size, since each byte
// expands to two hex characters.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateNumericCode draws a uniform random verification code in
// [100000, 999999]. The range guarantees a six-digit decimal rendering.
func GenerateNumericCode() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return 0, err
	}
	return codeMin + n.Int64(), nil
}
