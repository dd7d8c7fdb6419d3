// Package csrf implements the double-submit token scheme: a random secret
// travels in a cookie, and state-changing requests must echo a token
// derived from that secret in a request header.
package csrf

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// Codec derives presentable tokens from cookie secrets and checks them.
type Codec interface {
	Derive(secret string) string
	Verify(secret string, presented string) bool
}

// HMACCodec binds tokens to a process-wide key, so a token is only valid
// together with the exact secret it was derived from.
type HMACCodec struct {
	key []byte
}

func NewHMACCodec(key []byte) *HMACCodec {
	return &HMACCodec{key: key}
}

func (c *HMACCodec) Derive(secret string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *HMACCodec) Verify(secret string, presented string) bool {
	expected, err := hex.DecodeString(c.Derive(secret))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(presented)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}

// Guard is the request-facing surface: it mints cookie secrets, derives
// the matching header tokens, and validates the pair.
type Guard struct {
	codec Codec
}

func NewGuard(codec Codec) *Guard {
	return &Guard{codec: codec}
}

// NewSecret returns a fresh random value for the csrf cookie.
func (g *Guard) NewSecret() (string, error) {
	return common.MakeRandHexString(32)
}

// Token derives the header token clients must echo for the given secret.
func (g *Guard) Token(secret string) string {
	return g.codec.Derive(secret)
}

// Verify checks a presented header token against the cookie secret.
func (g *Guard) Verify(secret string, presented string) bool {
	if secret == "" || presented == "" {
		return false
	}
	return g.codec.Verify(secret, presented)
}

// IsSafeMethod reports whether the method is exempt from token checks.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
