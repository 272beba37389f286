package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret we accept (256 bits).
const MinSecretLength = 32

var ErrWeakSecret = errors.New("jwtx: secret must be at least 32 bytes")

// Signer is anything that can turn claims into a compact token.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs with a shared secret.
type HS256Signer struct {
	secret []byte
}

// NewHS256Signer copies secret and rejects anything shorter than
// MinSecretLength.
func NewHS256Signer(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &HS256Signer{secret: append([]byte(nil), secret...)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

func (s *HS256Signer) Sign(c Claims) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}
