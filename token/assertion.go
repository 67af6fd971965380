package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAssertionTTL is the lifetime of a signed assertion.
const DefaultAssertionTTL = 5 * time.Minute

// CreateAssertion builds the compact JWT presented to the token endpoint. The
// application key is both issuer and subject.
func CreateAssertion(key string, signer Signer, now time.Time, ttl time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("assertion requires an application key")
	}
	claims := jwt.MapClaims{
		"iss": key,
		"sub": key,
		"exp": now.Add(ttl).Unix(),
	}
	return signer.Sign(claims)
}
