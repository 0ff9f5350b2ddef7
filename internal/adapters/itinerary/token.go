// internal/adapters/itinerary/token.go
package itinerary

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// ServiceID identifies this service to its peers.
	ServiceID = "analytics-reports-service"

	defaultTokenTTL = 5 * time.Minute
)

// ServiceClaims are the claims of a service-to-service token.
type ServiceClaims struct {
	ServiceID string `json:"serviceId"`
	Message   string `json:"message"`
	jwt.RegisteredClaims
}

// TokenSigner issues short-lived HS256 service tokens.
type TokenSigner struct {
	secret    []byte
	serviceID string
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenSigner creates a signer. A zero ttl falls back to five minutes.
func NewTokenSigner(secret, serviceID string, ttl time.Duration) *TokenSigner {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if serviceID == "" {
		serviceID = ServiceID
	}
	return &TokenSigner{
		secret:    []byte(secret),
		serviceID: serviceID,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Sign returns a token carrying purpose in the message claim.
func (s *TokenSigner) Sign(purpose string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("service token secret is not configured")
	}

	now := s.now()
	claims := ServiceClaims{
		ServiceID: s.serviceID,
		Message:   purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign service token: %w", err)
	}
	return signed, nil
}
