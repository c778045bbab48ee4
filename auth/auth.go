// Package auth decides whether a credential carries a capability. The ledger
// core never sees credentials; handlers gate admin routes through a Policy.
package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CapabilityAdmin guards festival creation, bin generation, and reporting.
const CapabilityAdmin = "admin"

// Policy answers authorization questions for already-presented credentials.
type Policy interface {
	Authorize(capability, credential string) bool
}

// TokenPolicy issues and verifies HS256 tokens whose claims carry the granted
// capability.
type TokenPolicy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenPolicy(secret string, ttl time.Duration) *TokenPolicy {
	return &TokenPolicy{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type capabilityClaims struct {
	Capability string `json:"cap"`
	jwt.RegisteredClaims
}

// Issue mints a token granting one capability for the policy's ttl.
func (p *TokenPolicy) Issue(capability string) (string, error) {
	now := p.now()
	claims := capabilityClaims{
		Capability: capability,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (p *TokenPolicy) Authorize(capability, credential string) bool {
	claims := &capabilityClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil || !token.Valid {
		return false
	}
	return claims.Capability == capability
}

// CheckPassword compares the admin password in constant time.
func CheckPassword(expected, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
