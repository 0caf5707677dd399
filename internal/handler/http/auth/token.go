package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"portal-content/internal/domain/entity"
)

// IssueToken signs an HS256 token for subject on portal, valid for ttl.
// The identity provider normally issues tokens; this is used by tooling and tests.
func IssueToken(secret, subject string, portal entity.PortalID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Portal: int64(portal),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
