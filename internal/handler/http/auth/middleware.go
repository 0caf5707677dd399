package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"portal-content/internal/domain/entity"
	"portal-content/internal/handler/http/respond"
	"portal-content/internal/observability/logging"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the token payload.
type Claims struct {
	Portal int64 `json:"portal"`
	jwt.RegisteredClaims
}

// Verifier checks bearer tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a verifier for HS256 tokens signed with secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(5*time.Second),
		),
	}
}

// Verify parses the Authorization header value and returns the caller's identity.
func (v *Verifier) Verify(authz string) (Identity, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return Identity{}, ErrMissingToken
	}

	var claims Claims
	_, err := v.parser.ParseWithClaims(strings.TrimPrefix(authz, prefix), &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	portal := entity.PortalID(claims.Portal)
	if !portal.IsValid() {
		return Identity{}, fmt.Errorf("%w: missing portal claim", ErrInvalidToken)
	}
	return Identity{Subject: claims.Subject, Portal: portal}, nil
}

// Authenticate attaches the caller's identity when an Authorization header is present.
// Requests without one pass through anonymously; a bad token is rejected with 401.
func (v *Verifier) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		id, err := v.Verify(authz)
		RecordAuthDuration(time.Since(start))
		if err != nil {
			RecordAuthRequest("failure")
			logging.WithRequestID(r.Context(), logging.FromContext(r.Context())).Warn("authentication failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()))
			respond.SafeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}

		RecordAuthRequest("success")
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Require rejects requests that carry no authenticated identity.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			RecordAuthRequest("anonymous")
			respond.SafeError(w, http.StatusUnauthorized, errors.New("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
