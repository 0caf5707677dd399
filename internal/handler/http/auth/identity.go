// Package auth authenticates API callers from HS256 bearer tokens.
//
// Tokens carry the caller's subject ("sub") and home portal ("portal").
// Reads are open to anonymous callers, who name their portal with the
// X-Portal-ID header; comment writes require a valid token.
package auth

import (
	"context"
	"net/http"

	"portal-content/internal/domain/entity"
)

// PortalHeader names the requesting portal for anonymous reads.
const PortalHeader = "X-Portal-ID"

// Identity is an authenticated caller.
type Identity struct {
	Subject string
	Portal  entity.PortalID
}

type ctxKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller's identity, if the request was authenticated.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// RequestingPortal returns the portal a request is made on behalf of.
// The token's portal claim wins over the X-Portal-ID header.
func RequestingPortal(r *http.Request) (entity.PortalID, error) {
	if id, ok := FromContext(r.Context()); ok && id.Portal.IsValid() {
		return id.Portal, nil
	}
	return entity.ParsePortalID(r.Header.Get(PortalHeader))
}
