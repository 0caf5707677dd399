package content

import (
	"net/http"

	"portal-content/internal/domain/entity"
)

// Register registers the content routes with the given mux.
func Register(mux *http.ServeMux, svc interface {
	Lister
	Getter
}, resolver Resolver) {
	mux.Handle("GET /portals/{portal}/{kind}", ListHandler{Svc: svc})

	for _, kind := range entity.Kinds() {
		pattern := "GET " + EntityPath(kind, "{id}")
		if kind.Resolvable() {
			mux.Handle(pattern, ResolveHandler{Resolver: resolver, Kind: kind})
			continue
		}
		mux.Handle(pattern, GetHandler{Svc: svc, Kind: kind})
	}
}
