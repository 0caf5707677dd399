package comment

import (
	"net/http"

	"portal-content/internal/common/pagination"
	"portal-content/internal/handler/http/auth"
)

// Register registers the comment routes with the given mux.
// Writes require an authenticated identity and pass through writeLimit.
func Register(mux *http.ServeMux, svc Service, paginationCfg pagination.Config, writeLimit func(http.Handler) http.Handler) {
	if writeLimit == nil {
		writeLimit = func(h http.Handler) http.Handler { return h }
	}
	mux.Handle("GET /articles/{id}/comments", PageHandler{Svc: svc, Pagination: paginationCfg})
	mux.Handle("POST /articles/{id}/comments", auth.Require(writeLimit(CreateHandler{Svc: svc})))
	mux.Handle("DELETE /comments/{id}", auth.Require(writeLimit(DeleteHandler{Svc: svc})))
}
