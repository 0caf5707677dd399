// Package comment serves the article comment routes.
package comment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"portal-content/internal/common/pagination"
	"portal-content/internal/domain/entity"
	"portal-content/internal/handler/http/auth"
	"portal-content/internal/handler/http/requestid"
	"portal-content/internal/handler/http/respond"
	"portal-content/internal/observability/logging"
	commentUC "portal-content/internal/usecase/comment"
)

// Service is the comment use-case surface the handlers need.
type Service interface {
	Create(ctx context.Context, articleID, authorID, content string) (*entity.Comment, error)
	Delete(ctx context.Context, commentID, requesterID string) error
	Page(ctx context.Context, articleID string, limit, offset int) (*commentUC.Page, error)
}

// PageHandler serves GET /articles/{id}/comments?limit&offset.
type PageHandler struct {
	Svc        Service
	Pagination pagination.Config
}

func (h PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	logger := logging.WithRequestID(ctx, logging.FromContext(ctx))
	reqID := requestid.FromContext(ctx)

	params, err := pagination.ParseQueryParams(r, h.Pagination)
	if err != nil {
		pagination.RecordError("validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	pagination.LogRequest(logger, reqID, params)

	page, err := h.Svc.Page(ctx, r.PathValue("id"), params.Limit, params.Offset)
	if err != nil {
		pagination.RecordError("service")
		respond.DomainError(w, err)
		return
	}

	items := make([]DTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toDTO(&page.Items[i]))
	}
	resp := pagination.NewResponse(items, pagination.Metadata{
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore,
	})

	pagination.RecordRequest(http.StatusOK, page.Offset)
	pagination.RecordDuration("handler", time.Since(start).Seconds())
	pagination.LogResponse(logger, reqID, params, len(items), time.Since(start), http.StatusOK)

	respond.Tier(w, page.Tier)
	respond.JSON(w, http.StatusOK, resp)
}

// CreateHandler serves POST /articles/{id}/comments. The author is the
// authenticated subject; a body cannot choose it.
type CreateHandler struct{ Svc Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respond.SafeError(w, http.StatusUnauthorized, auth.ErrMissingToken)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("request body must be a JSON object with a content field"))
		return
	}

	c, err := h.Svc.Create(r.Context(), r.PathValue("id"), id.Subject, req.Content)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	w.Header().Set("Location", "/comments/"+c.ID)
	respond.JSON(w, http.StatusCreated, toDTO(c))
}

// DeleteHandler serves DELETE /comments/{id}. Only the author may delete.
type DeleteHandler struct{ Svc Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respond.SafeError(w, http.StatusUnauthorized, auth.ErrMissingToken)
		return
	}
	if err := h.Svc.Delete(r.Context(), r.PathValue("id"), id.Subject); err != nil {
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
