package comment_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal-content/internal/common/pagination"
	"portal-content/internal/domain/entity"
	"portal-content/internal/handler/http/auth"
	"portal-content/internal/handler/http/comment"
	"portal-content/internal/handler/http/respond"
	"portal-content/internal/resilience/tier"
	commentUC "portal-content/internal/usecase/comment"
)

type stubService struct {
	created   *entity.Comment
	createErr error
	deleteErr error
	page      *commentUC.Page
	pageErr   error

	gotArticle   string
	gotAuthor    string
	gotContent   string
	gotComment   string
	gotRequester string
	gotLimit     int
	gotOffset    int
}

func (s *stubService) Create(_ context.Context, articleID, authorID, content string) (*entity.Comment, error) {
	s.gotArticle, s.gotAuthor, s.gotContent = articleID, authorID, content
	return s.created, s.createErr
}

func (s *stubService) Delete(_ context.Context, commentID, requesterID string) error {
	s.gotComment, s.gotRequester = commentID, requesterID
	return s.deleteErr
}

func (s *stubService) Page(_ context.Context, articleID string, limit, offset int) (*commentUC.Page, error) {
	s.gotArticle, s.gotLimit, s.gotOffset = articleID, limit, offset
	return s.page, s.pageErr
}

func newMux(svc comment.Service) *http.ServeMux {
	mux := http.NewServeMux()
	comment.Register(mux, svc, pagination.DefaultConfig(), nil)
	return mux
}

func asUser(req *http.Request, subject string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{Subject: subject}))
}

var created = time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)

func TestPageHandler(t *testing.T) {
	items := make([]entity.Comment, 0, 2)
	for serial := 12; serial > 10; serial-- {
		items = append(items, entity.Comment{
			ID:        entity.FormatCommentID("art-42", serial),
			ArticleID: "art-42",
			AuthorID:  "u-1",
			Content:   fmt.Sprintf("comment %d", serial),
			CreatedAt: created,
		})
	}
	svc := &stubService{page: &commentUC.Page{
		Items:   items,
		Total:   12,
		Limit:   10,
		Offset:  10,
		HasMore: false,
		Tier:    tier.Outcome{Tier: tier.Live},
	}}

	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/art-42/comments?limit=10&offset=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "art-42", svc.gotArticle)
	assert.Equal(t, 10, svc.gotLimit)
	assert.Equal(t, 10, svc.gotOffset)
	assert.Equal(t, tier.Live, rec.Header().Get(respond.TierHeader))

	var got pagination.Response[comment.DTO]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, pagination.Metadata{Total: 12, Limit: 10, Offset: 10}, got.Pagination)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "art-42-00012", got.Data[0].ID)
	assert.Equal(t, "art-42-00011", got.Data[1].ID)
}

func TestPageHandler_Defaults(t *testing.T) {
	svc := &stubService{page: &commentUC.Page{Items: []entity.Comment{}, Limit: 10}}
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/art-1/comments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, svc.gotLimit)
	assert.Equal(t, 0, svc.gotOffset)
	assert.JSONEq(t, `{"data":[],"pagination":{"total":0,"limit":10,"offset":0,"has_more":false}}`, rec.Body.String())
}

func TestPageHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		svcErr   error
		wantCode int
	}{
		{name: "non-integer limit", url: "/articles/art-1/comments?limit=ten", wantCode: http.StatusBadRequest},
		{name: "invalid article id", url: "/articles/art-1/comments", svcErr: &entity.ValidationError{Field: "id_article", Message: "id contains invalid characters"}, wantCode: http.StatusBadRequest},
		{name: "unknown failure", url: "/articles/art-1/comments", svcErr: fmt.Errorf("comments page: %w", context.Canceled), wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newMux(&stubService{pageErr: tt.svcErr}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestCreateHandler(t *testing.T) {
	svc := &stubService{created: &entity.Comment{
		ID:        "art-42-00001",
		ArticleID: "art-42",
		AuthorID:  "u-7",
		Content:   "first!",
		CreatedAt: created,
	}}
	req := httptest.NewRequest(http.MethodPost, "/articles/art-42/comments", strings.NewReader(`{"content":"first!","author_id":"someone-else"}`))
	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, asUser(req, "u-7"))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "art-42", svc.gotArticle)
	assert.Equal(t, "u-7", svc.gotAuthor)
	assert.Equal(t, "first!", svc.gotContent)
	assert.Equal(t, "/comments/art-42-00001", rec.Header().Get("Location"))
	assert.JSONEq(t, `{"id_comment":"art-42-00001","id_article":"art-42","author_id":"u-7","content":"first!","created_at":"2026-05-02T12:00:00Z"}`, rec.Body.String())
}

func TestCreateHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		subject  string
		svcErr   error
		wantCode int
		wantBody string
	}{
		{name: "anonymous", body: `{"content":"x"}`, wantCode: http.StatusUnauthorized},
		{name: "malformed body", body: `{"content":`, subject: "u-1", wantCode: http.StatusBadRequest},
		{name: "empty content", body: `{"content":""}`, subject: "u-1", svcErr: &entity.ValidationError{Field: "content", Message: "content is required"}, wantCode: http.StatusBadRequest, wantBody: `{"error":"validation error on field 'content': content is required"}`},
		{name: "serial conflict exhausted", body: `{"content":"x"}`, subject: "u-1", svcErr: fmt.Errorf("create comment: %w", entity.ErrConflict), wantCode: http.StatusConflict},
		{name: "not provisioned", body: `{"content":"x"}`, subject: "u-1", svcErr: fmt.Errorf("create comment: %w", entity.ErrNotProvisioned), wantCode: http.StatusServiceUnavailable, wantBody: `{"error":"feature not available"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{createErr: tt.svcErr}
			req := httptest.NewRequest(http.MethodPost, "/articles/art-1/comments", strings.NewReader(tt.body))
			if tt.subject != "" {
				req = asUser(req, tt.subject)
			}
			rec := httptest.NewRecorder()
			newMux(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestCreateHandler_WriteLimitApplied(t *testing.T) {
	mux := http.NewServeMux()
	limited := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	svc := &stubService{}
	comment.Register(mux, svc, pagination.DefaultConfig(), limited)

	req := asUser(httptest.NewRequest(http.MethodPost, "/articles/art-1/comments", strings.NewReader(`{"content":"x"}`)), "u-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Empty(t, svc.gotArticle)

	// Reads are not limited.
	svc.page = &commentUC.Page{Items: []entity.Comment{}}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/art-1/comments", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteHandler(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		svcErr   error
		wantCode int
	}{
		{name: "author deletes", subject: "u-1", wantCode: http.StatusNoContent},
		{name: "not the author", subject: "u-2", svcErr: fmt.Errorf("delete comment art-1-00001: %w", entity.ErrUnauthorized), wantCode: http.StatusForbidden},
		{name: "missing comment", subject: "u-1", svcErr: fmt.Errorf("delete comment: %w", entity.ErrNotFound), wantCode: http.StatusNotFound},
		{name: "anonymous", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{deleteErr: tt.svcErr}
			req := httptest.NewRequest(http.MethodDelete, "/comments/art-1-00001", nil)
			if tt.subject != "" {
				req = asUser(req, tt.subject)
			}
			rec := httptest.NewRecorder()
			newMux(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.subject != "" {
				assert.Equal(t, "art-1-00001", svc.gotComment)
				assert.Equal(t, tt.subject, svc.gotRequester)
			}
		})
	}
}
