package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "abc", FromContext(WithRequestID(context.Background(), "abc")))
}

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"req-123_abc.1", true},
		{uuid.NewString(), true},
		{"", false},
		{strings.Repeat("a", 129), false},
		{"has space", false},
		{"line\nbreak", false},
		{"<script>", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.id), "id %q", tt.id)
	}
}

func TestMiddleware(t *testing.T) {
	var captured string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("propagates valid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/banners/top", nil)
		req.Header.Set(RequestIDHeader, "edge-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "edge-42", captured)
		assert.Equal(t, "edge-42", rec.Header().Get(RequestIDHeader))
	})

	t.Run("generates when missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/banners/top", nil))

		_, err := uuid.Parse(captured)
		assert.NoError(t, err)
		assert.Equal(t, captured, rec.Header().Get(RequestIDHeader))
	})

	t.Run("replaces invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/banners/top", nil)
		req.Header.Set(RequestIDHeader, "bad id\r\n")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.NotEqual(t, "bad id\r\n", captured)
		_, err := uuid.Parse(captured)
		assert.NoError(t, err)
	})
}
