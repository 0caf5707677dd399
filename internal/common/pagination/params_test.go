package pagination_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"portal-content/internal/common/pagination"
)

func TestParseQueryParams(t *testing.T) {
	t.Parallel()

	config := pagination.DefaultConfig()

	tests := []struct {
		name      string
		query     string
		want      pagination.Params
		wantError bool
	}{
		{
			name:  "valid parameters",
			query: "limit=20&offset=40",
			want:  pagination.Params{Limit: 20, Offset: 40},
		},
		{
			name:  "no parameters (use defaults)",
			query: "",
			want:  pagination.Params{Limit: 10, Offset: 0},
		},
		{
			name:  "limit above max is clamped",
			query: "limit=500",
			want:  pagination.Params{Limit: 50},
		},
		{
			name:  "zero limit takes default",
			query: "limit=0",
			want:  pagination.Params{Limit: 10},
		},
		{
			name:  "negative offset becomes zero",
			query: "offset=-5",
			want:  pagination.Params{Limit: 10, Offset: 0},
		},
		{
			name:      "non-numeric limit",
			query:     "limit=ten",
			wantError: true,
		},
		{
			name:      "non-numeric offset",
			query:     "offset=1.5",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/articles/art-42/comments?"+tt.query, nil)
			got, err := pagination.ParseQueryParams(req, config)

			if tt.wantError {
				if err == nil {
					t.Fatalf("ParseQueryParams(%q) expected error", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQueryParams(%q) unexpected error: %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("ParseQueryParams(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}
