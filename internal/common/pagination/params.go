package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Params represents a requested window.
type Params struct {
	Limit  int // Items per page
	Offset int // Items to skip
}

// ParseQueryParams extracts limit and offset from the query string.
// Missing values take the configured defaults. Values that are not integers
// are rejected; out-of-range integers are clamped by Normalize.
func ParseQueryParams(r *http.Request, config Config) (Params, error) {
	params := Params{Limit: config.DefaultLimit}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return params, fmt.Errorf("invalid query parameter: limit must be an integer")
		}
		params.Limit = limit
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return params, fmt.Errorf("invalid query parameter: offset must be an integer")
		}
		params.Offset = offset
	}

	return params.Normalize(config), nil
}
