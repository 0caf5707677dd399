package pagination

// Metadata contains pagination information for API responses.
type Metadata struct {
	Total   int64 `json:"total"`    // Total number of items independent of the window
	Limit   int   `json:"limit"`    // Items per page
	Offset  int   `json:"offset"`   // Items skipped
	HasMore bool  `json:"has_more"` // Whether items exist beyond this window
}

// NewMetadata builds metadata for a window that returned `returned` items.
func NewMetadata(params Params, total int64, returned int) Metadata {
	return Metadata{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: HasMore(total, params.Offset, returned),
	}
}
