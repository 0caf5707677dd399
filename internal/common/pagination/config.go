// Package pagination provides limit/offset pagination primitives shared by
// list endpoints: parameter parsing, clamping, and response metadata.
package pagination

// Config holds pagination configuration settings.
type Config struct {
	DefaultLimit int // Items per page when the caller gives none (typically 10)
	MaxLimit     int // Maximum allowed items per page (typically 50)
}

// DefaultConfig returns the default pagination configuration.
// Default values: limit=10, max=50
func DefaultConfig() Config {
	return Config{
		DefaultLimit: 10,
		MaxLimit:     50,
	}
}
