package entity

import (
	"strconv"
	"strings"
)

// PortalID identifies a tenant (a branded front-end) of the platform.
type PortalID int64

// String returns the decimal representation of the portal ID.
func (p PortalID) String() string {
	return strconv.FormatInt(int64(p), 10)
}

// IsValid reports whether the portal ID is positive.
func (p PortalID) IsValid() bool {
	return p > 0
}

// ParsePortalID parses a positive decimal portal identifier.
func ParsePortalID(raw string) (PortalID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Field: "portal", Message: "portal is required"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Field: "portal", Message: "portal must be a positive integer"}
	}
	return PortalID(id), nil
}
