package entity

import (
	"fmt"
	"regexp"
)

// maxIDLength bounds externally supplied identifiers.
const maxIDLength = 128

// idPattern accepts slug-like identifiers such as "art-42" or "acme_corp.2024".
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateEntityID validates a globally unique content entity or article identifier.
// Returns a ValidationError naming field if the identifier is empty, too long,
// or contains characters outside the slug alphabet.
func ValidateEntityID(field, id string) error {
	if id == "" {
		return &ValidationError{Field: field, Message: "id is required"}
	}
	if len(id) > maxIDLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("id must not exceed %d characters", maxIDLength),
		}
	}
	if !idPattern.MatchString(id) {
		return &ValidationError{Field: field, Message: "id contains invalid characters"}
	}
	return nil
}

// ValidateActorID validates an identity supplied by the session provider.
func ValidateActorID(field, id string) error {
	if id == "" {
		return &ValidationError{Field: field, Message: "identity is required"}
	}
	if len(id) > maxIDLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("identity must not exceed %d characters", maxIDLength),
		}
	}
	return nil
}
