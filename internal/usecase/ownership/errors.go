// Package ownership resolves which portal a content entity belongs to, so that
// a request arriving on the wrong portal can be redirected instead of served.
package ownership

import (
	"errors"
	"fmt"

	"portal-content/internal/resilience/faultclass"
)

// ErrUnknownPolicy is returned by ParsePolicy for an unrecognised policy name.
var ErrUnknownPolicy = errors.New("unknown ownership lookup failure policy")

// errNotInSnapshot marks an entity the fallback dataset has no record of.
// It is fallback-eligible so an exhausted lookup reaches the failure policy.
var errNotInSnapshot = fmt.Errorf("ownership: entity not in snapshot: %w", faultclass.ErrSchemaMissing)
