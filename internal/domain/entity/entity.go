// Package entity defines the core domain entities and validation logic for the application.
// It contains the portal-scoped content entities (companies, products, events, articles),
// comments, advertising banners, and the domain-specific errors shared by every layer.
package entity

import (
	"fmt"
	"slices"
	"time"
)

// Kind identifies the variant of a content entity.
type Kind string

const (
	KindCompany Kind = "company"
	KindProduct Kind = "product"
	KindEvent   Kind = "event"
	KindArticle Kind = "article"
)

// Kinds lists every content kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindCompany, KindProduct, KindEvent, KindArticle}
}

// IsValid reports whether k is a known content kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindCompany, KindProduct, KindEvent, KindArticle:
		return true
	}
	return false
}

// Resolvable reports whether ownership resolution applies to the kind.
// Articles are listed per portal but never redirected across portals.
func (k Kind) Resolvable() bool {
	return k == KindCompany || k == KindProduct || k == KindEvent
}

// ParseKind converts a raw string (singular or plural) into a Kind.
func ParseKind(raw string) (Kind, error) {
	switch raw {
	case "company", "companies":
		return KindCompany, nil
	case "product", "products":
		return KindProduct, nil
	case "event", "events":
		return KindEvent, nil
	case "article", "articles":
		return KindArticle, nil
	}
	return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("invalid kind %q", raw)}
}

// Entity represents a portal-scoped content entity.
// Fields that do not apply to a kind are left at their zero value:
// ParentID and ParentName are set for products and events, StartsAt and Location for events.
type Entity struct {
	ID         string     `json:"id" yaml:"id"`
	Kind       Kind       `json:"kind" yaml:"-"`
	Title      string     `json:"title" yaml:"title"`
	Summary    string     `json:"summary,omitempty" yaml:"summary,omitempty"`
	URL        string     `json:"url,omitempty" yaml:"url,omitempty"`
	ParentID   string     `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	ParentName string     `json:"parent_name,omitempty" yaml:"parent_name,omitempty"`
	StartsAt   *time.Time `json:"starts_at,omitempty" yaml:"starts_at,omitempty"`
	Location   string     `json:"location,omitempty" yaml:"location,omitempty"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	Portals    []PortalID `json:"portals,omitempty" yaml:"portals,omitempty"`
}

// OwnedBy reports whether the entity carries an ownership record for portal.
func (e *Entity) OwnedBy(portal PortalID) bool {
	return slices.Contains(e.Portals, portal)
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := *e
	if e.StartsAt != nil {
		t := *e.StartsAt
		out.StartsAt = &t
	}
	out.Portals = slices.Clone(e.Portals)
	return &out
}

// Ownership associates a content entity with the portal that owns it.
type Ownership struct {
	EntityID string
	Portal   PortalID
}
