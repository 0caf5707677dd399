package entity

import "fmt"

// Placement is the slot type a banner creative is designed for.
type Placement string

const (
	PlacementTop    Placement = "top"
	PlacementMedium Placement = "medium"
	PlacementRight  Placement = "right"
)

// Placements lists every placement in a stable order.
func Placements() []Placement {
	return []Placement{PlacementTop, PlacementMedium, PlacementRight}
}

// IsValid reports whether p is a known placement.
func (p Placement) IsValid() bool {
	switch p {
	case PlacementTop, PlacementMedium, PlacementRight:
		return true
	}
	return false
}

// ParsePlacement converts a raw string into a Placement.
func ParsePlacement(raw string) (Placement, error) {
	p := Placement(raw)
	if !p.IsValid() {
		return "", &ValidationError{Field: "placement", Message: fmt.Sprintf("invalid placement %q", raw)}
	}
	return p, nil
}

// Banner is an advertising creative. Banners are read-only to this service.
type Banner struct {
	ID             int64     `json:"id" yaml:"id"`
	Placement      Placement `json:"placement_type" yaml:"placement_type"`
	CreativeSource string    `json:"creative_source" yaml:"creative_source"`
	TargetRoute    string    `json:"target_route" yaml:"target_route"`
	Priority       int       `json:"priority" yaml:"priority"`
}
