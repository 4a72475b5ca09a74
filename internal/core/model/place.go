package model

import (
	"fmt"
	"strings"
)

// EntityType names the gazetteer table an entry belongs to.
type EntityType string

const (
	City    EntityType = "City"
	State   EntityType = "State"
	Country EntityType = "Country"
)

// DefaultPriority is the tie-break order used when two types score equally.
var DefaultPriority = []EntityType{City, State, Country}

// ParseEntityType accepts type names case-insensitively, plus a few
// common synonyms for administrative regions.
func ParseEntityType(s string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "city", "cities", "town":
		return City, nil
	case "state", "states", "region", "admin", "admin_name", "province":
		return State, nil
	case "country", "countries", "nation":
		return Country, nil
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

func (t EntityType) String() string { return string(t) }

type GazetteerEntry struct {
	CanonicalName string     `json:"canonical_name"`
	Type          EntityType `json:"entity_type"`
	Aliases       []string   `json:"aliases,omitempty"`
}
