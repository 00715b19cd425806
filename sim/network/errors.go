package network

import "fmt"

// ReferentialError reports a reference to an entity id that the registry
// does not hold, e.g. a Demand naming an unknown SKU.
type ReferentialError struct {
	Kind   EntityKind // kind of the missing entity
	ID     int64      // missing id (0 when looked up by name)
	Name   string     // missing name, for name-based lookups
	Source string     // who holds the dangling reference
}

func (e *ReferentialError) Error() string {
	target := fmt.Sprintf("%s %d", e.Kind, e.ID)
	if e.Name != "" {
		target = fmt.Sprintf("%s %q", e.Kind, e.Name)
	}
	if e.Source == "" {
		return fmt.Sprintf("unknown %s", target)
	}
	return fmt.Sprintf("%s references unknown %s", e.Source, target)
}
