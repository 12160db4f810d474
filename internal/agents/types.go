// Package agents provides the entity data model: vital stats, lifecycle
// phases, intents, perception, and the species behaviors that turn a
// perception into an intent.
package agents

import "fmt"

// EntityID is a unique identifier for an entity. IDs start at 1; zero means
// "no entity".
type EntityID uint64

// Species is the kind tag other entities perceive.
type Species uint8

const (
	Herbivore Species = iota
	Carnivore
	Omnivore
)

// AllSpecies lists every species in a fixed order.
var AllSpecies = [...]Species{Herbivore, Carnivore, Omnivore}

func (s Species) String() string {
	switch s {
	case Herbivore:
		return "herbivore"
	case Carnivore:
		return "carnivore"
	case Omnivore:
		return "omnivore"
	}
	return fmt.Sprintf("Species(%d)", uint8(s))
}

// Preys reports whether s hunts other.
func (s Species) Preys(other Species) bool {
	switch s {
	case Carnivore:
		return other == Herbivore || other == Omnivore
	case Omnivore:
		return other == Herbivore
	}
	return false
}

// ParseSpecies maps a name back to its species.
func ParseSpecies(name string) (Species, error) {
	for _, s := range AllSpecies {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown species %q", name)
}
