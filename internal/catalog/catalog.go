// Package catalog holds the fixed list of puzzle events a user can log
// attendance for. The catalog is loaded once at startup and never mutated.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_events.yaml
var defaultEvents []byte

// PlaceholderText is shown instead of a key visual that is absent or fails to load.
const PlaceholderText = "キービジュアルなし"

// ErrInvalidCatalog is returned when a catalog source violates its invariants.
var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

// Event is one performance in the catalog.
type Event struct {
	EventID      string `yaml:"eventId" json:"eventId"`
	Name         string `yaml:"name" json:"name"`
	Organizer    string `yaml:"organizer" json:"organizer"`
	Venue        string `yaml:"venue" json:"venue"`
	Duration     string `yaml:"duration" json:"duration"`
	Difficulty   int    `yaml:"difficulty" json:"difficulty"`
	IsFinished   bool   `yaml:"isFinished" json:"isFinished"`
	KeyVisualURL string `yaml:"keyVisualUrl,omitempty" json:"keyVisualUrl,omitempty"`
}

// KeyVisual describes the image slot of an event. Placeholder is always set so
// a renderer can fall back to it when URL is empty or the image fails to load.
type KeyVisual struct {
	URL         string `json:"url,omitempty"`
	Placeholder string `json:"placeholder"`
}

// KeyVisual returns the image descriptor for the event.
func (e Event) KeyVisual() KeyVisual {
	return KeyVisual{URL: strings.TrimSpace(e.KeyVisualURL), Placeholder: PlaceholderText}
}

// Catalog is an ordered, read-only set of events.
type Catalog struct {
	events []Event
	index  map[string]int
}

// New validates events and builds a catalog preserving their order.
func New(events []Event) (*Catalog, error) {
	c := &Catalog{
		events: make([]Event, 0, len(events)),
		index:  make(map[string]int, len(events)),
	}
	for i, event := range events {
		event.EventID = strings.TrimSpace(event.EventID)
		if event.EventID == "" {
			return nil, fmt.Errorf("%w: event #%d has no eventId", ErrInvalidCatalog, i+1)
		}
		if _, dup := c.index[event.EventID]; dup {
			return nil, fmt.Errorf("%w: duplicate eventId %q", ErrInvalidCatalog, event.EventID)
		}
		if event.Difficulty < 1 || event.Difficulty > 5 {
			return nil, fmt.Errorf("%w: event %q difficulty %d out of range 1-5", ErrInvalidCatalog, event.EventID, event.Difficulty)
		}
		c.index[event.EventID] = len(c.events)
		c.events = append(c.events, event)
	}
	return c, nil
}

// Parse decodes a YAML sequence of events.
func Parse(data []byte) (*Catalog, error) {
	var events []Event
	if err := yaml.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(events)
}

// Default returns the catalog bundled with the binary.
func Default() *Catalog {
	c, err := Parse(defaultEvents)
	if err != nil {
		panic(fmt.Sprintf("catalog: bundled catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the bundled catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// List returns the events in catalog order.
func (c *Catalog) List() []Event {
	if c == nil {
		return nil
	}
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Find looks up an event by id. A miss is a normal result, not an error.
func (c *Catalog) Find(eventID string) (Event, bool) {
	if c == nil {
		return Event{}, false
	}
	i, ok := c.index[eventID]
	if !ok {
		return Event{}, false
	}
	return c.events[i], true
}

// Len reports the number of events.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.events)
}
