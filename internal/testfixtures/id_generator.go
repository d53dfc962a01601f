package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator yields predictable record ids. Scripted ids are handed out
// first, then ids of the form "{prefix}-{n}".
type IDGenerator struct {
	mu       sync.Mutex
	prefix   string
	counter  uint64
	scripted []string
}

// NewIDGenerator returns a generator using prefix, or "rec" when empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "rec"
	}
	return &IDGenerator{prefix: prefix}
}

// Script queues ids to be returned before the counter-based sequence. Used to
// force collisions.
func (g *IDGenerator) Script(ids ...string) *IDGenerator {
	g.mu.Lock()
	g.scripted = append(g.scripted, ids...)
	g.mu.Unlock()
	return g
}

// Next returns the next identifier.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.scripted) > 0 {
		id := g.scripted[0]
		g.scripted = g.scripted[1:]
		return id
	}
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextFunc exposes Next for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}
