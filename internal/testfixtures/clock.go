package testfixtures

import (
	"sync"
	"time"
)

// Clock is a controllable time source. Forms default their date to the
// calendar day of the injected clock, so tests pin it here.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to start, or to ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for dependency injection. A nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Today returns the current calendar date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Now().Format("2006-01-02")
}

// AdvanceDays moves the clock forward by whole days and returns the new date.
func (c *Clock) AdvanceDays(days int) string {
	c.mu.Lock()
	c.current = c.current.AddDate(0, 0, days)
	c.mu.Unlock()
	return c.Today()
}
