package testfixtures

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/nazolog/internal/application"
	"github.com/example/nazolog/internal/catalog"
)

var eventCounter uint64

var referenceTime = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Event fixtures -----------------------------

// EventOption configures a generated event.
type EventOption func(*catalog.Event)

// NewEvent returns a deterministic open event with optional overrides.
func NewEvent(opts ...EventOption) catalog.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	event := catalog.Event{
		EventID:    fmt.Sprintf("EV%03d", idx),
		Name:       fmt.Sprintf("謎解き公演 %03d", idx),
		Organizer:  "テスト制作",
		Venue:      "テスト会場",
		Duration:   "60分",
		Difficulty: 3,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventID overrides the generated event id.
func WithEventID(id string) EventOption {
	return func(e *catalog.Event) {
		e.EventID = id
	}
}

// WithEventName overrides the generated event name.
func WithEventName(name string) EventOption {
	return func(e *catalog.Event) {
		e.Name = name
	}
}

// Finished marks the event as finished.
func Finished() EventOption {
	return func(e *catalog.Event) {
		e.IsFinished = true
	}
}

// NewCatalog builds a catalog from events, failing the test on invalid input.
func NewCatalog(tb testing.TB, events ...catalog.Event) *catalog.Catalog {
	tb.Helper()
	c, err := catalog.New(events)
	if err != nil {
		tb.Fatalf("failed to build catalog: %v", err)
	}
	return c
}

// ----------------------------- Record fixtures -----------------------------

// RecordOption configures a generated record input.
type RecordOption func(*application.RecordInput)

// NewRecordInput returns a valid free-form record input with optional overrides.
func NewRecordInput(opts ...RecordOption) application.RecordInput {
	input := application.RecordInput{
		Title:     "自由記録",
		Date:      referenceTime.Format("2006-01-02"),
		Result:    application.ResultSuccess,
		Score:     application.DefaultScore,
		SubScores: application.DefaultSubScores(),
	}
	for _, opt := range opts {
		opt(&input)
	}
	return input
}

// ForEvent attaches the record to event and copies its name into the title.
func ForEvent(event catalog.Event) RecordOption {
	return func(r *application.RecordInput) {
		r.EventID = event.EventID
		r.Title = event.Name
	}
}

// OnDate overrides the record date.
func OnDate(date string) RecordOption {
	return func(r *application.RecordInput) {
		r.Date = date
	}
}

// WithScore overrides the overall score.
func WithScore(score int) RecordOption {
	return func(r *application.RecordInput) {
		r.Score = score
	}
}

// WithResult overrides the result.
func WithResult(result application.Result) RecordOption {
	return func(r *application.RecordInput) {
		r.Result = result
	}
}

// WithMemo overrides the memo.
func WithMemo(memo string) RecordOption {
	return func(r *application.RecordInput) {
		r.Memo = memo
	}
}
