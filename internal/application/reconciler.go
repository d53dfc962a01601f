package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/nazolog/internal/catalog"
	"github.com/example/nazolog/internal/layout"
)

const dateLayout = "2006-01-02"

// EventCatalog is the read-only event source.
type EventCatalog interface {
	List() []catalog.Event
	Find(eventID string) (catalog.Event, bool)
}

// RecordSource exposes the current record collection.
type RecordSource interface {
	List(ctx context.Context) []Record
	Get(ctx context.Context, id string) (Record, error)
}

// Reconciler derives view state from the catalog and the record collection.
// It never mutates either.
type Reconciler struct {
	records RecordSource
	events  EventCatalog
	now     func() time.Time
	logger  *slog.Logger
}

// NewReconciler constructs a reconciler with the provided dependencies.
func NewReconciler(records RecordSource, events EventCatalog, now func() time.Time) *Reconciler {
	return NewReconcilerWithLogger(records, events, now, nil)
}

// NewReconcilerWithLogger constructs a reconciler with a specified logger.
func NewReconcilerWithLogger(records RecordSource, events EventCatalog, now func() time.Time, logger *slog.Logger) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{records: records, events: events, now: now, logger: defaultLogger(logger)}
}

func (r *Reconciler) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, r.logger, "Reconciler", operation, attrs...)
}

// RelatedRecords returns the records attached to eventID, most recent date
// first. Records with the same date keep insertion order and records with an
// unparsable date sort last.
func (r *Reconciler) RelatedRecords(ctx context.Context, eventID string) []Record {
	if r == nil || r.records == nil || eventID == "" {
		return []Record{}
	}

	related := []Record{}
	for _, record := range r.records.List(ctx) {
		if record.EventID == eventID {
			related = append(related, record)
		}
	}
	sortByDateDesc(related)
	return related
}

// CurrentRecord returns the head of RelatedRecords.
func (r *Reconciler) CurrentRecord(ctx context.Context, eventID string) (Record, bool) {
	related := r.RelatedRecords(ctx, eventID)
	if len(related) == 0 {
		return Record{}, false
	}
	return related[0], true
}

// FormState returns the pre-filled form for eventID. An empty eventID yields
// the unscoped create form. Unknown events return ErrNotFound and finished
// events ErrEventClosed.
func (r *Reconciler) FormState(ctx context.Context, eventID string) (state FormState, err error) {
	if r == nil {
		err = fmt.Errorf("Reconciler is nil")
		return
	}

	if eventID == "" {
		return r.createState("", ""), nil
	}

	event, ok := r.findEvent(eventID)
	if !ok {
		err = ErrNotFound
		return
	}
	if event.IsFinished {
		err = ErrEventClosed
		return
	}

	if current, found := r.CurrentRecord(ctx, eventID); found {
		return editState(current), nil
	}
	return r.createState(event.EventID, event.Name), nil
}

// RecordFormState returns the edit form for a specific record.
func (r *Reconciler) RecordFormState(ctx context.Context, recordID string) (FormState, error) {
	if r == nil || r.records == nil {
		return FormState{}, fmt.Errorf("Reconciler is not configured")
	}

	record, err := r.records.Get(ctx, recordID)
	if err != nil {
		return FormState{}, err
	}
	if record.EventID != "" {
		if event, ok := r.findEvent(record.EventID); ok && event.IsFinished {
			return FormState{}, ErrEventClosed
		}
	}
	return editState(record), nil
}

// Detail derives the detail view for eventID. An unknown id yields the
// not-found state without looking at any record.
func (r *Reconciler) Detail(ctx context.Context, eventID string) DetailView {
	view := DetailView{BackLink: catalogBackLink()}

	event, ok := r.findEvent(eventID)
	if !ok {
		r.loggerWith(ctx, "Detail", "event_id", eventID).InfoContext(ctx, "event not found")
		view.NotFound = eventNotFound(eventID)
		return view
	}

	keyVisual := event.KeyVisual()
	view.Found = true
	view.Event = &event
	view.KeyVisual = &keyVisual

	related := r.RelatedRecords(ctx, eventID)
	view.RecordCount = len(related)
	if len(related) > 0 {
		current := related[0]
		view.CurrentRecord = &current
		view.Radar = current.SubScores.Vector()
	}

	switch {
	case event.IsFinished:
		view.Action = &Action{Kind: ActionClosed, Label: labelClosed, Enabled: false}
		view.Notices = append(view.Notices, labelClosed)
	case view.CurrentRecord != nil:
		view.Action = &Action{Kind: ActionEdit, Label: labelEdit, Color: colorEdit, Enabled: true, FormURL: eventFormURL(eventID)}
	default:
		view.Action = &Action{Kind: ActionCreate, Label: labelCreate, Color: colorCreate, Enabled: true, FormURL: eventFormURL(eventID)}
	}

	if view.CurrentRecord == nil {
		view.Notices = append(view.Notices, messageNoRadar, messageNoRecords)
	}
	return view
}

// Catalog derives the catalog view laid out for a viewport width.
func (r *Reconciler) Catalog(ctx context.Context, width int) CatalogView {
	view := CatalogView{
		Events: []CatalogEntry{},
		Action: Action{Kind: ActionCreate, Label: labelUnscoped, Color: colorUnscoped, Enabled: true, FormURL: "/form"},
		Layout: layout.Compute(width),
	}
	if r == nil || r.events == nil {
		view.Message = messageNoEvents
		return view
	}

	counts := make(map[string]int)
	if r.records != nil {
		for _, record := range r.records.List(ctx) {
			if record.EventID != "" {
				counts[record.EventID]++
			}
		}
	}

	for _, event := range r.events.List() {
		entry := CatalogEntry{
			Event:       event,
			DetailURL:   eventDetailURL(event.EventID),
			RecordCount: counts[event.EventID],
		}
		if event.IsFinished {
			entry.FinishedLabel = labelFinishedBadge
		}
		view.Events = append(view.Events, entry)
	}
	if len(view.Events) == 0 {
		view.Message = messageNoEvents
	}
	return view
}

// RecordView derives the single record screen.
func (r *Reconciler) RecordView(ctx context.Context, recordID string) RecordView {
	view := RecordView{BackLink: catalogBackLink()}
	if r == nil || r.records == nil {
		view.NotFound = recordNotFound(recordID)
		return view
	}

	record, err := r.records.Get(ctx, recordID)
	if err != nil {
		view.NotFound = recordNotFound(recordID)
		return view
	}

	view.Found = true
	view.Record = &record
	if event, ok := r.findEvent(record.EventID); ok {
		view.Event = &event
	}
	return view
}

func (r *Reconciler) findEvent(eventID string) (catalog.Event, bool) {
	if r == nil || r.events == nil || eventID == "" {
		return catalog.Event{}, false
	}
	return r.events.Find(eventID)
}

func (r *Reconciler) createState(eventID, title string) FormState {
	return FormState{
		Mode:        FormModeCreate,
		EventID:     eventID,
		SubmitLabel: labelSubmitCreate,
		Values: FormValues{
			Title:     title,
			Date:      r.now().Format(dateLayout),
			Result:    ResultSuccess,
			Score:     DefaultScore,
			SubScores: DefaultSubScores(),
		},
	}
}

func editState(record Record) FormState {
	return FormState{
		Mode:        FormModeEdit,
		EditingID:   record.ID,
		EventID:     record.EventID,
		SubmitLabel: labelSubmitUpdate,
		Values: FormValues{
			Title:     record.Title,
			Date:      record.Date,
			Result:    record.Result,
			Score:     record.Score,
			Memo:      record.Memo,
			SubScores: record.SubScores,
		},
	}
}

func sortByDateDesc(records []Record) {
	type dated struct {
		record Record
		at     time.Time
		valid  bool
	}
	items := make([]dated, len(records))
	for i, record := range records {
		at, err := time.Parse(dateLayout, record.Date)
		items[i] = dated{record: record, at: at, valid: err == nil}
	}

	sort.SliceStable(items, func(a, b int) bool {
		ia, ib := items[a], items[b]
		switch {
		case ia.valid && ib.valid:
			return ia.at.After(ib.at)
		case ia.valid != ib.valid:
			return ia.valid
		default:
			return false
		}
	})

	for i := range items {
		records[i] = items[i].record
	}
}
