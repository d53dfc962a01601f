package application_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/example/nazolog/internal/application"
	"github.com/example/nazolog/internal/testfixtures"
)

func TestAttendanceScenario(t *testing.T) {
	ctx := context.Background()
	e001 := testfixtures.NewEvent(testfixtures.WithEventID("E001"), testfixtures.WithEventName("時の迷宮からの脱出"))
	app := testfixtures.NewApp(testfixtures.NewCatalog(t, e001))

	// Opening the detail of an event without records and submitting its form creates one record.
	detail := app.Reconciler.Detail(ctx, "E001")
	if !detail.Found || detail.Action.Kind != application.ActionCreate {
		t.Fatalf("expected create affordance, got %#v", detail)
	}
	state, err := app.Reconciler.FormState(ctx, "E001")
	if err != nil {
		t.Fatalf("FormState failed: %v", err)
	}
	values := state.Values
	values.Date = "2024-01-01"
	values.Result = application.ResultSuccess
	values.Score = 4
	values.Memo = "fun"
	values.SubScores = application.SubScores{Puzzle: 3, Experience: 5, Quantity: 2, Mystery: 4, Cheerfulness: 5}

	created, err := app.Form.Submit(ctx, state, values)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	want := application.Record{
		ID:        created.ID,
		EventID:   "E001",
		Title:     "時の迷宮からの脱出",
		Date:      "2024-01-01",
		Result:    application.ResultSuccess,
		Score:     4,
		Memo:      "fun",
		SubScores: values.SubScores,
	}
	if created.ID == "" || created != want {
		t.Fatalf("unexpected record:\n got %#v\nwant %#v", created, want)
	}
	if stored := app.Gateway.Load(ctx); !reflect.DeepEqual(stored, []application.Record{want}) {
		t.Fatalf("expected persisted collection of one record, got %#v", stored)
	}

	// Re-opening the detail shows that record with an edit affordance.
	detail = app.Reconciler.Detail(ctx, "E001")
	if detail.RecordCount != 1 || detail.CurrentRecord == nil || *detail.CurrentRecord != want {
		t.Fatalf("expected the created record, got %#v", detail)
	}
	if detail.Action.Kind != application.ActionEdit {
		t.Fatalf("expected edit affordance, got %#v", detail.Action)
	}

	// Editing the score keeps the id and the collection size.
	state, err = app.Reconciler.FormState(ctx, "E001")
	if err != nil || state.Mode != application.FormModeEdit || state.EditingID != created.ID {
		t.Fatalf("expected edit state for %q, got %#v (err %v)", created.ID, state, err)
	}
	values = state.Values
	values.Score = 2
	updated, err := app.Form.Submit(ctx, state, values)
	if err != nil {
		t.Fatalf("Submit edit failed: %v", err)
	}
	stored := app.Gateway.Load(ctx)
	if updated.ID != created.ID || len(stored) != 1 || stored[0].Score != 2 || stored[0].ID != created.ID {
		t.Fatalf("expected in-place update, got %#v", stored)
	}

	// An unknown event is a not-found view.
	missing := app.Reconciler.Detail(ctx, "E999")
	if missing.Found || missing.NotFound == nil || missing.NotFound.BackLink.Href != "/" {
		t.Fatalf("expected not-found view, got %#v", missing)
	}

	// The unscoped form rejects an empty title without touching the collection.
	unscoped, err := app.Reconciler.FormState(ctx, "")
	if err != nil {
		t.Fatalf("FormState failed: %v", err)
	}
	before := app.Store.List(ctx)
	_, err = app.Form.Submit(ctx, unscoped, unscoped.Values)
	var vErr *application.ValidationError
	if !errors.As(err, &vErr) || vErr.FieldErrors["title"] == "" {
		t.Fatalf("expected title validation error, got %v", err)
	}
	if after := app.Store.List(ctx); !reflect.DeepEqual(before, after) {
		t.Fatalf("expected collection unchanged, got %#v", after)
	}
}

func TestRoundTripFidelity(t *testing.T) {
	ctx := context.Background()
	events := []struct{ id string }{{"E001"}, {"E002"}}
	cat := testfixtures.NewCatalog(t,
		testfixtures.NewEvent(testfixtures.WithEventID(events[0].id)),
		testfixtures.NewEvent(testfixtures.WithEventID(events[1].id)),
	)
	app := testfixtures.NewApp(cat)

	var ids []string
	for i, date := range []string{"2024-01-01", "2024-02-01", "2023-12-31"} {
		input := testfixtures.NewRecordInput(testfixtures.OnDate(date), testfixtures.WithScore(i+1))
		input.EventID = events[i%2].id
		record, err := app.Store.Create(ctx, input)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, record.ID)
	}
	if _, err := app.Store.Update(ctx, ids[1], testfixtures.NewRecordInput(testfixtures.WithMemo("updated"))); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reloaded := app.Reload()
	if got, want := reloaded.Store.List(ctx), app.Store.List(ctx); !reflect.DeepEqual(got, want) {
		t.Fatalf("reload mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestWriteFailureKeepsSessionState(t *testing.T) {
	ctx := context.Background()
	app := testfixtures.NewApp(testfixtures.NewCatalog(t, testfixtures.NewEvent()))
	app.Gateway.FailWrites(true)

	record, err := app.Store.Create(ctx, testfixtures.NewRecordInput())
	if err != nil {
		t.Fatalf("expected swallowed write failure, got %v", err)
	}
	if _, err := app.Store.Get(ctx, record.ID); err != nil {
		t.Fatalf("expected record in session, got %v", err)
	}
	if len(app.Reload().Store.List(ctx)) != 0 {
		t.Fatalf("expected nothing persisted while writes fail")
	}

	app.Gateway.FailWrites(false)
	if _, err := app.Store.Create(ctx, testfixtures.NewRecordInput()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := len(app.Reload().Store.List(ctx)); got != 2 {
		t.Fatalf("expected the next successful save to persist both records, got %d", got)
	}
}
