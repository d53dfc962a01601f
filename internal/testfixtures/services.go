package testfixtures

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/example/nazolog/internal/application"
	"github.com/example/nazolog/internal/catalog"
)

// RecordGateway is an in-memory application.RecordGateway that keeps every
// saved snapshot and can be told to fail writes.
type RecordGateway struct {
	mu        sync.Mutex
	stored    []application.Record
	snapshots [][]application.Record
	saveErr   error
}

// NewRecordGateway returns a gateway that loads records.
func NewRecordGateway(records ...application.Record) *RecordGateway {
	return &RecordGateway{stored: append([]application.Record(nil), records...)}
}

// Load returns the last saved collection.
func (g *RecordGateway) Load(context.Context) []application.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]application.Record{}, g.stored...)
}

// Save stores records unless a failure was configured.
func (g *RecordGateway) Save(_ context.Context, records []application.Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return g.saveErr
	}
	g.stored = append([]application.Record{}, records...)
	g.snapshots = append(g.snapshots, g.stored)
	return nil
}

// FailWrites makes subsequent saves fail until called with false.
func (g *RecordGateway) FailWrites(fail bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if fail {
		g.saveErr = errors.New("storage quota exceeded")
		return
	}
	g.saveErr = nil
}

// SaveCount reports the number of successful saves.
func (g *RecordGateway) SaveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.snapshots)
}

// App bundles the application components wired the way the server wires them.
type App struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Catalog     *catalog.Catalog
	Gateway     *RecordGateway
	Store       *application.RecordStore
	Reconciler  *application.Reconciler
	Form        *application.RecordForm
	Logger      *slog.Logger
}

// AppOption configures NewApp.
type AppOption func(*App)

// WithClock overrides the clock used by the app.
func WithClock(clock *Clock) AppOption {
	return func(a *App) {
		a.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the app.
func WithIDGenerator(generator *IDGenerator) AppOption {
	return func(a *App) {
		a.IDGenerator = generator
	}
}

// WithGateway preloads the app with an existing gateway.
func WithGateway(gateway *RecordGateway) AppOption {
	return func(a *App) {
		a.Gateway = gateway
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		a.Logger = logger
	}
}

// NewApp wires store, reconciler and form over cat with deterministic ids and time.
func NewApp(cat *catalog.Catalog, opts ...AppOption) *App {
	app := &App{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator(""),
		Catalog:     cat,
		Gateway:     NewRecordGateway(),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(app)
	}

	ctx := context.Background()
	app.Store = application.NewRecordStoreWithLogger(ctx, app.Gateway, app.IDGenerator.NextFunc(), app.Logger)
	app.Reconciler = application.NewReconcilerWithLogger(app.Store, cat, app.Clock.NowFunc(), app.Logger)
	app.Form = application.NewRecordFormWithLogger(app.Store, cat, app.Logger)
	return app
}

// Reload builds a fresh store from whatever the gateway last saved, the way a
// restarted server would.
func (a *App) Reload() *App {
	return NewApp(a.Catalog,
		WithClock(a.Clock),
		WithIDGenerator(a.IDGenerator),
		WithGateway(a.Gateway),
		WithLogger(a.Logger),
	)
}
