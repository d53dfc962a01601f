package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/example/nazolog/internal/catalog"
)

// RecordWriter applies create and update intents.
type RecordWriter interface {
	Create(ctx context.Context, input RecordInput) (Record, error)
	Update(ctx context.Context, id string, input RecordInput) (Record, error)
}

var fieldMessages = map[string]map[string]string{
	"title": {
		"required": "イベント名を入力してください。",
	},
	"date": {
		"required": "日付を入力してください。",
		"datetime": "日付はYYYY-MM-DD形式の正しい日付で入力してください。",
	},
	"result": {
		"required": "結果を選択してください。",
		"oneof":    "結果は success または failure を選択してください。",
	},
}

const fallbackFieldMessage = "入力値が不正です。"

// RecordForm validates submitted form values and turns them into a create
// or update on the record store.
type RecordForm struct {
	mu       sync.Mutex
	store    RecordWriter
	events   EventCatalog
	validate *validator.Validate
	logger   *slog.Logger
}

// NewRecordForm constructs a record form with the provided dependencies.
func NewRecordForm(store RecordWriter, events EventCatalog) *RecordForm {
	return NewRecordFormWithLogger(store, events, nil)
}

// NewRecordFormWithLogger constructs a record form with a specified logger.
func NewRecordFormWithLogger(store RecordWriter, events EventCatalog, logger *slog.Logger) *RecordForm {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	return &RecordForm{store: store, events: events, validate: validate, logger: defaultLogger(logger)}
}

func (f *RecordForm) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, f.logger, "RecordForm", operation, attrs...)
}

// FormResolver derives the form state a submission applies to.
type FormResolver func(ctx context.Context) (FormState, error)

// Submit validates values and saves them according to state. The event link
// always comes from state. Edit mode replaces state.EditingID; create mode
// mints a new record.
func (f *RecordForm) Submit(ctx context.Context, state FormState, values FormValues) (Record, error) {
	if f == nil {
		return Record{}, fmt.Errorf("RecordForm is nil")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submit(ctx, state, values)
}

// SubmitResolved resolves the form state and submits values against it while
// holding the form lock, so the create-or-edit decision cannot go stale
// between the two steps. It returns the state the values were applied to.
func (f *RecordForm) SubmitResolved(ctx context.Context, resolve FormResolver, values FormValues) (FormState, Record, error) {
	if f == nil {
		return FormState{}, Record{}, fmt.Errorf("RecordForm is nil")
	}
	if resolve == nil {
		return FormState{}, Record{}, fmt.Errorf("form resolver is nil")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := resolve(ctx)
	if err != nil {
		return FormState{}, Record{}, err
	}
	record, err := f.submit(ctx, state, values)
	return state, record, err
}

func (f *RecordForm) submit(ctx context.Context, state FormState, values FormValues) (record Record, err error) {
	if f.store == nil {
		err = fmt.Errorf("record store not configured")
		return
	}

	logger := f.loggerWith(ctx, "Submit",
		"mode", string(state.Mode),
		"event_id", state.EventID,
		"editing_id", state.EditingID,
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "form submission rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("record_id", record.ID).InfoContext(ctx, "form submitted")
	}()

	if state.EventID != "" {
		event, ok := f.findEvent(state.EventID)
		if !ok {
			err = ErrNotFound
			return
		}
		if event.IsFinished {
			err = ErrEventClosed
			return
		}
	}

	values = normalizeFormValues(values)
	if vErr := f.validateValues(values); vErr.HasErrors() {
		err = vErr
		return
	}

	input := RecordInput{
		EventID:   state.EventID,
		Title:     values.Title,
		Date:      values.Date,
		Result:    values.Result,
		Score:     normalizeScore(values.Score),
		Memo:      values.Memo,
		SubScores: values.SubScores.normalized(),
	}

	switch state.Mode {
	case FormModeEdit:
		if state.EditingID == "" {
			err = fmt.Errorf("edit form without a record id: %w", ErrNotFound)
			return
		}
		record, err = f.store.Update(ctx, state.EditingID, input)
	case FormModeCreate, "":
		record, err = f.store.Create(ctx, input)
	default:
		err = fmt.Errorf("unknown form mode %q", state.Mode)
	}
	return
}

func (f *RecordForm) findEvent(eventID string) (catalog.Event, bool) {
	if f.events == nil {
		return catalog.Event{}, false
	}
	return f.events.Find(eventID)
}

func (f *RecordForm) validateValues(values FormValues) *ValidationError {
	vErr := &ValidationError{}

	err := f.validate.Struct(values)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("form", fallbackFieldMessage)
		return vErr
	}
	for _, fe := range fieldErrs {
		vErr.add(fe.Field(), fieldMessage(fe.Field(), fe.Tag()))
	}
	return vErr
}

func fieldMessage(field, tag string) string {
	if byTag, ok := fieldMessages[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
	}
	return fallbackFieldMessage
}

func normalizeFormValues(values FormValues) FormValues {
	values.Title = strings.TrimSpace(values.Title)
	values.Date = strings.TrimSpace(values.Date)
	values.Result = Result(strings.TrimSpace(string(values.Result)))
	return values
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
