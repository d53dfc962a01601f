package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/nazolog/internal/application"
)

type eventService interface {
	Detail(ctx context.Context, eventID string) application.DetailView
	FormState(ctx context.Context, eventID string) (application.FormState, error)
}

type formSubmitter interface {
	SubmitResolved(ctx context.Context, resolve application.FormResolver, values application.FormValues) (application.FormState, application.Record, error)
}

// EventHandler serves event detail views and the record form. Requests
// without an event id in the context operate on the unscoped form.
type EventHandler struct {
	service   eventService
	form      formSubmitter
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, form formSubmitter, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, form: form, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || eventID == "" {
		h.log(r.Context(), "Detail", "error_kind", "bad_request").ErrorContext(r.Context(), "missing event id for detail")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	logger := h.log(r.Context(), "Detail", "event_id", eventID)
	view := h.service.Detail(r.Context(), eventID)
	if !view.Found {
		logger.InfoContext(r.Context(), "event not found", "error_kind", "not_found")
		h.responder.writeJSON(r.Context(), w, http.StatusNotFound, view)
		return
	}

	logger.With("record_count", view.RecordCount).InfoContext(r.Context(), "event detail rendered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, view)
}

func (h *EventHandler) Form(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, _ := EventIDFromContext(r.Context())
	logger := h.log(r.Context(), "Form", "event_id", eventID)

	state, err := h.service.FormState(r.Context(), eventID)
	if err != nil {
		logger.WarnContext(r.Context(), "form state unavailable", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("mode", state.Mode).InfoContext(r.Context(), "form state rendered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, formResponse{Form: state})
}

// SubmitForm recomputes the form state at submit time, so the target of the
// write never comes from the request body.
func (h *EventHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil || h.form == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, _ := EventIDFromContext(r.Context())

	var req formRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SubmitForm", "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode form submission", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SubmitForm", "event_id", eventID)

	resolve := func(ctx context.Context) (application.FormState, error) {
		return h.service.FormState(ctx, eventID)
	}
	state, record, err := h.form.SubmitResolved(r.Context(), resolve, req.toValues())
	if err != nil {
		logger.WarnContext(r.Context(), "form submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	if state.Mode == application.FormModeEdit {
		status = http.StatusOK
	}
	logger.With("record_id", record.ID, "mode", state.Mode).InfoContext(r.Context(), "form submitted")
	h.responder.writeJSON(r.Context(), w, status, recordResponse{Record: record})
}

// formRequest carries the user-editable fields only. Any eventId or id in the
// body is ignored.
type formRequest struct {
	Title        string `json:"title"`
	Date         string `json:"date"`
	Result       string `json:"result"`
	Score        int    `json:"score"`
	Memo         string `json:"memo"`
	Puzzle       int    `json:"puzzle"`
	Experience   int    `json:"experience"`
	Quantity     int    `json:"quantity"`
	Mystery      int    `json:"mystery"`
	Cheerfulness int    `json:"cheerfulness"`
}

func (r formRequest) toValues() application.FormValues {
	return application.FormValues{
		Title:  r.Title,
		Date:   r.Date,
		Result: application.Result(r.Result),
		Score:  r.Score,
		Memo:   r.Memo,
		SubScores: application.SubScores{
			Puzzle:       r.Puzzle,
			Experience:   r.Experience,
			Quantity:     r.Quantity,
			Mystery:      r.Mystery,
			Cheerfulness: r.Cheerfulness,
		},
	}
}

type formResponse struct {
	Form application.FormState `json:"form"`
}

type recordResponse struct {
	Record application.Record `json:"record"`
}
