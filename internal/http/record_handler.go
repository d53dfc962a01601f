package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/nazolog/internal/application"
)

type recordLister interface {
	List(ctx context.Context) []application.Record
}

type recordViews interface {
	RecordView(ctx context.Context, recordID string) application.RecordView
	RecordFormState(ctx context.Context, recordID string) (application.FormState, error)
}

type RecordHandler struct {
	records   recordLister
	views     recordViews
	form      formSubmitter
	responder responder
	logger    *slog.Logger
}

func NewRecordHandler(records recordLister, views recordViews, form formSubmitter, logger *slog.Logger) *RecordHandler {
	base := defaultLogger(logger)
	return &RecordHandler{records: records, views: views, form: form, responder: newResponder(base), logger: base}
}

func (h *RecordHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RecordHandler", operation, attrs...)
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.records == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	records := h.records.List(r.Context())
	if records == nil {
		records = []application.Record{}
	}

	h.log(r.Context(), "List").With("result_count", len(records)).InfoContext(r.Context(), "records listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRecordsResponse{Records: records})
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.views == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recordID, ok := RecordIDFromContext(r.Context())
	if !ok || strings.TrimSpace(recordID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing record id for get")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	view := h.views.RecordView(r.Context(), recordID)
	if !view.Found {
		h.log(r.Context(), "Get", "record_id", recordID).InfoContext(r.Context(), "record not found", "error_kind", "not_found")
		h.responder.writeJSON(r.Context(), w, http.StatusNotFound, view)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, view)
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.views == nil || h.form == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recordID, ok := RecordIDFromContext(r.Context())
	if !ok || strings.TrimSpace(recordID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing record id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	var req formRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "record_id", recordID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode record update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "record_id", recordID)

	resolve := func(ctx context.Context) (application.FormState, error) {
		return h.views.RecordFormState(ctx, recordID)
	}
	_, record, err := h.form.SubmitResolved(r.Context(), resolve, req.toValues())
	if err != nil {
		logger.WarnContext(r.Context(), "record update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "record updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, recordResponse{Record: record})
}

type listRecordsResponse struct {
	Records []application.Record `json:"records"`
}
