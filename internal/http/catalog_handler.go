package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/nazolog/internal/application"
	"github.com/example/nazolog/internal/layout"
)

type catalogService interface {
	Catalog(ctx context.Context, width int) application.CatalogView
}

// CatalogHandler serves the catalog screen and the bare layout state.
type CatalogHandler struct {
	service   catalogService
	responder responder
	logger    *slog.Logger
}

func NewCatalogHandler(service catalogService, logger *slog.Logger) *CatalogHandler {
	base := defaultLogger(logger)
	return &CatalogHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CatalogHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CatalogHandler", operation, attrs...)
}

func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	width, err := parseWidth(r)
	if err != nil {
		h.log(r.Context(), "Catalog", "error_kind", "bad_request").WarnContext(r.Context(), "invalid width parameter", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWidth)
		return
	}

	view := h.service.Catalog(r.Context(), width)
	h.log(r.Context(), "Catalog", "width", width).With("result_count", len(view.Events)).InfoContext(r.Context(), "catalog rendered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, view)
}

func (h *CatalogHandler) Layout(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	width, err := parseWidth(r)
	if err != nil {
		h.log(r.Context(), "Layout", "error_kind", "bad_request").WarnContext(r.Context(), "invalid width parameter", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWidth)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, layout.Compute(width))
}

// parseWidth reads the optional width query parameter. Absent means 0.
func parseWidth(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("width"))
	if raw == "" {
		return 0, nil
	}
	width, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if width < 0 {
		return 0, errInvalidWidth
	}
	return width, nil
}
