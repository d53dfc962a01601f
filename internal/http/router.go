package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Catalog    *CatalogHandler
	Events     *EventHandler
	Records    *RecordHandler
	Metrics    http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		newResponder(nil).writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
	})

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	if cfg.Catalog != nil {
		catalogRoute := func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Catalog.Catalog(w, r)
		}
		mux.HandleFunc("/{$}", catalogRoute)
		mux.HandleFunc("/events", catalogRoute)
		mux.HandleFunc("/layout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Catalog.Layout(w, r)
		})
	}

	if cfg.Events != nil {
		mux.HandleFunc("/form", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Events.Form(w, r)
			case http.MethodPost:
				cfg.Events.SubmitForm(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/events/")
			id, sub, _ := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithEventID(r.Context(), id)
			r = r.WithContext(ctx)

			switch sub {
			case "":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Events.Detail(w, r)
			case "form":
				switch r.Method {
				case http.MethodGet:
					cfg.Events.Form(w, r)
				case http.MethodPost:
					cfg.Events.SubmitForm(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Records != nil {
		mux.HandleFunc("/records", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Records.List(w, r)
		})
		mux.HandleFunc("/records/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/records/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithRecordID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Records.Get(w, r)
			case http.MethodPut:
				cfg.Records.Update(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// routeLabel collapses a request path onto its route template.
func routeLabel(path string) string {
	switch path {
	case "/", "/events", "/form", "/records", "/layout", "/healthz", "/metrics":
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/events/"); ok && rest != "" {
		if _, sub, found := strings.Cut(rest, "/"); found {
			if sub == "form" {
				return "/events/{eventId}/form"
			}
			return "other"
		}
		return "/events/{eventId}"
	}
	if rest, ok := strings.CutPrefix(path, "/records/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/records/{id}"
	}
	return "other"
}

type healthResponse struct {
	Status string `json:"status"`
}
