package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Sternrassler/bgg-stats/pkg/client"
	"github.com/Sternrassler/bgg-stats/pkg/stats"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) aggregate(facet stats.Facet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, ok := h.topN(w, r)
		if !ok {
			return
		}

		result, err := h.svc.Fetch(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			h.writeError(w, err)
			return
		}

		h.writeJSON(w, http.StatusOK, stats.NewAggregateReport(result, facet, n))
	}
}

func (h *Handler) releaseYear(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Fetch(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	report, err := stats.NewYearReport(result)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) radar(w http.ResponseWriter, r *http.Request) {
	n, ok := h.topN(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Fetch(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats.CompareTopMechanics([]*stats.FetchResult{result}, n))
}

func (h *Handler) versus(w http.ResponseWriter, r *http.Request) {
	n, ok := h.topN(w, r)
	if !ok {
		return
	}

	comparison, err := h.svc.Compare(r.Context(), n, chi.URLParam(r, "username1"), chi.URLParam(r, "username2"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comparison)
}

// topN reads ?top=N, defaulting to the service's TopN.
func (h *Handler) topN(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return h.svc.TopN(), true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "top must be a positive integer"})
		return 0, false
	}
	return n, true
}

// writeError maps catalog failures to 502 with their kind; anything else
// is a 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var fe *client.FetchError
	if errors.As(err, &fe) {
		h.writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: fe.Error(), Kind: string(fe.Kind)})
		return
	}

	h.logger.Error().Err(err).Msg("Request failed")
	h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write response")
	}
}
