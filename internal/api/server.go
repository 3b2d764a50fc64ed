package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ns2pp/internal/logger"
	"ns2pp/internal/pipeline"
	"ns2pp/internal/report"
	"ns2pp/pkg/models"
)

// Handler serves the series computed by one pass over a trace.
type Handler struct {
	store   *models.SeriesStore
	stats   pipeline.Stats
	metrics http.Handler
}

// SeriesInfo is one entry of the series listing.
type SeriesInfo struct {
	FlowID  int    `json:"flow_id"`
	Node    int    `json:"node"`
	Label   string `json:"label"`
	Samples int    `json:"samples"`
}

// SummaryResponse is the body of the summary endpoint.
type SummaryResponse struct {
	Stats  pipeline.Stats          `json:"stats"`
	Series []report.SeriesSummary `json:"series"`
}

// NewRouter builds the API router. metricsHandler may be nil.
func NewRouter(result *pipeline.Result, metricsHandler http.Handler) *mux.Router {
	h := &Handler{metrics: metricsHandler}
	if result != nil {
		h.store = result.Store
		h.stats = result.Stats
	}
	if h.store == nil {
		h.store = models.NewSeriesStore()
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/series", h.listSeriesHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/series/{flow:-?[0-9]+}/{node:-?[0-9]+}", h.getSeriesHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/summary", h.summaryHandler).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics).Methods(http.MethodGet)
	}
	return r
}

func (h *Handler) listSeriesHandler(w http.ResponseWriter, r *http.Request) {
	out := make([]SeriesInfo, 0, h.store.Len())
	_ = h.store.Each(func(_ int, series *models.Series) error {
		out = append(out, SeriesInfo{
			FlowID:  series.Key.FlowID,
			Node:    series.Key.Node,
			Label:   series.Key.Label(),
			Samples: len(series.Samples),
		})
		return nil
	})
	writeJSON(w, out)
}

func (h *Handler) getSeriesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	flow, err := strconv.Atoi(vars["flow"])
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid flow id: %v", err), http.StatusBadRequest)
		return
	}
	node, err := strconv.Atoi(vars["node"])
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid node id: %v", err), http.StatusBadRequest)
		return
	}

	series, ok := h.store.Get(models.SeriesKey{FlowID: flow, Node: node})
	if !ok {
		http.Error(w, fmt.Sprintf("no series for flow %d node %d", flow, node), http.StatusNotFound)
		return
	}
	writeJSON(w, series)
}

func (h *Handler) summaryHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, SummaryResponse{
		Stats:  h.stats,
		Series: report.Summarize(h.store),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Debugf("Failed to write API response: %v", err)
	}
}
