package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ns2pp/internal/metrics"
	"ns2pp/internal/pipeline"
	"ns2pp/pkg/models"
)

func testRouter() http.Handler {
	store := models.NewSeriesStore()
	store.Append(models.SeriesKey{FlowID: 7, Node: 2}, models.Sample{Time: 0, Mbps: 0.016})
	store.Append(models.SeriesKey{FlowID: 7, Node: 2}, models.Sample{Time: 1, Mbps: 0.032})
	store.Append(models.SeriesKey{FlowID: 1, Node: 3}, models.Sample{Time: 0, Mbps: 1})
	store.Append(models.SeriesKey{FlowID: -1, Node: 3}, models.Sample{Time: 0, Mbps: 0.5})

	m := metrics.New()
	m.LinesRead.Add(5)
	result := &pipeline.Result{Store: store, Stats: pipeline.Stats{Lines: 5, Selected: 4, Series: 3, Samples: 4}}
	return NewRouter(result, m.Handler())
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListSeries(t *testing.T) {
	rec := get(t, testRouter(), "/api/v1/series")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []SeriesInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 || got[0].FlowID != 7 || got[0].Samples != 2 || got[1].Label != "Flow 1 Node 3" {
		t.Fatalf("unexpected listing %+v", got)
	}
}

func TestGetSeries(t *testing.T) {
	h := testRouter()

	rec := get(t, h, "/api/v1/series/7/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var series models.Series
	if err := json.Unmarshal(rec.Body.Bytes(), &series); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(series.Samples) != 2 || series.Samples[1].Mbps != 0.032 {
		t.Fatalf("unexpected series %+v", series)
	}

	rec = get(t, h, "/api/v1/series/-1/3")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for negative flow id, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &series); err != nil || series.Key.FlowID != -1 {
		t.Fatalf("unexpected series for flow -1: %+v %v", series, err)
	}

	if rec := get(t, h, "/api/v1/series/9/9"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown key, got %d", rec.Code)
	}
	if rec := get(t, h, "/api/v1/series/x/2"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-numeric flow, got %d", rec.Code)
	}
}

func TestSummary(t *testing.T) {
	rec := get(t, testRouter(), "/api/v1/summary")
	var got SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Stats.Selected != 4 || len(got.Series) != 3 || got.Series[0].Peak != 0.032 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, testRouter(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ns2pp_trace_lines_total 5") {
		t.Fatalf("missing lines counter:\n%s", rec.Body.String())
	}
}

func TestNilResultServesEmptyListing(t *testing.T) {
	rec := get(t, NewRouter(nil, nil), "/api/v1/series")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %q", rec.Body.String())
	}
	if rec := get(t, NewRouter(nil, nil), "/metrics"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", rec.Code)
	}
}
