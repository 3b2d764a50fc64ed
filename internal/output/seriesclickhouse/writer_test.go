package seriesclickhouse

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ns2pp/pkg/models"
)

func TestWriteSeriesBatchesJSONEachRow(t *testing.T) {
	var queries []string
	var batches [][]string
	var user string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("query"))
		user = r.Header.Get("X-ClickHouse-User")
		var lines []string
		scanner := bufio.NewScanner(r.Body)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		batches = append(batches, lines)
	}))
	defer srv.Close()

	w, err := NewWriter(Config{URL: srv.URL + "/", Database: "ns2", Table: "bw`", Username: "ingest", BatchSize: 2, Run: "run1", Event: "r"})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	store := models.NewSeriesStore()
	for i := 0; i < 3; i++ {
		store.Append(models.SeriesKey{FlowID: 7, Node: 2}, models.Sample{Time: float64(i), Mbps: 0.5})
	}
	if err := w.WriteSeries(store); err != nil {
		t.Fatalf("write: %v", err)
	}

	if len(batches) != 2 || len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Fatalf("expected batches of 2 and 1 rows, got %v", batches)
	}
	if queries[0] != "INSERT INTO `ns2`.`bw` FORMAT JSONEachRow" {
		t.Fatalf("unexpected query: %q", queries[0])
	}
	if user != "ingest" {
		t.Fatalf("expected user header, got %q", user)
	}
	if !strings.Contains(batches[1][0], `"t":2`) || !strings.Contains(batches[1][0], `"run":"run1"`) {
		t.Fatalf("unexpected last row: %s", batches[1][0])
	}
}

func TestWriteSeriesSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Code: 60. Table does not exist", http.StatusNotFound)
	}))
	defer srv.Close()

	w, err := NewWriter(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	store := models.NewSeriesStore()
	store.Append(models.SeriesKey{FlowID: 1, Node: 1}, models.Sample{Time: 0, Mbps: 1})

	err = w.WriteSeries(store)
	if err == nil || !strings.Contains(err.Error(), "Table does not exist") {
		t.Fatalf("expected server error to be surfaced, got %v", err)
	}
}
