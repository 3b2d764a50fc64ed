package seriesplot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"ns2pp/pkg/models"
)

func TestWriteSeriesRendersPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "run.png")
	w, err := NewWriter(Config{Path: path, Title: "Flow bandwidth"})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	store := models.NewSeriesStore()
	for i := 0; i < 4; i++ {
		store.Append(models.SeriesKey{FlowID: 7, Node: 2}, models.Sample{Time: float64(i), Mbps: 0.5 + float64(i)*0.1})
	}
	store.Append(models.SeriesKey{FlowID: 3, Node: 2}, models.Sample{Time: 0, Mbps: 1.2})

	if err := w.WriteSeries(store); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("expected png signature, got %q", data[:8])
	}
}

func TestWriteSeriesSkipsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	w, err := NewWriter(Config{Path: path})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WriteSeries(models.NewSeriesStore()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file for empty store, got %v", err)
	}
}

func TestNewWriterRequiresPath(t *testing.T) {
	if _, err := NewWriter(Config{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
