package seriesjson

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ns2pp/internal/logger"
	"ns2pp/pkg/models"
)

// Writer outputs samples to a JSON lines file, one row per sample.
type Writer struct {
	file  *os.File
	run   string
	event string
}

// NewWriter creates a JSONL writer. An existing file is truncated.
func NewWriter(path, run, event string) (*Writer, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	logger.Infof("Series JSON writer initialized: %s", path)
	return &Writer{file: f, run: run, event: event}, nil
}

// WriteSeries writes every sample of the store.
func (w *Writer) WriteSeries(store *models.SeriesStore) error {
	buf := bufio.NewWriter(w.file)
	enc := json.NewEncoder(buf)
	for _, row := range models.Rows(store, w.run, w.event) {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to encode sample row: %w", err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush sample rows: %w", err)
	}
	return nil
}

// Close closes the output file.
func (w *Writer) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
