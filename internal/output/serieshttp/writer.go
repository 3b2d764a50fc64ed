package serieshttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ns2pp/pkg/models"
)

// Config configures the HTTP writer.
type Config struct {
	URL     string
	Run     string
	Event   string
	Timeout time.Duration
	Headers map[string]string
}

// Payload is the request body posted for one run.
type Payload struct {
	Run    string          `json:"run"`
	Event  string          `json:"event"`
	Series []models.Series `json:"series"`
}

// Writer posts the complete series set to a remote HTTP endpoint.
type Writer struct {
	url     string
	run     string
	event   string
	headers map[string]string
	client  *http.Client
}

// NewWriter creates an HTTP writer.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("http output URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Writer{
		url:     cfg.URL,
		run:     cfg.Run,
		event:   cfg.Event,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// WriteSeries posts all series in one request.
func (w *Writer) WriteSeries(store *models.SeriesStore) error {
	payload := Payload{Run: w.run, Event: w.event, Series: make([]models.Series, 0, store.Len())}
	for _, key := range store.Keys() {
		series, _ := store.Get(key)
		payload.Series = append(payload.Series, series)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http request failed with status %s", resp.Status)
	}
	return nil
}

// Close releases HTTP resources.
func (w *Writer) Close() error {
	return nil
}
