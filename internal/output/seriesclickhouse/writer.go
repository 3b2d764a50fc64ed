package seriesclickhouse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ns2pp/pkg/models"
)

// Config configures the ClickHouse HTTP writer.
type Config struct {
	URL       string
	Database  string
	Table     string
	Username  string
	Password  string
	Timeout   time.Duration
	Headers   map[string]string
	BatchSize int
	Run       string
	Event     string
}

// Writer inserts samples into ClickHouse via HTTP JSONEachRow.
type Writer struct {
	endpoint  string
	headers   map[string]string
	client    *http.Client
	batchSize int
	run       string
	event     string
}

// NewWriter creates a ClickHouse HTTP writer.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("clickhouse URL is empty")
	}
	if cfg.Database == "" {
		cfg.Database = "default"
	}
	if cfg.Table == "" {
		cfg.Table = "bandwidth_samples"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10000
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	q := fmt.Sprintf("INSERT INTO %s.%s FORMAT JSONEachRow", quoteIdent(cfg.Database), quoteIdent(cfg.Table))
	base := strings.TrimRight(cfg.URL, "/")
	endpoint := base + "/?query=" + url.QueryEscape(q)

	headers := map[string]string{}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if cfg.Username != "" {
		headers["X-ClickHouse-User"] = cfg.Username
	}
	if cfg.Password != "" {
		headers["X-ClickHouse-Key"] = cfg.Password
	}

	return &Writer{
		endpoint:  endpoint,
		headers:   headers,
		client:    &http.Client{Timeout: timeout},
		batchSize: cfg.BatchSize,
		run:       cfg.Run,
		event:     cfg.Event,
	}, nil
}

// WriteSeries inserts all samples, batchSize rows per request.
func (w *Writer) WriteSeries(store *models.SeriesStore) error {
	rows := models.Rows(store, w.run, w.event)
	for start := 0; start < len(rows); start += w.batchSize {
		end := start + w.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := w.insert(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) insert(rows []models.SampleRow) error {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to marshal sample row: %w", err)
		}
	}

	req, err := http.NewRequest(http.MethodPost, w.endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("clickhouse request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("clickhouse request failed with status %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// Close releases resources.
func (w *Writer) Close() error {
	return nil
}

func quoteIdent(v string) string {
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, "`", "")
	return "`" + v + "`"
}
