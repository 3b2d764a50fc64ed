package seriesnats

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"ns2pp/internal/logger"
	"ns2pp/pkg/models"
)

// Config configures the NATS publisher.
type Config struct {
	URL           string
	SubjectPrefix string
	Run           string
	Event         string
}

type conn interface {
	Publish(subject string, data []byte) error
	Flush() error
	Drain() error
}

// Publisher publishes every sample as one JSON message on a per-series subject.
type Publisher struct {
	nc     conn
	prefix string
	run    string
	event  string
}

// NewPublisher connects to NATS.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	nc, err := nats.Connect(cfg.URL, nats.Name("ns2pp"))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}
	logger.Infof("Connected to NATS server at %s", cfg.URL)
	return newPublisher(nc, cfg), nil
}

func newPublisher(nc conn, cfg Config) *Publisher {
	prefix := strings.Trim(strings.TrimSpace(cfg.SubjectPrefix), ".")
	if prefix == "" {
		prefix = "ns2pp"
	}
	return &Publisher{nc: nc, prefix: prefix, run: cfg.Run, event: cfg.Event}
}

// Subject returns the subject samples of key are published on.
func (p *Publisher) Subject(key models.SeriesKey) string {
	return fmt.Sprintf("%s.flow.%d.node.%d", p.prefix, key.FlowID, key.Node)
}

// WriteSeries publishes all samples in store order and flushes.
func (p *Publisher) WriteSeries(store *models.SeriesStore) error {
	for _, row := range models.Rows(store, p.run, p.event) {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal sample row: %w", err)
		}
		subject := p.Subject(models.SeriesKey{FlowID: row.FlowID, Node: row.Node})
		if err := p.nc.Publish(subject, data); err != nil {
			return fmt.Errorf("publish %s: %w", subject, err)
		}
	}
	if err := p.nc.Flush(); err != nil {
		return fmt.Errorf("flush nats: %w", err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
