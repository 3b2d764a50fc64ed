package pipeline

import "ns2pp/pkg/models"

// SeriesWriter writes a completed series store to one output.
type SeriesWriter interface {
	WriteSeries(store *models.SeriesStore) error
	Close() error
}

// Sink is a named SeriesWriter.
type Sink struct {
	Name   string
	Writer SeriesWriter
}
