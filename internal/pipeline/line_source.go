package pipeline

import "context"

// LineSource yields raw trace lines in trace order. Next returns io.EOF after the last line.
type LineSource interface {
	Next(ctx context.Context) (string, error)
	Close() error
}
