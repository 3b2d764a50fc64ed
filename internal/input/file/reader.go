package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

const maxLineSize = 1 << 20

// Reader yields the lines of a trace file.
type Reader struct {
	file    io.Closer
	scanner *bufio.Scanner
}

// NewReader opens a trace file for reading.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	r := FromReader(f)
	r.file = f
	return r, nil
}

// FromReader wraps an already open stream.
func FromReader(rd io.Reader) *Reader {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next line without its terminator, or io.EOF.
func (r *Reader) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", fmt.Errorf("read trace: %w", err)
	}
	return "", io.EOF
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
