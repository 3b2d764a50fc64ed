package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReaderYieldsLinesThenEOF(t *testing.T) {
	r := FromReader(strings.NewReader("r 0.1 1 2\n\nd 0.2 1 2\r\n+ 0.3 1 2"))
	ctx := context.Background()

	var lines []string
	for {
		line, err := r.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		lines = append(lines, line)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), lines)
	}
	if lines[1] != "" || lines[2] != "d 0.2 1 2" || lines[3] != "+ 0.3 1 2" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestNewReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.tr")); err == nil {
		t.Fatalf("expected error for missing trace file")
	}
}

func TestNewReaderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tr")
	if err := os.WriteFile(path, []byte("r 0.5 1 2 cbr 1000 ------- 7 0.0 2.0 0 101\n"), 0o600); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	line, err := r.Next(context.Background())
	if err != nil || !strings.HasPrefix(line, "r 0.5") {
		t.Fatalf("unexpected first line %q, err %v", line, err)
	}
	if _, err := r.Next(context.Background()); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}
