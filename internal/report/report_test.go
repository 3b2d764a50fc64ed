package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"ns2pp/pkg/models"
)

func testStore() *models.SeriesStore {
	store := models.NewSeriesStore()
	key := models.SeriesKey{FlowID: 7, Node: 2}
	for i, v := range []float64{1, 2, 3, 4} {
		store.Append(key, models.Sample{Time: float64(i), Mbps: v})
	}
	store.Append(models.SeriesKey{FlowID: 3, Node: 1}, models.Sample{Time: 0, Mbps: 0.5})
	return store
}

func TestSummarize(t *testing.T) {
	got := Summarize(testStore())
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}

	s := got[0]
	if s.FlowID != 7 || s.Node != 2 || s.Samples != 4 {
		t.Fatalf("unexpected identity %+v", s)
	}
	if s.Mean != 2.5 || s.Peak != 4 || s.TotalMb != 10 {
		t.Fatalf("unexpected stats %+v", s)
	}
	// sample stddev of 1..4
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Fatalf("expected stddev %v, got %v", math.Sqrt(5.0/3.0), s.StdDev)
	}

	single := got[1]
	if single.StdDev != 0 || single.Mean != 0.5 || single.Peak != 0.5 {
		t.Fatalf("unexpected single-sample stats %+v", single)
	}
}

func TestSummarizeEmptyStore(t *testing.T) {
	if got := Summarize(models.NewSeriesStore()); len(got) != 0 {
		t.Fatalf("expected no summaries, got %v", got)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, Summarize(testStore())); err != nil {
		t.Fatalf("write table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "FLOW") || !strings.Contains(lines[1], "2.5") {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}
}

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	if err := Preview(&buf, testStore(), PreviewOptions{Height: 4}); err != nil {
		t.Fatalf("preview: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Flow 7 Node 2 (Mbps)") {
		t.Fatalf("missing chart caption:\n%s", out)
	}
	if !strings.Contains(out, "Flow 3 Node 1: 1 sample(s), nothing to draw") {
		t.Fatalf("missing single-sample note:\n%s", out)
	}
}
