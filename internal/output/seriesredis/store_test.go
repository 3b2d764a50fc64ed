package seriesredis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"ns2pp/pkg/models"
)

func TestWriteSeriesAndLoad(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewStore(Config{Addr: mr.Addr(), KeyPrefix: "test", Run: "run1", Event: "r"})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	store := models.NewSeriesStore()
	store.Append(models.SeriesKey{FlowID: 9, Node: 1}, models.Sample{Time: 0, Mbps: 0.016})
	store.Append(models.SeriesKey{FlowID: 2, Node: 4}, models.Sample{Time: 0, Mbps: 1.5})
	store.Append(models.SeriesKey{FlowID: 9, Node: 1}, models.Sample{Time: 1, Mbps: 0.25})

	if err := s.WriteSeries(store); err != nil {
		t.Fatalf("write: %v", err)
	}

	items, err := mr.List("test:series:9:1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0] != "0.0\t0.016" || items[1] != "1.0\t0.25" {
		t.Fatalf("unexpected list contents: %q", items)
	}
	if got := mr.HGet("test:meta:9:1", "samples"); got != "2" {
		t.Fatalf("expected samples=2, got %q", got)
	}
	if got := mr.HGet("test:meta:2:4", "run"); got != "run1" {
		t.Fatalf("expected run=run1, got %q", got)
	}

	loaded, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	keys := loaded.Keys()
	if len(keys) != 2 || keys[0] != (models.SeriesKey{FlowID: 9, Node: 1}) {
		t.Fatalf("expected emission order preserved, got %v", keys)
	}
	series, _ := loaded.Get(models.SeriesKey{FlowID: 9, Node: 1})
	if len(series.Samples) != 2 || series.Samples[1].Mbps != 0.25 {
		t.Fatalf("unexpected loaded series: %+v", series)
	}
}

func TestWriteSeriesReplacesPreviousRun(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewStore(Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	first := models.NewSeriesStore()
	first.Append(models.SeriesKey{FlowID: 1, Node: 1}, models.Sample{Time: 0, Mbps: 1})
	first.Append(models.SeriesKey{FlowID: 1, Node: 1}, models.Sample{Time: 1, Mbps: 2})
	if err := s.WriteSeries(first); err != nil {
		t.Fatalf("write first: %v", err)
	}

	second := models.NewSeriesStore()
	second.Append(models.SeriesKey{FlowID: 1, Node: 1}, models.Sample{Time: 0, Mbps: 3})
	if err := s.WriteSeries(second); err != nil {
		t.Fatalf("write second: %v", err)
	}

	items, _ := mr.List("ns2pp:series:1:1")
	if len(items) != 1 || items[0] != "0.0\t3.0" {
		t.Fatalf("expected list replaced, got %q", items)
	}
}

func TestWriteSeriesRemovesSeriesMissingFromNewRun(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewStore(Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	first := models.NewSeriesStore()
	first.Append(models.SeriesKey{FlowID: 1, Node: 1}, models.Sample{Time: 0, Mbps: 1})
	first.Append(models.SeriesKey{FlowID: 2, Node: 5}, models.Sample{Time: 0, Mbps: 2})
	if err := s.WriteSeries(first); err != nil {
		t.Fatalf("write first: %v", err)
	}

	second := models.NewSeriesStore()
	second.Append(models.SeriesKey{FlowID: 1, Node: 1}, models.Sample{Time: 0, Mbps: 3})
	if err := s.WriteSeries(second); err != nil {
		t.Fatalf("write second: %v", err)
	}

	if mr.Exists("ns2pp:series:2:5") || mr.Exists("ns2pp:meta:2:5") {
		t.Fatalf("expected flow 2 node 5 keys removed")
	}
	loaded, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("expected 1 series after rewrite, got %d", loaded.Len())
	}
}

func TestDecodeMemberRejectsGarbage(t *testing.T) {
	if _, ok := decodeMember("7"); ok {
		t.Fatalf("expected failure without separator")
	}
	if _, ok := decodeMember("a|2"); ok {
		t.Fatalf("expected failure for non-numeric flow")
	}
	key, ok := decodeMember("7|2")
	if !ok || key != (models.SeriesKey{FlowID: 7, Node: 2}) {
		t.Fatalf("unexpected key %v", key)
	}
}
