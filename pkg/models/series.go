package models

import "fmt"

// SeriesKey identifies one bandwidth series: a flow as seen by a receiving node.
type SeriesKey struct {
	FlowID int `json:"flow_id"`
	Node   int `json:"node"`
}

// String renders the key as used in file names.
func (k SeriesKey) String() string {
	return fmt.Sprintf("flow-%d_node-%d", k.FlowID, k.Node)
}

// Label is the human readable legend for the key.
func (k SeriesKey) Label() string {
	return fmt.Sprintf("Flow %d Node %d", k.FlowID, k.Node)
}

// Sample is one closed window.
type Sample struct {
	Time float64 `json:"t"`
	Mbps float64 `json:"mbps"`
}

// Series is the ordered sample sequence of one key.
type Series struct {
	Key     SeriesKey `json:"key"`
	Samples []Sample  `json:"samples"`
}

// SeriesStore maps keys to their series. Keys iterate in the order their
// first sample was appended.
type SeriesStore struct {
	order []SeriesKey
	byKey map[SeriesKey]*Series
}

// NewSeriesStore creates an empty store.
func NewSeriesStore() *SeriesStore {
	return &SeriesStore{byKey: make(map[SeriesKey]*Series)}
}

// Append adds a sample to the series of key, creating the series on first use.
func (s *SeriesStore) Append(key SeriesKey, sample Sample) {
	series, ok := s.byKey[key]
	if !ok {
		series = &Series{Key: key}
		s.byKey[key] = series
		s.order = append(s.order, key)
	}
	series.Samples = append(series.Samples, sample)
}

// Len returns the number of series.
func (s *SeriesStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Keys returns the keys in iteration order.
func (s *SeriesStore) Keys() []SeriesKey {
	if s == nil {
		return nil
	}
	out := make([]SeriesKey, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns a copy of the series for key.
func (s *SeriesStore) Get(key SeriesKey) (Series, bool) {
	if s == nil {
		return Series{}, false
	}
	series, ok := s.byKey[key]
	if !ok {
		return Series{}, false
	}
	samples := make([]Sample, len(series.Samples))
	copy(samples, series.Samples)
	return Series{Key: key, Samples: samples}, true
}

// Each calls fn for every series in iteration order. The series must not be
// modified by fn.
func (s *SeriesStore) Each(fn func(index int, series *Series) error) error {
	if s == nil {
		return nil
	}
	for i, key := range s.order {
		if err := fn(i, s.byKey[key]); err != nil {
			return err
		}
	}
	return nil
}

// SampleCount returns the total number of samples across all series.
func (s *SeriesStore) SampleCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, series := range s.byKey {
		n += len(series.Samples)
	}
	return n
}
