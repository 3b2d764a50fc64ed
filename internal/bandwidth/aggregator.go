package bandwidth

import "ns2pp/pkg/models"

const (
	// WindowSeconds is the width of one aggregation window in simulated seconds.
	WindowSeconds = 1.0

	bitsPerMegabit = 1_000_000.0
)

// Config controls aggregation behavior.
type Config struct {
	// FlushPartial emits the trailing, not yet closed window of every key when
	// the pass finishes. By default trailing windows are discarded.
	FlushPartial bool
}

// Aggregator turns a stream of selected trace events into per-key bandwidth
// series. It is not safe for concurrent use; events must be added in trace order.
type Aggregator struct {
	cfg      Config
	byKey    map[models.SeriesKey]*windowState
	seen     []models.SeriesKey
	store    *models.SeriesStore
	finished bool
}

type windowState struct {
	windowStart     float64
	accumulatedBits float64
	pending         int
}

// NewAggregator creates an aggregator for one pass.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{
		cfg:   cfg,
		byKey: make(map[models.SeriesKey]*windowState),
		store: models.NewSeriesStore(),
	}
}

// Add accounts one event and returns the sample it closed, if any.
//
// The event's bits are added before the window test, so the event that closes
// a window is counted in it. A window advances by exactly one width per
// closing event, regardless of how far the event time is past the boundary.
func (a *Aggregator) Add(ev *models.Event) (models.Sample, bool) {
	if a.finished || ev == nil {
		return models.Sample{}, false
	}

	key := ev.Key()
	state, ok := a.byKey[key]
	if !ok {
		state = &windowState{}
		a.byKey[key] = state
		a.seen = append(a.seen, key)
	}

	state.accumulatedBits += ev.Bits()
	state.pending++

	if ev.Time >= state.windowStart+WindowSeconds {
		sample := models.Sample{
			Time: state.windowStart,
			Mbps: state.accumulatedBits / bitsPerMegabit,
		}
		a.store.Append(key, sample)

		state.windowStart += WindowSeconds
		state.accumulatedBits = 0
		state.pending = 0
		return sample, true
	}
	return models.Sample{}, false
}

// Finish ends the pass and returns the populated store. Further Adds are ignored.
func (a *Aggregator) Finish() *models.SeriesStore {
	if a.finished {
		return a.store
	}
	a.finished = true

	if a.cfg.FlushPartial {
		for _, key := range a.seen {
			state := a.byKey[key]
			if state.pending == 0 {
				continue
			}
			a.store.Append(key, models.Sample{
				Time: state.windowStart,
				Mbps: state.accumulatedBits / bitsPerMegabit,
			})
		}
	}
	return a.store
}

// Keys returns the number of keys observed so far, with or without samples.
func (a *Aggregator) Keys() int {
	return len(a.seen)
}

// Aggregate runs a complete pass over events.
func Aggregate(events []*models.Event, cfg Config) *models.SeriesStore {
	agg := NewAggregator(cfg)
	for _, ev := range events {
		agg.Add(ev)
	}
	return agg.Finish()
}
