package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"ns2pp/internal/bandwidth"
	"ns2pp/internal/filter"
	"ns2pp/internal/logger"
	"ns2pp/internal/metrics"
	"ns2pp/internal/transform/ns2"
	"ns2pp/pkg/models"
)

// ErrMalformedRecord is returned by Run when a record fails to parse under the abort policy.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedPolicy decides what happens to a selected line that fails to parse.
type MalformedPolicy string

const (
	SkipMalformed  MalformedPolicy = "skip"
	AbortMalformed MalformedPolicy = "abort"
)

// ParsePolicy validates a policy name.
func ParsePolicy(name string) (MalformedPolicy, error) {
	switch p := MalformedPolicy(strings.ToLower(strings.TrimSpace(name))); p {
	case SkipMalformed, AbortMalformed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown malformed record policy %q: want skip or abort", name)
	}
}

// Stats summarizes one pass over a trace.
type Stats struct {
	Lines       int `json:"lines"`
	Blank       int `json:"blank"`
	OtherEvents int `json:"other_events"`
	Malformed   int `json:"malformed"`
	Selected    int `json:"selected"`
	Rejected    int `json:"rejected"`
	Samples     int `json:"samples"`
	Series      int `json:"series"`
}

// Result is the outcome of a pass.
type Result struct {
	Store *models.SeriesStore
	Stats Stats
}

// Empty reports whether no record was selected.
func (r *Result) Empty() bool {
	return r.Stats.Selected == 0
}

// TracePipeline reads trace lines, selects records and aggregates them into bandwidth series.
type TracePipeline struct {
	filter  *filter.Filter
	policy  MalformedPolicy
	aggCfg  bandwidth.Config
	metrics *metrics.Metrics
	warnOut io.Writer
}

// NewTracePipeline creates a pipeline. A nil metrics set gets a fresh one.
func NewTracePipeline(f *filter.Filter, policy MalformedPolicy, aggCfg bandwidth.Config, m *metrics.Metrics) *TracePipeline {
	if policy == "" {
		policy = SkipMalformed
	}
	if m == nil {
		m = metrics.New()
	}
	return &TracePipeline{
		filter:  f,
		policy:  policy,
		aggCfg:  aggCfg,
		metrics: m,
	}
}

// SetWarningOutput sends skipped-record warnings to w in addition to the log.
func (p *TracePipeline) SetWarningOutput(w io.Writer) {
	p.warnOut = w
}

func (p *TracePipeline) warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
	if p.warnOut != nil {
		fmt.Fprintf(p.warnOut, "warning: %s\n", fmt.Sprintf(format, args...))
	}
}

// Run consumes src to the end in a single sequential pass.
func (p *TracePipeline) Run(ctx context.Context, src LineSource) (*Result, error) {
	agg := bandwidth.NewAggregator(p.aggCfg)
	var stats Stats

	for lineNo := 1; ; lineNo++ {
		line, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", lineNo, err)
		}
		stats.Lines++
		p.metrics.LinesRead.Inc()

		code := ns2.LeadingToken(line)
		if code == "" {
			stats.Blank++
			p.metrics.BlankLines.Inc()
			continue
		}
		if !p.filter.MatchCode(code) {
			stats.OtherEvents++
			p.metrics.OtherEvents.Inc()
			continue
		}

		event, err := ns2.Parse(line)
		if err != nil {
			stats.Malformed++
			p.metrics.Malformed.Inc()
			if p.policy == AbortMalformed {
				return nil, fmt.Errorf("%w at line %d: %w", ErrMalformedRecord, lineNo, err)
			}
			p.warnf("Skipping malformed record at line %d: %v", lineNo, err)
			continue
		}

		if reason := p.filter.Check(event); reason != filter.Selected {
			stats.Rejected++
			p.metrics.Rejected.WithLabelValues(string(reason)).Inc()
			continue
		}
		stats.Selected++
		p.metrics.Selected.Inc()

		if _, closed := agg.Add(event); closed {
			p.metrics.SamplesEmitted.Inc()
		}
	}

	store := agg.Finish()
	stats.Series = store.Len()
	stats.Samples = store.SampleCount()
	p.metrics.Series.Set(float64(stats.Series))

	logger.Infof("Trace pass done: lines=%d selected=%d rejected=%d malformed=%d series=%d samples=%d",
		stats.Lines, stats.Selected, stats.Rejected, stats.Malformed, stats.Series, stats.Samples)
	return &Result{Store: store, Stats: stats}, nil
}

// Emit writes the store to every sink concurrently and closes them. Sinks only
// read the store. All sink errors are returned joined.
func (p *TracePipeline) Emit(store *models.SeriesStore, sinks []Sink) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	wg.Add(len(sinks))
	for _, sink := range sinks {
		go func(sink Sink) {
			defer wg.Done()

			started := time.Now()
			err := sink.Writer.WriteSeries(store)
			p.metrics.ObserveSink(sink.Name, started, err)
			if err != nil {
				logger.Errorf("Failed to write %s output: %v", sink.Name, err)
				err = fmt.Errorf("%s: %w", sink.Name, err)
			} else {
				logger.Debugf("Wrote %d series to %s", store.Len(), sink.Name)
			}
			if cerr := sink.Writer.Close(); cerr != nil {
				logger.Errorf("Failed to close %s output: %v", sink.Name, cerr)
				if err == nil {
					err = fmt.Errorf("close %s: %w", sink.Name, cerr)
				}
			}

			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(sink)
	}
	wg.Wait()

	return errors.Join(errs...)
}
