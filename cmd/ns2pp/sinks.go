package main

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot/vg"

	"ns2pp/config"
	"ns2pp/internal/logger"
	"ns2pp/internal/output/gnuplot"
	"ns2pp/internal/output/seriesclickhouse"
	"ns2pp/internal/output/serieshttp"
	"ns2pp/internal/output/seriesjson"
	"ns2pp/internal/output/seriesnats"
	"ns2pp/internal/output/seriesplot"
	"ns2pp/internal/output/seriesredis"
	"ns2pp/internal/pipeline"
)

// buildSinks creates the gnuplot writer plus every enabled optional sink.
// Sinks created before a failure are closed.
func buildSinks(cfg *config.Config) (sinks []pipeline.Sink, err error) {
	c := cfg.NS2PP
	out := c.Output
	run := out.Prefix
	event := c.Filter.EventType

	defer func() {
		if err != nil {
			for _, s := range sinks {
				_ = s.Writer.Close()
			}
			sinks = nil
		}
	}()

	gp, err := gnuplot.NewWriter(gnuplot.Config{Dir: out.Dir, Prefix: out.Prefix, EventCode: event})
	if err != nil {
		return sinks, fmt.Errorf("failed to create gnuplot writer: %w", err)
	}
	sinks = append(sinks, pipeline.Sink{Name: "gnuplot", Writer: gp})
	logger.Infof("Output: gnuplot (%s)", filepath.Join(out.Dir, gnuplot.ScriptFileName(out.Prefix)))

	if out.JSON.Enabled {
		path := out.JSON.Path
		if path == "" {
			path = filepath.Join(out.Dir, out.Prefix+"_samples.jsonl")
		}
		w, err := seriesjson.NewWriter(path, run, event)
		if err != nil {
			return sinks, fmt.Errorf("failed to create JSON writer: %w", err)
		}
		sinks = append(sinks, pipeline.Sink{Name: "json", Writer: w})
		logger.Infof("Output: json (%s)", path)
	}

	if out.HTTP.Enabled {
		w, err := serieshttp.NewWriter(serieshttp.Config{
			URL:     out.HTTP.URL,
			Run:     run,
			Event:   event,
			Timeout: out.HTTP.Timeout,
			Headers: out.HTTP.Headers,
		})
		if err != nil {
			return sinks, fmt.Errorf("failed to create HTTP writer: %w", err)
		}
		sinks = append(sinks, pipeline.Sink{Name: "http", Writer: w})
		logger.Infof("Output: http (%s)", out.HTTP.URL)
	}

	if out.ClickHouse.Enabled {
		ch := out.ClickHouse
		w, err := seriesclickhouse.NewWriter(seriesclickhouse.Config{
			URL:       ch.URL,
			Database:  ch.Database,
			Table:     ch.Table,
			Username:  ch.Username,
			Password:  ch.Password,
			Timeout:   ch.Timeout,
			Headers:   ch.Headers,
			BatchSize: ch.BatchSize,
			Run:       run,
			Event:     event,
		})
		if err != nil {
			return sinks, fmt.Errorf("failed to create ClickHouse writer: %w", err)
		}
		sinks = append(sinks, pipeline.Sink{Name: "clickhouse", Writer: w})
		logger.Infof("Output: clickhouse (%s/%s.%s)", ch.URL, ch.Database, ch.Table)
	}

	if out.Redis.Enabled {
		r := out.Redis.Redis
		s, err := seriesredis.NewStore(seriesredis.Config{
			Addr:      r.Addr,
			Password:  r.Password,
			DB:        r.DB,
			KeyPrefix: r.KeyPrefix,
			Run:       run,
			Event:     event,
		})
		if err != nil {
			return sinks, fmt.Errorf("failed to create Redis series store: %w", err)
		}
		sinks = append(sinks, pipeline.Sink{Name: "redis", Writer: s})
		logger.Infof("Output: redis (%s, prefix %s)", r.Addr, r.KeyPrefix)
	}

	if out.NATS.Enabled {
		p, err := seriesnats.NewPublisher(seriesnats.Config{
			URL:           out.NATS.URL,
			SubjectPrefix: out.NATS.SubjectPrefix,
			Run:           run,
			Event:         event,
		})
		if err != nil {
			return sinks, fmt.Errorf("failed to create NATS publisher: %w", err)
		}
		sinks = append(sinks, pipeline.Sink{Name: "nats", Writer: p})
	}

	if out.PNG.Enabled {
		path := out.PNG.Path
		if path == "" {
			path = filepath.Join(out.Dir, out.Prefix+"_plot.png")
		}
		w, err := seriesplot.NewWriter(seriesplot.Config{
			Path:   path,
			Title:  out.PNG.Title,
			Width:  vg.Length(out.PNG.Width) * vg.Inch,
			Height: vg.Length(out.PNG.Height) * vg.Inch,
		})
		if err != nil {
			return sinks, fmt.Errorf("failed to create PNG writer: %w", err)
		}
		sinks = append(sinks, pipeline.Sink{Name: "png", Writer: w})
		logger.Infof("Output: png (%s)", path)
	}

	return sinks, nil
}
