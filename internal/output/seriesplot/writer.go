package seriesplot

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"ns2pp/internal/logger"
	"ns2pp/pkg/models"
)

// Config configures the PNG renderer.
type Config struct {
	Path   string
	Title  string
	Width  vg.Length
	Height vg.Length
}

// Writer renders every series as one line on a single PNG chart.
type Writer struct {
	cfg Config
}

// NewWriter creates a PNG writer.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("png output path is empty")
	}
	if cfg.Width <= 0 {
		cfg.Width = 8 * vg.Inch
	}
	if cfg.Height <= 0 {
		cfg.Height = 4 * vg.Inch
	}
	return &Writer{cfg: cfg}, nil
}

// WriteSeries renders the chart. An empty store produces no file.
func (w *Writer) WriteSeries(store *models.SeriesStore) error {
	if store.Len() == 0 {
		logger.Debugf("No series to render, skipping %s", w.cfg.Path)
		return nil
	}

	p := plot.New()
	p.Title.Text = w.cfg.Title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Bandwidth (Mbps)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	var lines []interface{}
	_ = store.Each(func(_ int, series *models.Series) error {
		xys := make(plotter.XYs, len(series.Samples))
		for i, s := range series.Samples {
			xys[i].X = s.Time
			xys[i].Y = s.Mbps
		}
		lines = append(lines, series.Key.Label(), xys)
		return nil
	})
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return fmt.Errorf("build plot: %w", err)
	}

	if dir := filepath.Dir(w.cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create png directory: %w", err)
		}
	}
	if err := p.Save(w.cfg.Width, w.cfg.Height, w.cfg.Path); err != nil {
		return fmt.Errorf("save %s: %w", w.cfg.Path, err)
	}
	logger.Debugf("Wrote %s", w.cfg.Path)
	return nil
}

// Close is a no-op.
func (w *Writer) Close() error {
	return nil
}
