package report

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"

	"ns2pp/pkg/models"
)

// PreviewOptions sizes the terminal chart.
type PreviewOptions struct {
	Height int
	Width  int
}

// Preview draws one ASCII chart per series. Series with fewer than two
// samples cannot be drawn and are listed instead.
func Preview(w io.Writer, store *models.SeriesStore, opts PreviewOptions) error {
	if opts.Height <= 0 {
		opts.Height = 8
	}
	return store.Each(func(_ int, series *models.Series) error {
		if len(series.Samples) < 2 {
			_, err := fmt.Fprintf(w, "%s: %d sample(s), nothing to draw\n\n", series.Key.Label(), len(series.Samples))
			return err
		}
		values := make([]float64, len(series.Samples))
		for i, s := range series.Samples {
			values[i] = s.Mbps
		}
		graphOpts := []asciigraph.Option{
			asciigraph.Height(opts.Height),
			asciigraph.Caption(series.Key.Label() + " (Mbps)"),
		}
		if opts.Width > 0 {
			graphOpts = append(graphOpts, asciigraph.Width(opts.Width))
		}
		_, err := fmt.Fprintf(w, "%s\n\n", asciigraph.Plot(values, graphOpts...))
		return err
	})
}
