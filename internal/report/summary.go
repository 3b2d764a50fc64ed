package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ns2pp/internal/output/gnuplot"
	"ns2pp/pkg/models"
)

// SeriesSummary holds per-series bandwidth statistics.
type SeriesSummary struct {
	FlowID  int     `json:"flow_id"`
	Node    int     `json:"node"`
	Samples int     `json:"samples"`
	Mean    float64 `json:"mean_mbps"`
	StdDev  float64 `json:"stddev_mbps"`
	Peak    float64 `json:"peak_mbps"`
	// TotalMb is the volume carried by the closed windows, in megabits.
	TotalMb float64 `json:"total_mb"`
}

// Summarize computes statistics for every series in store order.
func Summarize(store *models.SeriesStore) []SeriesSummary {
	out := make([]SeriesSummary, 0, store.Len())
	_ = store.Each(func(_ int, series *models.Series) error {
		out = append(out, summarizeSeries(series))
		return nil
	})
	return out
}

func summarizeSeries(series *models.Series) SeriesSummary {
	sum := SeriesSummary{
		FlowID:  series.Key.FlowID,
		Node:    series.Key.Node,
		Samples: len(series.Samples),
	}
	if len(series.Samples) == 0 {
		return sum
	}

	values := make([]float64, len(series.Samples))
	for i, s := range series.Samples {
		values[i] = s.Mbps
	}
	sum.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		sum.StdDev = stat.StdDev(values, nil)
	}
	sum.Peak = floats.Max(values)
	sum.TotalMb = floats.Sum(values)
	return sum
}

// WriteTable prints summaries as an aligned table.
func WriteTable(w io.Writer, summaries []SeriesSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FLOW\tNODE\tSAMPLES\tMEAN(Mbps)\tSTDDEV\tPEAK(Mbps)\tTOTAL(Mb)")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
			s.FlowID, s.Node, s.Samples,
			gnuplot.FormatFloat(s.Mean), gnuplot.FormatFloat(s.StdDev),
			gnuplot.FormatFloat(s.Peak), gnuplot.FormatFloat(s.TotalMb))
	}
	return tw.Flush()
}
