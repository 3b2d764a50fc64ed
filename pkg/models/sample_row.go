package models

// SampleRow is one sample flattened with its run and key, as exported to row oriented sinks.
type SampleRow struct {
	Run    string  `json:"run"`
	Event  string  `json:"event"`
	FlowID int     `json:"flow_id"`
	Node   int     `json:"node"`
	Time   float64 `json:"t"`
	Mbps   float64 `json:"mbps"`
}

// Rows flattens every sample of the store in iteration order.
func Rows(store *SeriesStore, run, event string) []SampleRow {
	rows := make([]SampleRow, 0, store.SampleCount())
	_ = store.Each(func(_ int, series *Series) error {
		for _, s := range series.Samples {
			rows = append(rows, SampleRow{
				Run:    run,
				Event:  event,
				FlowID: series.Key.FlowID,
				Node:   series.Key.Node,
				Time:   s.Time,
				Mbps:   s.Mbps,
			})
		}
		return nil
	})
	return rows
}
