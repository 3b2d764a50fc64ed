package models

import "strconv"

// Event is one parsed ns-2 trace record.
type Event struct {
	Code     string  `json:"event"`
	Time     float64 `json:"time"`
	FromNode int     `json:"from_node"`
	ToNode   int     `json:"to_node"`
	PktType  string  `json:"pkt_type"`
	PktSize  int     `json:"pkt_size"`
	Flags    string  `json:"flags"`
	FlowID   int     `json:"flow_id"`
	SrcAddr  string  `json:"src_addr"`
	DstAddr  string  `json:"dst_addr"`
	Seq      int     `json:"seq"`
	PktID    int     `json:"pkt_id"`
}

// Key returns the (flow, receiving node) pair the event is aggregated under.
func (e *Event) Key() SeriesKey {
	return SeriesKey{FlowID: e.FlowID, Node: e.ToNode}
}

// Bits returns the packet size in bits.
func (e *Event) Bits() float64 {
	return float64(e.PktSize) * 8.0
}

// Fields returns the record as a flat field map, keyed by the json names.
func (e *Event) Fields() map[string]interface{} {
	return map[string]interface{}{
		"event":     e.Code,
		"time":      strconv.FormatFloat(e.Time, 'f', -1, 64),
		"from_node": e.FromNode,
		"to_node":   e.ToNode,
		"pkt_type":  e.PktType,
		"pkt_size":  e.PktSize,
		"flags":     e.Flags,
		"flow_id":   e.FlowID,
		"src_addr":  e.SrcAddr,
		"dst_addr":  e.DstAddr,
		"seq":       e.Seq,
		"pkt_id":    e.PktID,
	}
}
