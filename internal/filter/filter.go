package filter

import (
	"fmt"
	"strconv"
	"strings"

	"ns2pp/internal/rules"
	"ns2pp/pkg/models"
)

// EventCodes lists the selectable trace event codes: receive, drop, enqueue, dequeue.
var EventCodes = []string{"r", "d", "+", "-"}

// Reason explains why a record was not selected.
type Reason string

const (
	Selected     Reason = ""
	RejectedCode Reason = "event"
	RejectedFlow Reason = "flow"
	RejectedNode Reason = "node"
	RejectedRule Reason = "rule"
)

// Filter selects trace records by event code and optional flow/node allow-sets.
type Filter struct {
	code   string
	flows  map[int]struct{}
	nodes  map[int]struct{}
	engine rules.Engine

	// flowArgs and nodeArgs keep the ids as given, for the diagnostic.
	flowArgs []int
	nodeArgs []int
}

// New builds a filter. Empty flows or nodes allow every value; a nil engine
// applies no rules.
func New(code string, flows, nodes []int, engine rules.Engine) (*Filter, error) {
	if !ValidCode(code) {
		return nil, fmt.Errorf("invalid event type %q: want one of %s", code, strings.Join(EventCodes, ", "))
	}
	return &Filter{
		code:   code,
		flows:  toSet(flows),
		nodes:  toSet(nodes),
		engine: engine,

		flowArgs: append([]int(nil), flows...),
		nodeArgs: append([]int(nil), nodes...),
	}, nil
}

// ValidCode reports whether code is a selectable event code.
func ValidCode(code string) bool {
	for _, c := range EventCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Code returns the selected event code.
func (f *Filter) Code() string {
	return f.code
}

// MatchCode reports whether a record with the given leading token is of the selected event type.
func (f *Filter) MatchCode(code string) bool {
	return code == f.code
}

// Check returns Selected if the event passes every criterion, otherwise the first failing one.
func (f *Filter) Check(ev *models.Event) Reason {
	if !f.MatchCode(ev.Code) {
		return RejectedCode
	}
	if len(f.flows) > 0 {
		if _, ok := f.flows[ev.FlowID]; !ok {
			return RejectedFlow
		}
	}
	if len(f.nodes) > 0 {
		if _, ok := f.nodes[ev.ToNode]; !ok {
			return RejectedNode
		}
	}
	if f.engine != nil && !f.engine.Match(ev) {
		return RejectedRule
	}
	return Selected
}

// Allow reports whether the event is selected.
func (f *Filter) Allow(ev *models.Event) bool {
	return f.Check(ev) == Selected
}

// Select returns the allowed events, preserving input order.
func (f *Filter) Select(events []*models.Event) []*models.Event {
	var out []*models.Event
	for _, ev := range events {
		if ev != nil && f.Allow(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// Summary renders the diagnostic printed when nothing is selected.
func (f *Filter) Summary() string {
	var b strings.Builder
	b.WriteString("\nThere's no event for these arguments:\n")
	fmt.Fprintf(&b, "    --flowid    : %s\n", formatArgs(f.flowArgs))
	fmt.Fprintf(&b, "    --nodeid    : %s\n", formatArgs(f.nodeArgs))
	fmt.Fprintf(&b, "    --eventtype : %s\n\n", f.code)
	return b.String()
}

func toSet(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// formatArgs renders ids in the order given, duplicates included.
func formatArgs(values []int) string {
	if len(values) == 0 {
		return "not used"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
