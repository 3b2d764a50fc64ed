package tracegen

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/iti/rngstream"
)

// FlowSpec describes one synthetic flow over a single link.
type FlowSpec struct {
	ID   int     `yaml:"id"`
	From int     `yaml:"from"`
	To   int     `yaml:"to"`
	Type string  `yaml:"type"`
	Size int     `yaml:"size"`
	Rate float64 `yaml:"rate"`
}

// Config configures a generated trace.
type Config struct {
	Name     string
	Duration float64
	// Delay is the link propagation delay in seconds.
	Delay float64
	// Bandwidth is the link rate in Mbps, used for transmission delay.
	Bandwidth float64
	DropProb  float64
	Flows     []FlowSpec
}

// DefaultFlows is a small dumbbell mix of one TCP and two CBR flows.
var DefaultFlows = []FlowSpec{
	{ID: 1, From: 0, To: 2, Type: "tcp", Size: 1040, Rate: 120},
	{ID: 2, From: 1, To: 2, Type: "cbr", Size: 1000, Rate: 250},
	{ID: 3, From: 2, To: 3, Type: "cbr", Size: 500, Rate: 80},
}

type record struct {
	time float64
	code string
	from int
	to   int
	flow FlowSpec
	seq  int
	id   int
}

// Generator writes ns-2 style traces driven by an rngstream.
type Generator struct {
	cfg Config
	rng *rngstream.RngStream
}

// New creates a generator with defaults applied.
func New(cfg Config) (*Generator, error) {
	if cfg.Name == "" {
		cfg.Name = "tracegen"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 0.01
	}
	if cfg.Bandwidth <= 0 {
		cfg.Bandwidth = 10
	}
	if cfg.DropProb < 0 || cfg.DropProb >= 1 {
		return nil, fmt.Errorf("drop probability %v out of range [0, 1)", cfg.DropProb)
	}
	if len(cfg.Flows) == 0 {
		cfg.Flows = DefaultFlows
	}
	for _, f := range cfg.Flows {
		if f.Rate <= 0 || f.Size <= 0 {
			return nil, fmt.Errorf("flow %d: rate and size must be positive", f.ID)
		}
		if f.Type == "" {
			return nil, fmt.Errorf("flow %d: packet type is empty", f.ID)
		}
	}
	return &Generator{cfg: cfg, rng: rngstream.New(cfg.Name)}, nil
}

// Lines returns the trace sorted by time, one ns-2 record per line without
// the trailing newline.
func (g *Generator) Lines() []string {
	records := g.records()
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = formatRecord(r)
	}
	return lines
}

// Write emits the trace and returns the number of lines.
func (g *Generator) Write(w io.Writer) (int, error) {
	lines := g.Lines()
	out := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := out.WriteString(line + "\n"); err != nil {
			return 0, err
		}
	}
	if err := out.Flush(); err != nil {
		return 0, err
	}
	return len(lines), nil
}

func (g *Generator) records() []record {
	var records []record
	pktID := 0
	for _, flow := range g.cfg.Flows {
		tx := float64(flow.Size*8) / (g.cfg.Bandwidth * 1e6)
		seq := 0
		for t := g.expovariate(flow.Rate); t < g.cfg.Duration; t += g.expovariate(flow.Rate) {
			base := record{from: flow.From, to: flow.To, flow: flow, seq: seq, id: pktID}

			enq, deq := base, base
			enq.code, enq.time = "+", t
			deq.code, deq.time = "-", t
			records = append(records, enq, deq)

			last := base
			last.time = t + tx + g.cfg.Delay
			last.code = "r"
			if g.cfg.DropProb > 0 && g.rng.RandU01() < g.cfg.DropProb {
				last.code = "d"
				last.time = t
			}
			records = append(records, last)

			seq++
			pktID++
		}
	}
	slices.SortStableFunc(records, func(a, b record) int {
		switch {
		case a.time < b.time:
			return -1
		case a.time > b.time:
			return 1
		default:
			return 0
		}
	})
	return records
}

func (g *Generator) expovariate(rate float64) float64 {
	u := g.rng.RandU01()
	for u == 0 {
		u = g.rng.RandU01()
	}
	return -math.Log(u) / rate
}

func formatRecord(r record) string {
	t := math.Round(r.time*1e6) / 1e6
	return fmt.Sprintf("%s %s %d %d %s %d ------- %d %d.0 %d.0 %d %d",
		r.code, strconv.FormatFloat(t, 'f', -1, 64), r.from, r.to, r.flow.Type, r.flow.Size,
		r.flow.ID, r.flow.From, r.flow.To, r.seq, r.id)
}
