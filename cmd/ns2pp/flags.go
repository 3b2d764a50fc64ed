package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const usageText = `usage: ns2pp <tracefile> [options]
       ns2pp serve <tracefile> [options] [-listen addr]

Parse an ns-2 trace file and plot per-flow bandwidth, one series per
(flow id, receiving node), sampled over 1 second windows.

options:
`

// intList is a repeatable flag that also accepts comma separated values.
type intList []int

func (l *intList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (l *intList) Set(raw string) error {
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("invalid integer %q", part)
		}
		*l = append(*l, v)
	}
	return nil
}

type options struct {
	trace        string
	eventType    string
	flows        intList
	nodes        intList
	prefix       string
	outDir       string
	configPath   string
	onMalformed  string
	flushPartial bool
	preview      bool
	metricsFile  string
	listen       string

	// set records the flags given on the command line.
	set map[string]bool
}

func newFlagSet(name string, opts *options, serve bool, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.eventType, "t", "r", "event type to analyze: r, d, + or -")
	fs.Var(&opts.flows, "f", "flow id to keep (repeatable, comma separated)")
	fs.Var(&opts.nodes, "n", "receiving node to keep (repeatable, comma separated)")
	fs.StringVar(&opts.prefix, "p", "", "output file prefix (default: current time as YYYYMMDD-HHMM)")
	fs.StringVar(&opts.outDir, "o", "", "output directory")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.onMalformed, "on-malformed", "", "malformed record policy: skip or abort")
	fs.BoolVar(&opts.flushPartial, "flush-partial", false, "emit the trailing partial window of each series")
	fs.BoolVar(&opts.preview, "preview", false, "print a summary table and terminal charts")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	if serve {
		fs.StringVar(&opts.listen, "listen", "", "HTTP API listen address")
	}
	fs.Usage = func() {
		fmt.Fprint(out, usageText)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs accepts flags before and after the trace file path.
func parseArgs(name string, args []string, serve bool, out io.Writer) (*options, error) {
	opts := &options{}
	fs := newFlagSet(name, opts, serve, out)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		opts.trace = rest[0]
		if err := fs.Parse(rest[1:]); err != nil {
			return nil, err
		}
		if fs.NArg() > 0 {
			return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
		}
	}

	opts.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts, nil
}
