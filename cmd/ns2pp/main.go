package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"ns2pp/config"
	"ns2pp/internal/bandwidth"
	"ns2pp/internal/filter"
	inputfile "ns2pp/internal/input/file"
	inputredis "ns2pp/internal/input/redis"
	"ns2pp/internal/logger"
	"ns2pp/internal/metrics"
	"ns2pp/internal/pipeline"
	"ns2pp/internal/report"
	"ns2pp/internal/rules"
)

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat("ns2pp.yml"); err == nil {
		return "ns2pp.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		path := filepath.Join(exeDir, "ns2pp.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "ns2pp.yml"
}

// applyOverrides lets command line flags win over the config file.
func applyOverrides(cfg *config.Config, opts *options) {
	c := &cfg.NS2PP
	if opts.set["t"] {
		c.Filter.EventType = opts.eventType
	}
	if opts.set["f"] {
		c.Filter.Flows = opts.flows
	}
	if opts.set["n"] {
		c.Filter.Nodes = opts.nodes
	}
	if opts.set["p"] {
		c.Output.Prefix = opts.prefix
	}
	if opts.set["o"] {
		c.Output.Dir = opts.outDir
	}
	if opts.set["on-malformed"] {
		c.Parse.OnMalformed = opts.onMalformed
	}
	if opts.set["flush-partial"] {
		c.Aggregation.FlushPartial = opts.flushPartial
	}
	if opts.set["preview"] {
		c.Output.Preview = opts.preview
	}
	if opts.set["metrics-file"] {
		c.Metrics.Textfile = opts.metricsFile
	}
	if opts.set["listen"] {
		c.Serve.ListenAddr = opts.listen
	}
	if c.Output.Prefix == "" {
		c.Output.Prefix = time.Now().Format("20060102-1504")
	}
}

func loadConfig(opts *options) (*config.Config, string, error) {
	configPath := findConfigFile(opts.configPath)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyDefaults(cfg)
	applyOverrides(cfg, opts)
	return cfg, configPath, nil
}

func buildEngine(cfg config.RulesConfig) (rules.Engine, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if strings.TrimSpace(cfg.Path) == "" {
		logger.Warnf("Rules enabled but rules.path is empty; rule selection disabled")
		return nil, nil
	}
	sigmaEngine, stats, err := rules.NewSigmaEngine(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load Sigma rules from %s: %w", cfg.Path, err)
	}
	logger.Infof("Sigma rules loaded: loaded=%d skipped_complex=%d skipped_datasource=%d skipped_invalid=%d files=%d",
		stats.Loaded,
		stats.SkippedComplex,
		stats.SkippedDatasource,
		stats.SkippedInvalid,
		stats.TotalFiles,
	)
	if stats.Loaded == 0 {
		logger.Warnf("No compatible Sigma rules loaded; every record will be rejected by the rule filter")
	}
	return sigmaEngine, nil
}

func openSource(cfg *config.Config, trace string) (pipeline.LineSource, error) {
	switch cfg.NS2PP.Input.Mode {
	case "file":
		if trace == "" {
			return nil, fmt.Errorf("no trace file given")
		}
		r, err := inputfile.NewReader(trace)
		if err != nil {
			return nil, err
		}
		logger.Infof("Input mode: file (%s)", trace)
		return r, nil
	case "redis":
		r := cfg.NS2PP.Input.Redis
		c, err := inputredis.NewConsumer(inputredis.Config{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Key:      r.Key,
		})
		if err != nil {
			return nil, err
		}
		logger.Infof("Input mode: redis (%s/%s)", r.Addr, r.Key)
		return c, nil
	default:
		return nil, fmt.Errorf("unknown input mode: %s", cfg.NS2PP.Input.Mode)
	}
}

// analyze runs one pass over the trace and writes every configured output.
func analyze(ctx context.Context, cfg *config.Config, trace string, m *metrics.Metrics, stdout, stderr io.Writer) (*pipeline.Result, error) {
	c := cfg.NS2PP

	engine, err := buildEngine(c.Rules)
	if err != nil {
		return nil, err
	}
	f, err := filter.New(c.Filter.EventType, c.Filter.Flows, c.Filter.Nodes, engine)
	if err != nil {
		return nil, err
	}
	policy, err := pipeline.ParsePolicy(c.Parse.OnMalformed)
	if err != nil {
		return nil, err
	}

	src, err := openSource(cfg, trace)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	pipe := pipeline.NewTracePipeline(f, policy, bandwidth.Config{FlushPartial: c.Aggregation.FlushPartial}, m)
	pipe.SetWarningOutput(stderr)
	result, err := pipe.Run(ctx, src)
	if err != nil {
		return nil, err
	}
	if result.Empty() {
		fmt.Fprint(stdout, f.Summary())
	}

	sinks, err := buildSinks(cfg)
	if err != nil {
		return nil, err
	}
	if err := pipe.Emit(result.Store, sinks); err != nil {
		return nil, err
	}

	if c.Output.Preview && !result.Empty() {
		if err := report.WriteTable(stdout, report.Summarize(result.Store)); err != nil {
			return nil, err
		}
		fmt.Fprintln(stdout)
		if err := report.Preview(stdout, result.Store, report.PreviewOptions{}); err != nil {
			return nil, err
		}
	}

	if c.Metrics.Textfile != "" {
		if err := m.WriteTextfile(c.Metrics.Textfile); err != nil {
			return nil, fmt.Errorf("write metrics textfile: %w", err)
		}
	}
	return result, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs("ns2pp", args, false, stderr)
	if err != nil {
		return err
	}
	cfg, configPath, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}
	defer logger.Close()
	logger.Infof("Config loaded from: %s", configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := analyze(ctx, cfg, opts.trace, metrics.New(), stdout, stderr); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Done!")
	return nil
}

func initLogger(cfg *config.Config) error {
	l := cfg.NS2PP.Logging
	if err := logger.Init(logger.Options{Enabled: l.Enabled, Level: l.Level, File: l.File, Console: l.Console}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		newFlagSet("ns2pp", &options{}, true, os.Stderr).PrintDefaults()
		os.Exit(1)
	}

	var err error
	if os.Args[1] == "serve" {
		err = runServe(os.Args[2:], os.Stdout, os.Stderr)
	} else {
		err = run(os.Args[1:], os.Stdout, os.Stderr)
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		logger.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "ns2pp: %v\n", err)
		os.Exit(1)
	}
}
