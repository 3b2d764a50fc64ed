package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	NS2PP NS2PPConfig `yaml:"ns2pp"`
}

// NS2PPConfig is the project configuration.
type NS2PPConfig struct {
	Input       InputConfig       `yaml:"input"`
	Filter      FilterConfig      `yaml:"filter"`
	Parse       ParseConfig       `yaml:"parse"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Rules       RulesConfig       `yaml:"rules"`
	Output      OutputConfig      `yaml:"output"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Serve       ServeConfig       `yaml:"serve"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// InputConfig controls where trace lines come from.
type InputConfig struct {
	Mode  string      `yaml:"mode"` // file|redis
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig controls Redis access.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Key       string `yaml:"key"`
	KeyPrefix string `yaml:"key_prefix"`
}

// FilterConfig selects the records to aggregate.
type FilterConfig struct {
	EventType string `yaml:"event_type"`
	Flows     []int  `yaml:"flows"`
	Nodes     []int  `yaml:"nodes"`
}

// ParseConfig controls malformed record handling.
type ParseConfig struct {
	OnMalformed string `yaml:"on_malformed"` // skip|abort
}

// AggregationConfig controls windowing.
type AggregationConfig struct {
	FlushPartial bool `yaml:"flush_partial"`
}

// RulesConfig controls optional Sigma rule selection.
type RulesConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig controls the output sinks. The gnuplot files are always written.
type OutputConfig struct {
	Prefix     string                 `yaml:"prefix"`
	Dir        string                 `yaml:"dir"`
	Preview    bool                   `yaml:"preview"`
	JSON       FileOutputConfig       `yaml:"json"`
	HTTP       HTTPOutputConfig       `yaml:"http"`
	ClickHouse ClickHouseOutputConfig `yaml:"clickhouse"`
	Redis      RedisOutputConfig      `yaml:"redis"`
	NATS       NATSOutputConfig       `yaml:"nats"`
	PNG        PNGOutputConfig        `yaml:"png"`
}

// FileOutputConfig config for local JSON output.
type FileOutputConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// HTTPOutputConfig config for remote output.
type HTTPOutputConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// ClickHouseOutputConfig config for ClickHouse HTTP JSONEachRow writes.
type ClickHouseOutputConfig struct {
	Enabled   bool              `yaml:"enabled"`
	URL       string            `yaml:"url"`
	Database  string            `yaml:"database"`
	Table     string            `yaml:"table"`
	Username  string            `yaml:"username"`
	Password  string            `yaml:"password"`
	Timeout   time.Duration     `yaml:"timeout"`
	Headers   map[string]string `yaml:"headers"`
	BatchSize int               `yaml:"batch_size"`
}

// RedisOutputConfig config for the Redis series store.
type RedisOutputConfig struct {
	Enabled bool        `yaml:"enabled"`
	Redis   RedisConfig `yaml:",inline"`
}

// NATSOutputConfig config for per-sample NATS publishing.
type NATSOutputConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// PNGOutputConfig config for the rendered chart.
type PNGOutputConfig struct {
	Enabled bool    `yaml:"enabled"`
	Path    string  `yaml:"path"`
	Title   string  `yaml:"title"`
	Width   float64 `yaml:"width_inches"`
	Height  float64 `yaml:"height_inches"`
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// ServeConfig controls the HTTP API.
type ServeConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file. A missing file yields an
// empty config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills unset values.
func ApplyDefaults(cfg *Config) {
	c := &cfg.NS2PP

	if c.Input.Mode == "" {
		c.Input.Mode = "file"
	}
	if c.Input.Redis.Addr == "" {
		c.Input.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Input.Redis.Key == "" {
		c.Input.Redis.Key = "ns2_trace"
	}

	if c.Filter.EventType == "" {
		c.Filter.EventType = "r"
	}
	if c.Parse.OnMalformed == "" {
		c.Parse.OnMalformed = "skip"
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Output.ClickHouse.Database == "" {
		c.Output.ClickHouse.Database = "ns2pp"
	}
	if c.Output.ClickHouse.Table == "" {
		c.Output.ClickHouse.Table = "bandwidth_samples"
	}
	if c.Output.Redis.Redis.Addr == "" {
		c.Output.Redis.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Output.Redis.Redis.KeyPrefix == "" {
		c.Output.Redis.Redis.KeyPrefix = "ns2pp"
	}
	if c.Output.NATS.SubjectPrefix == "" {
		c.Output.NATS.SubjectPrefix = "ns2pp"
	}
	if c.Output.PNG.Width <= 0 {
		c.Output.PNG.Width = 8
	}
	if c.Output.PNG.Height <= 0 {
		c.Output.PNG.Height = 4
	}

	if c.Serve.ListenAddr == "" {
		c.Serve.ListenAddr = ":8080"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
