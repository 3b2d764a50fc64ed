package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ns2pp.yml")
	data := `ns2pp:
  input:
    mode: redis
    redis:
      addr: 10.0.0.5:6379
      key: lab_trace
  filter:
    event_type: d
    flows: [3, 9]
  parse:
    on_malformed: abort
  aggregation:
    flush_partial: true
  output:
    prefix: lab
    clickhouse:
      enabled: true
      url: http://ch:8123
      timeout: 3s
    redis:
      enabled: true
      addr: 10.0.0.6:6379
      key_prefix: bw
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ApplyDefaults(cfg)
	c := cfg.NS2PP

	if c.Input.Mode != "redis" || c.Input.Redis.Key != "lab_trace" {
		t.Fatalf("unexpected input %+v", c.Input)
	}
	if c.Filter.EventType != "d" || len(c.Filter.Flows) != 2 || c.Filter.Flows[1] != 9 {
		t.Fatalf("unexpected filter %+v", c.Filter)
	}
	if c.Parse.OnMalformed != "abort" || !c.Aggregation.FlushPartial {
		t.Fatalf("unexpected parse/aggregation settings")
	}
	if c.Output.ClickHouse.Timeout != 3*time.Second || c.Output.ClickHouse.Table != "bandwidth_samples" {
		t.Fatalf("unexpected clickhouse %+v", c.Output.ClickHouse)
	}
	if c.Output.Redis.Redis.Addr != "10.0.0.6:6379" || c.Output.Redis.Redis.KeyPrefix != "bw" {
		t.Fatalf("unexpected redis output %+v", c.Output.Redis)
	}
	if c.Serve.ListenAddr != ":8080" || c.Logging.Level != "info" {
		t.Fatalf("defaults not applied: %+v %+v", c.Serve, c.Logging)
	}
}

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	ApplyDefaults(cfg)
	if cfg.NS2PP.Filter.EventType != "r" || cfg.NS2PP.Parse.OnMalformed != "skip" || cfg.NS2PP.Output.Dir != "." {
		t.Fatalf("unexpected defaults %+v", cfg.NS2PP)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("ns2pp: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
