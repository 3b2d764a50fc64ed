package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	redis "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"ns2pp/internal/tracegen"
)

type flowsFile struct {
	Flows []tracegen.FlowSpec `yaml:"flows"`
}

func loadFlows(path string) ([]tracegen.FlowSpec, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f flowsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f.Flows, nil
}

func main() {
	output := flag.String("o", "", "trace output path (default: stdout)")
	name := flag.String("seed", "tracegen", "random stream name")
	duration := flag.Float64("duration", 10, "trace duration in seconds")
	delay := flag.Float64("delay", 0.01, "link propagation delay in seconds")
	bw := flag.Float64("bandwidth", 10, "link bandwidth in Mbps")
	drop := flag.Float64("drop", 0, "packet drop probability")
	flowsPath := flag.String("flows", "", "YAML file with a flows list (id, from, to, type, size, rate)")
	redisAddr := flag.String("redis-addr", "127.0.0.1:6379", "Redis address for -redis-key")
	redisKey := flag.String("redis-key", "", "push the trace to this Redis list instead of a file")
	flag.Parse()

	flows, err := loadFlows(*flowsPath)
	if err != nil {
		log.Fatalf("Failed to load flows: %v", err)
	}

	gen, err := tracegen.New(tracegen.Config{
		Name:      *name,
		Duration:  *duration,
		Delay:     *delay,
		Bandwidth: *bw,
		DropProb:  *drop,
		Flows:     flows,
	})
	if err != nil {
		log.Fatalf("Invalid generator config: %v", err)
	}

	if *redisKey != "" {
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer client.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		lines := gen.Lines()
		if err := tracegen.PushRedis(ctx, client, *redisKey, lines); err != nil {
			log.Fatalf("Failed to push trace: %v", err)
		}
		fmt.Fprintf(os.Stderr, "pushed %d lines to %s/%s\n", len(lines), *redisAddr, *redisKey)
		return
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer f.Close()
		out = f
	}
	n, err := gen.Write(out)
	if err != nil {
		log.Fatalf("Failed to write trace: %v", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d lines\n", n)
}
