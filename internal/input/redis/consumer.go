package redis

import (
	"context"
	"fmt"
	"io"

	redis "github.com/redis/go-redis/v9"
)

// Config configures the Redis consumer.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Consumer drains trace lines from a Redis list, head first.
type Consumer struct {
	client *redis.Client
	key    string
}

// NewConsumer creates a Redis consumer for a list of trace lines.
func NewConsumer(cfg Config) (*Consumer, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("redis key is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Consumer{
		client: client,
		key:    cfg.Key,
	}, nil
}

// Next pops one line from the list. It returns io.EOF once the list is empty.
func (c *Consumer) Next(ctx context.Context) (string, error) {
	res, err := c.client.LPop(ctx, c.key).Result()
	if err == redis.Nil {
		return "", io.EOF
	}
	if err != nil {
		return "", fmt.Errorf("pop %s: %w", c.key, err)
	}
	return res, nil
}

// Close closes the consumer.
func (c *Consumer) Close() error {
	return c.client.Close()
}
