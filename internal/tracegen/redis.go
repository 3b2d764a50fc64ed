package tracegen

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

const pushBatch = 1000

// PushRedis appends lines to a Redis list in batches, preserving order.
func PushRedis(ctx context.Context, client *redis.Client, key string, lines []string) error {
	if key == "" {
		return fmt.Errorf("redis key is empty")
	}
	for start := 0; start < len(lines); start += pushBatch {
		end := start + pushBatch
		if end > len(lines) {
			end = len(lines)
		}
		values := make([]interface{}, 0, end-start)
		for _, line := range lines[start:end] {
			values = append(values, line)
		}
		if err := client.RPush(ctx, key, values...).Err(); err != nil {
			return fmt.Errorf("rpush %s: %w", key, err)
		}
	}
	return nil
}
