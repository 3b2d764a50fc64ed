package tracegen

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func TestPushRedisKeepsOrderAcrossBatches(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	lines := make([]string, pushBatch+5)
	for i := range lines {
		lines[i] = fmt.Sprintf("r %d.0 1 2 cbr 1000 ------- 1 1.0 2.0 %d %d", i, i, i)
	}
	if err := PushRedis(context.Background(), client, "trace", lines); err != nil {
		t.Fatalf("push: %v", err)
	}

	got, err := mr.List("trace")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(lines) || got[0] != lines[0] || got[len(got)-1] != lines[len(lines)-1] {
		t.Fatalf("expected %d lines in order, got %d", len(lines), len(got))
	}
}

func TestPushRedisRequiresKey(t *testing.T) {
	if err := PushRedis(context.Background(), nil, "", nil); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
