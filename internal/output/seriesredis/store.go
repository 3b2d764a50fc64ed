package seriesredis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"ns2pp/internal/output/gnuplot"
	"ns2pp/pkg/models"
)

// Config configures Redis access for series persistence.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	Run       string
	Event     string
}

// Store persists bandwidth series as Redis lists, one per key, plus an
// ordered index so a reader can rebuild the store in emission order.
type Store struct {
	client *redis.Client
	prefix string
	run    string
	event  string
}

// NewStore constructs a Redis-backed series store.
func NewStore(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		cfg.KeyPrefix = "ns2pp"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis series store: %w", err)
	}

	return &Store{
		client: client,
		prefix: strings.TrimSpace(cfg.KeyPrefix),
		run:    cfg.Run,
		event:  cfg.Event,
	}, nil
}

// WriteSeries replaces every stored series in a single pipeline. Series of a
// previous write that are absent from store are removed.
func (s *Store) WriteSeries(store *models.SeriesStore) error {
	ctx := context.Background()
	previous, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("read series index: %w", err)
	}

	pipe := s.client.Pipeline()
	for _, member := range previous {
		if key, ok := decodeMember(member); ok {
			pipe.Del(ctx, s.seriesKey(key), s.metaKey(key))
		}
	}
	pipe.Del(ctx, s.indexKey())

	err = store.Each(func(i int, series *models.Series) error {
		listKey := s.seriesKey(series.Key)
		pipe.Del(ctx, listKey)
		if len(series.Samples) > 0 {
			values := make([]interface{}, 0, len(series.Samples))
			for _, sample := range series.Samples {
				values = append(values, encodeSample(sample))
			}
			pipe.RPush(ctx, listKey, values...)
		}
		pipe.HSet(ctx, s.metaKey(series.Key),
			"samples", strconv.Itoa(len(series.Samples)),
			"run", s.run,
			"event", s.event,
		)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(i), Member: encodeMember(series.Key)})
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write series redis keys: %w", err)
	}
	return nil
}

// Load rebuilds a store from Redis in index order.
func (s *Store) Load(ctx context.Context) (*models.SeriesStore, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read series index: %w", err)
	}

	out := models.NewSeriesStore()
	for _, member := range members {
		key, ok := decodeMember(member)
		if !ok {
			continue
		}
		values, err := s.client.LRange(ctx, s.seriesKey(key), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("read series %s: %w", key, err)
		}
		for _, v := range values {
			sample, ok := decodeSample(v)
			if !ok {
				continue
			}
			out.Append(key, sample)
		}
	}
	return out, nil
}

// Close closes Redis resources.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Store) indexKey() string {
	return s.prefix + ":series_index"
}

func (s *Store) seriesKey(key models.SeriesKey) string {
	return fmt.Sprintf("%s:series:%d:%d", s.prefix, key.FlowID, key.Node)
}

func (s *Store) metaKey(key models.SeriesKey) string {
	return fmt.Sprintf("%s:meta:%d:%d", s.prefix, key.FlowID, key.Node)
}

func encodeSample(sample models.Sample) string {
	return gnuplot.FormatFloat(sample.Time) + "\t" + gnuplot.FormatFloat(sample.Mbps)
}

func decodeSample(v string) (models.Sample, bool) {
	parts := strings.SplitN(v, "\t", 2)
	if len(parts) != 2 {
		return models.Sample{}, false
	}
	t, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return models.Sample{}, false
	}
	mbps, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return models.Sample{}, false
	}
	return models.Sample{Time: t, Mbps: mbps}, true
}

func encodeMember(key models.SeriesKey) string {
	return strconv.Itoa(key.FlowID) + "|" + strconv.Itoa(key.Node)
}

func decodeMember(member string) (models.SeriesKey, bool) {
	parts := strings.SplitN(member, "|", 2)
	if len(parts) != 2 {
		return models.SeriesKey{}, false
	}
	flow, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.SeriesKey{}, false
	}
	node, err := strconv.Atoi(parts[1])
	if err != nil {
		return models.SeriesKey{}, false
	}
	return models.SeriesKey{FlowID: flow, Node: node}, true
}
