package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "gatesynth"

// RedisStore keeps one list of JSON records per experiment under
// <prefix>:episodes:<experiment>, and the experiment names in a set
type RedisStore struct {
	addr   string
	prefix string

	mu     sync.RWMutex
	client *redis.Client
}

var _ Store = &RedisStore{}

func NewRedisStore(addr, prefix string) *RedisStore {
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{addr: addr, prefix: prefix}
}

func (s *RedisStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: s.addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}
	s.client = client
	return nil
}

func (s *RedisStore) getClient() (*redis.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.client == nil {
		return nil, ErrNotInitialized
	}
	return s.client, nil
}

func (s *RedisStore) episodesKey(experiment string) string {
	return strings.Join([]string{s.prefix, "episodes", experiment}, ":")
}

func (s *RedisStore) experimentsKey() string {
	return s.prefix + ":experiments"
}

func (s *RedisStore) SaveEpisode(ctx context.Context, record EpisodeRecord) error {
	client, err := s.getClient()
	if err != nil {
		return err
	}
	payload, err := encodeRecord(record)
	if err != nil {
		return err
	}
	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.episodesKey(record.Experiment), payload)
		pipe.SAdd(ctx, s.experimentsKey(), record.Experiment)
		return nil
	})
	return err
}

func (s *RedisStore) Episodes(ctx context.Context, experiment string) ([]EpisodeRecord, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	payloads, err := client.LRange(ctx, s.episodesKey(experiment), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]EpisodeRecord, 0, len(payloads))
	for _, p := range payloads {
		record, err := decodeRecord([]byte(p))
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *RedisStore) Experiments(ctx context.Context) ([]string, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	names, err := client.SMembers(ctx, s.experimentsKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
