// Package counter provides program-wide sequence counters for the roster
// service. Counters are bookkeeping only: the engine bumps them after a
// commit and never reads them to decide a transition.
package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/warp/formation-engine/roster"
)

// DefaultPrefix namespaces counter keys: program:count:<kind>.
const DefaultPrefix = "program:count:"

// =============================================================================
// REDIS SEQUENCER
// =============================================================================

// Redis keeps one INCR counter per kind.
type Redis struct {
	client redis.Cmdable
	prefix string
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client, prefix: DefaultPrefix}
}

func (r *Redis) key(kind roster.CounterKind) string {
	return r.prefix + string(kind)
}

// Next increments the counter and returns its new value.
func (r *Redis) Next(ctx context.Context, kind roster.CounterKind) (uint64, error) {
	n, err := r.client.Incr(ctx, r.key(kind)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", kind, err)
	}
	return uint64(n), nil
}

// Current returns the counter value. A counter never bumped reads as zero.
func (r *Redis) Current(ctx context.Context, kind roster.CounterKind) (uint64, error) {
	v, err := r.client.Get(ctx, r.key(kind)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", kind, err)
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s counter %q: %w", kind, v, err)
	}
	return n, nil
}

// NewRedisClient builds a client from a redis:// URL or a bare host:port and
// verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// =============================================================================
// MEMORY SEQUENCER
// =============================================================================

// Memory is an in-process sequencer used when no Redis is configured.
type Memory struct {
	mu     sync.Mutex
	values map[roster.CounterKind]uint64
}

func NewMemory() *Memory {
	return &Memory{values: make(map[roster.CounterKind]uint64)}
}

func (m *Memory) Next(_ context.Context, kind roster.CounterKind) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[kind]++
	return m.values[kind], nil
}

func (m *Memory) Current(_ context.Context, kind roster.CounterKind) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[kind], nil
}

var (
	_ roster.Sequencer = (*Redis)(nil)
	_ roster.Sequencer = (*Memory)(nil)
)
