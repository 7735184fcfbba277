package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/rcliao/taskmarket/internal/logging"
	"github.com/rcliao/taskmarket/internal/metrics"
)

const breakerName = "similarity-redis"

// RedisCache shares similarity scores between processes. Calls run through a
// circuit breaker; any failure, including an open breaker, reads as a miss.
type RedisCache struct {
	client  redis.UniversalClient
	breaker *gobreaker.CircuitBreaker[float64]
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisCache connects to url (redis://host:port/db) and pings it once.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisCacheFromClient(client, ttl), nil
}

func NewRedisCacheFromClient(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	metrics.CacheBreakerState.WithLabelValues(breakerName).Set(0)

	log := logging.With("cache")
	breaker := gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cache breaker state changed")
			metrics.CacheBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &RedisCache{
		client:  client,
		breaker: breaker,
		ttl:     ttl,
		timeout: 200 * time.Millisecond,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (float64, bool) {
	v, err := r.breaker.Execute(func() (float64, error) {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		s, err := r.client.Get(ctx, key).Result()
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	})
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value float64) {
	_, _ = r.breaker.Execute(func() (float64, error) {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		return value, r.client.Set(ctx, key, strconv.FormatFloat(value, 'g', -1, 64), r.ttl).Err()
	})
}

// State reports the breaker state.
func (r *RedisCache) State() gobreaker.State {
	return r.breaker.State()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
