package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ratesvc/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the cached value into dest. A miss is reported as (false, nil).
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Rates config caching
func (s *CacheService) CacheRatesConfig(ctx context.Context, cfg *models.RatesConfig) error {
	if cfg == nil {
		return errors.New("cannot cache nil rates config")
	}
	return s.Set(ctx, ratesKey(cfg.ContractAddress), cfg)
}

// GetRatesConfig returns nil without error on a cache miss.
func (s *CacheService) GetRatesConfig(ctx context.Context, contract string) (*models.RatesConfig, error) {
	var cfg models.RatesConfig
	found, err := s.Get(ctx, ratesKey(contract), &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

func (s *CacheService) InvalidateRatesConfig(ctx context.Context, contract string) error {
	return s.Delete(ctx, ratesKey(contract))
}

// FlushAll flushes all keys from the cache
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *CacheService) GetStats() *redis.PoolStats {
	return s.client.PoolStats()
}
