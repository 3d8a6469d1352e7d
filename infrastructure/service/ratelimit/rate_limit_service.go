package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// rateLimitService implementasi RateLimitService dengan Redis
type rateLimitService struct {
	redisClient *redis.Client
	logger      *logrus.Logger
}

// RateLimitConfig configuration untuk rate limiting
type RateLimitConfig struct {
	Enabled       bool
	RedisURL      string
	IPAttempts    int
	IPWindow      time.Duration
	UserAttempts  int
	UserWindow    time.Duration
	BlockDuration time.Duration
}

// NewRateLimitService connects to Redis, or returns a no-op limiter when disabled.
func NewRateLimitService(config RateLimitConfig, logger *logrus.Logger) (outbound.RateLimitService, error) {
	if !config.Enabled {
		logger.Info("Rate limiting disabled")
		return NewNoop(), nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"ip_attempts":    config.IPAttempts,
		"ip_window":      config.IPWindow,
		"user_attempts":  config.UserAttempts,
		"user_window":    config.UserWindow,
		"block_duration": config.BlockDuration,
	}).Info("Rate limiting service initialized")

	return NewWithClient(redisClient, logger), nil
}

// NewWithClient wraps an existing Redis client.
func NewWithClient(client *redis.Client, logger *logrus.Logger) outbound.RateLimitService {
	return &rateLimitService{redisClient: client, logger: logger}
}

// CheckLimit mengecek apakah limit telah tercapai
func (s *rateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	currentCount, err := s.GetAttempts(ctx, key)
	if err != nil {
		return false, err
	}

	isUnderLimit := currentCount < limit

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":         key,
		"current":     currentCount,
		"limit":       limit,
		"under_limit": isUnderLimit,
	}).Debug("Rate limit check")

	return isUnderLimit, nil
}

// Increment menambah counter; the window starts at the first hit.
func (s *rateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	count, err := s.redisClient.Incr(ctx, key).Result()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}
	if count == 1 {
		if err := s.redisClient.Expire(ctx, key, window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":    key,
		"count":  count,
		"window": window,
	}).Debug("Rate limit incremented")

	return nil
}

// Block memblokir key untuk durasi tertentu
func (s *rateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	blockKey := blockedKey(key)

	blockData := map[string]interface{}{
		"reason":     reason,
		"blocked_at": time.Now().Unix(),
		"duration":   duration.Seconds(),
	}

	pipeline := s.redisClient.TxPipeline()
	pipeline.HSet(ctx, blockKey, blockData)
	pipeline.Expire(ctx, blockKey, duration)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to block key")
		return fmt.Errorf("failed to block key: %w", err)
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":      key,
		"duration": duration,
		"reason":   reason,
	}).Warn("Key blocked due to rate limit exceeded")

	return nil
}

// IsBlocked mengecek apakah key sedang diblokir
func (s *rateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, blockedKey(key)).Result()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to check block status")
		return false, fmt.Errorf("failed to check block status: %w", err)
	}
	return exists > 0, nil
}

// GetAttempts mendapatkan jumlah attempts untuk key
func (s *rateLimitService) GetAttempts(ctx context.Context, key string) (int, error) {
	count, err := s.redisClient.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		s.logger.WithContext(ctx).WithError(err).Error("Failed to get attempts count")
		return 0, fmt.Errorf("failed to get attempts: %w", err)
	}
	return count, nil
}

// Reset clears the counter after a successful login.
func (s *rateLimitService) Reset(ctx context.Context, key string) error {
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}

func blockedKey(key string) string {
	return fmt.Sprintf("blocked:%s", key)
}

// noopRateLimitService implementasi no-op untuk ketika rate limiting disabled
type noopRateLimitService struct{}

func NewNoop() outbound.RateLimitService {
	return noopRateLimitService{}
}

func (noopRateLimitService) CheckLimit(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

func (noopRateLimitService) Increment(context.Context, string, time.Duration) error { return nil }

func (noopRateLimitService) Block(context.Context, string, time.Duration, string) error { return nil }

func (noopRateLimitService) IsBlocked(context.Context, string) (bool, error) { return false, nil }

func (noopRateLimitService) GetAttempts(context.Context, string) (int, error) { return 0, nil }

func (noopRateLimitService) Reset(context.Context, string) error { return nil }
