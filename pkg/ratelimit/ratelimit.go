package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RateLimiter интерфейс для ограничения частоты запросов
type RateLimiter interface {
	// CheckRateLimit проверяет лимит для заданного ключа
	// Возвращает true, если лимит превышен
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RedisRateLimiter реализация RateLimiter поверх Redis.
// Использует sliding window на отсортированном множестве: каждая попытка
// входа записывается с меткой времени, попытки старше окна отбрасываются,
// поэтому лимит не сбрасывается скачком на границе окна.
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter создает новый экземпляр RedisRateLimiter
func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

// CheckRateLimit проверяет, не превышен ли лимит запросов для заданного ключа.
// Алгоритм:
// 1. Удаление из множества записей старше начала окна
// 2. Подсчет оставшихся записей (ZCARD)
// 3. Если счетчик >= лимит → возвращает true, запись не добавляется
// 4. Иначе текущая попытка добавляется в множество и продлевается TTL ключа
func (r *RedisRateLimiter) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("rate_limit:%s", key)

	now := time.Now()
	windowStart := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	// Чистим окно и считаем попытки атомарно
	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", windowStart)
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("failed to count rate limit window: %w", err)
	}

	if countCmd.Val() >= int64(limit) {
		return true, nil // Лимит превышен
	}

	// Регистрируем текущую попытку; uuid исключает коллизии
	// записей с одинаковой меткой времени
	pipe = r.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("failed to record rate limit attempt: %w", err)
	}

	return false, nil
}
