package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Limiter 固定窗口限流
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter 进程内滑动窗口限流
type MemoryLimiter struct {
	requests map[string][]time.Time
	mutex    sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
	swept    time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)
	rl.sweep(now, cutoff)

	valid := rl.requests[key][:0]
	for _, reqTime := range rl.requests[key] {
		if reqTime.After(cutoff) {
			valid = append(valid, reqTime)
		}
	}
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false, nil
	}
	rl.requests[key] = append(valid, now)
	return true, nil
}

// sweep 每个窗口最多一次，删除窗口内已没有请求的客户端
func (rl *MemoryLimiter) sweep(now, cutoff time.Time) {
	if now.Sub(rl.swept) < rl.window {
		return
	}
	rl.swept = now
	for key, times := range rl.requests {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// RedisLimiter 多实例共享的固定窗口计数
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window, prefix: "valsia:ratelimit:"}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(rl.window)
	redisKey := fmt.Sprintf("%s%s:%d", rl.prefix, key, bucket)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= int64(rl.limit), nil
}

// RateLimit 按客户端 IP 限流；限流器出错时放行
func RateLimit(limiter Limiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), clientIP)
		if err != nil {
			log.Errorf("rate limiter unavailable: %v", err)
			c.Next()
			return
		}
		if !allowed {
			log.Warnf("Rate limit exceeded for IP: %s", clientIP)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		c.Next()
	}
}
