package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ErrLocked 同一客户端已有生成在进行
var ErrLocked = errors.New("generation already in progress")

// Locker 每个客户端同时只允许一个生成请求
type Locker interface {
	// Acquire 成功时返回释放函数，已被占用时返回 ErrLocked
	Acquire(ctx context.Context, key string) (func(), error)
}

// MemoryLocker 进程内实现
type MemoryLocker struct {
	mutex sync.Mutex
	held  map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mutex.Lock()
			delete(l.held, key)
			l.mutex.Unlock()
		})
	}, nil
}

// RedsyncLocker 多实例共享，锁在 ttl 后自动过期
type RedsyncLocker struct {
	rs  *redsync.Redsync
	ttl time.Duration
}

func NewRedsyncLocker(client *redis.Client, ttl time.Duration) *RedsyncLocker {
	return &RedsyncLocker{rs: redsync.New(goredis.NewPool(client)), ttl: ttl}
}

func (l *RedsyncLocker) Acquire(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex("valsia:inflight:"+key, redsync.WithExpiry(l.ttl), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	return func() {
		// 请求已结束，用独立的 context 释放
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if _, err := mutex.UnlockContext(ctx); err != nil {
			log.Warnf("release inflight lock %s: %v", key, err)
		}
	}, nil
}

// Inflight 同一客户端并发生成时返回 409；锁服务出错时放行
func Inflight(locker Locker) gin.HandlerFunc {
	return func(c *gin.Context) {
		release, err := locker.Acquire(c.Request.Context(), c.ClientIP())
		if errors.Is(err, ErrLocked) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "A generation is already in progress"})
			return
		}
		if err != nil {
			log.Errorf("inflight lock unavailable: %v", err)
			c.Next()
			return
		}
		defer release()
		c.Next()
	}
}
