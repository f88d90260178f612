package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"valsia/pkg/config"
)

// OpenRedis 连接 redis，限流与生成锁共用
func OpenRedis(ctx context.Context, conf config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", conf.Addr, err)
	}
	log.Infof("redis connection success: %s", conf.Addr)
	return client, nil
}
