// Package redis 提供 Redis 缓存操作的封装
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"context"
	"strconv"

	"mentor_sync/internal/config"
	"mentor_sync/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
)

// Init 按配置创建客户端并检查连通性
func Init(ctx context.Context, cfg config.RedisConfig, pool *worker.Pool) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Password: cfg.Password, // 无密码留空
		DB:       cfg.Db,
		// 连接池配置
		PoolSize:     50,
		MinIdleConns: 4,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisCache(client, pool), nil
}
