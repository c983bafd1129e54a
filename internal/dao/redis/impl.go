// Package redis 提供 CacheService 接口的 Redis 实现
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"mentor_sync/internal/infrastructure/worker"
	"mentor_sync/pkg/errorx"
)

// RedisCache Redis 缓存实现
// 同时实现 CacheService 与 AsyncCacheService，调用方按需声明最小接口
type RedisCache struct {
	client *redis.Client
	pool   *worker.Pool
}

// NewRedisCache 创建 Redis 缓存实例，异步任务交给 pool 执行
func NewRedisCache(client *redis.Client, pool *worker.Pool) *RedisCache {
	return &RedisCache{client: client, pool: pool}
}

// Set 设置键值对并指定过期时间
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// Get 获取键对应的值（键不存在返回空字符串和 nil）
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// Delete 删除键（如果存在）
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Unlink(ctx, key).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink key %s", key)
	}
	return nil
}

// SubmitTask 提交异步缓存任务，通道满时同步执行
func (r *RedisCache) SubmitTask(action func()) {
	r.pool.Submit(action)
}

// 确保 RedisCache 实现了 AsyncCacheService 接口
var _ AsyncCacheService = (*RedisCache)(nil)
