// Package redis 定义镜像服务使用的缓存接口
// 文档读穿缓存与设备令牌吊销记录都只依赖这里的最小接口
package redis

import (
	"context"
	"time"
)

// CacheService 字符串键值缓存
// 令牌校验只需要读写，不需要异步任务
type CacheService interface {
	// Set 写入并设置过期时间，ttl 为 0 表示不过期
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get 未命中时返回空字符串和 nil
	Get(ctx context.Context, key string) (string, error)
	// Delete 键不存在不报错
	Delete(ctx context.Context, key string) error
}

// AsyncCacheService 可把回填、失效放到后台执行的缓存
type AsyncCacheService interface {
	CacheService
	// SubmitTask 投递到协程池，池满时同步执行
	SubmitTask(action func())
}
