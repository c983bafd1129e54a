// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"mentor_sync/internal/dao/mysql"
	myredis "mentor_sync/internal/dao/redis"
	"mentor_sync/internal/infrastructure/mq"
	"mentor_sync/internal/service/auth"
	"mentor_sync/internal/service/mirror"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问各个 Service
type Services struct {
	Document DocumentService // 文档 Service
	Auth     AuthService     // 认证 Service
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 接收 Repository 聚合、缓存与事件发布者
//  2. 创建各个 Service 实例
//  3. 返回 Services 聚合
func NewServices(repos *mysql.Repositories, cache myredis.AsyncCacheService, publisher mq.ChangePublisher, apiKeyHash string) *Services {
	return &Services{
		Document: mirror.NewService(mirror.NewStore(repos), cache, publisher),
		Auth:     auth.NewAuthService(cache, apiKeyHash),
	}
}
