// Package service 定义镜像服务业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"context"
	"encoding/json"

	"mentor_sync/internal/dao/remote"
	"mentor_sync/internal/dto/respond"
)

// DocumentService 文档业务接口
// 客户端同步引擎的远端镜像
type DocumentService interface {
	// Get 按标识读取文档
	Get(ctx context.Context, collection, id string) (*remote.Document, error)
	// Put 创建或覆盖文档
	Put(ctx context.Context, collection, id string, keys []string, data json.RawMessage) error
	// Create 创建文档并返回服务端标识
	Create(ctx context.Context, collection string, keys []string, data json.RawMessage) (string, error)
	// Query 按查询键列出文档
	Query(ctx context.Context, collection, key string) ([]remote.Document, error)
}

// AuthService 设备认证业务接口
type AuthService interface {
	// IssueToken 校验 API Key 并签发设备令牌
	IssueToken(ctx context.Context, deviceID, apiKey string) (*respond.DeviceTokenRespond, error)
	// ValidateTokenID 校验令牌是否为设备最新签发的
	ValidateTokenID(ctx context.Context, deviceID, tokenID string) (bool, error)
}
