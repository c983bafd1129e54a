// Package remote 是可选的远端文档镜像客户端
// 远端可能未配置，也可能随时不可达，所有调用都必须当作可失败的尽力而为操作
package remote

import (
	"context"
	"encoding/json"
	"time"

	"mentor_sync/internal/config"
	"mentor_sync/pkg/errorx"
)

// Document 远端文档
// Keys 是文档的查询键（如参与者 ID），Query 按其中任意一个键匹配
type Document struct {
	ID        string          `json:"id"`
	Keys      []string        `json:"keys"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Client 远端镜像客户端
// 除 Configured 外，任何失败都返回 CodeRemoteUnavailable（找不到返回 CodeNotFound）
type Client interface {
	// Configured 是否配置了远端，每次远端尝试前检查
	Configured() bool
	// Get 按标识读取文档
	Get(ctx context.Context, collection, id string) (Document, error)
	// Put 创建或覆盖指定标识的文档
	Put(ctx context.Context, collection, id string, keys []string, data json.RawMessage) error
	// Create 创建文档并返回服务端分配的标识
	Create(ctx context.Context, collection string, keys []string, data json.RawMessage) (string, error)
	// Query 返回查询键包含 key 的全部文档
	Query(ctx context.Context, collection, key string) ([]Document, error)
}

// New 根据配置创建客户端，BaseURL 为空时返回 Disabled
func New(cfg config.RemoteConfig) Client {
	if cfg.BaseURL == "" {
		return Disabled{}
	}
	return NewHTTPClient(cfg)
}

// Disabled 离线部署使用的空客户端
type Disabled struct{}

func (Disabled) Configured() bool { return false }

func (Disabled) Get(context.Context, string, string) (Document, error) {
	return Document{}, errorx.ErrRemoteUnavailable
}

func (Disabled) Put(context.Context, string, string, []string, json.RawMessage) error {
	return errorx.ErrRemoteUnavailable
}

func (Disabled) Create(context.Context, string, []string, json.RawMessage) (string, error) {
	return "", errorx.ErrRemoteUnavailable
}

func (Disabled) Query(context.Context, string, string) ([]Document, error) {
	return nil, errorx.ErrRemoteUnavailable
}

var _ Client = Disabled{}
