// Package mq 发布镜像文档的变更事件
// kafka 模式写入 Kafka 主题；channel 模式只在进程内通道与日志中可见
package mq

import (
	"context"
	"time"

	"mentor_sync/internal/config"
	"mentor_sync/pkg/constants"
)

// ChangeEvent 一次文档写入
type ChangeEvent struct {
	Collection string    `json:"collection"`
	DocID      string    `json:"docId"`
	Keys       []string  `json:"keys"`
	Op         string    `json:"op"` // create / put
	At         time.Time `json:"at"`
}

// ChangePublisher 变更事件发布接口
type ChangePublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Close() error
}

// New 按 messageMode 创建发布者
func New(cfg config.KafkaConfig) ChangePublisher {
	if cfg.MessageMode == "kafka" {
		return NewKafkaPublisher(cfg)
	}
	return NewChannelPublisher(constants.CHANNEL_SIZE)
}
