package mq

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ChannelPublisher 进程内发布者
// 事件写入有界通道，通道满时丢弃并告警，不阻塞写请求
type ChannelPublisher struct {
	events    chan ChangeEvent
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewChannelPublisher 创建进程内发布者
func NewChannelPublisher(size int) *ChannelPublisher {
	return &ChannelPublisher{events: make(chan ChangeEvent, size)}
}

// Events 事件通道，Close 后关闭
func (c *ChannelPublisher) Events() <-chan ChangeEvent {
	return c.events
}

func (c *ChannelPublisher) Publish(_ context.Context, event ChangeEvent) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	zap.L().Debug("document changed",
		zap.String("collection", event.Collection),
		zap.String("doc", event.DocID),
		zap.String("op", event.Op),
	)
	select {
	case c.events <- event:
	default:
		zap.L().Warn("change event channel full, dropping event",
			zap.String("collection", event.Collection),
			zap.String("doc", event.DocID),
		)
	}
	return nil
}

func (c *ChannelPublisher) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.events)
		c.mu.Unlock()
	})
	return nil
}

var _ ChangePublisher = (*ChannelPublisher)(nil)
