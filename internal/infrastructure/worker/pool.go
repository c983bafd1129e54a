// Package worker 提供后台任务协程池
// 用于执行不阻塞主流程的尽力而为任务（邀请下发、缓存失效、远端镜像等）
package worker

import (
	"sync"

	"go.uber.org/zap"
)

// Pool 固定数量的协程消费一个有界任务通道
// 通道满或已关闭时降级为同步执行，保证任务不丢失
type Pool struct {
	tasks     chan func()
	workerNum int

	mu     sync.RWMutex
	closed bool
}

// NewPool 创建并启动协程池
// workerNum: 后台协程数量
// bufferSize: 任务通道缓冲区大小
func NewPool(workerNum, bufferSize int) *Pool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	p := &Pool{
		tasks:     make(chan func(), bufferSize),
		workerNum: workerNum,
	}
	for i := 0; i < workerNum; i++ {
		go p.startWorker()
	}
	zap.L().Info("worker pool started", zap.Int("workers", workerNum), zap.Int("buffer", bufferSize))
	return p
}

// startWorker 单个 Worker 消费循环，panic 后自动重启
func (p *Pool) startWorker() {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("worker panic", zap.Any("recover", rec))
			go p.startWorker()
		}
	}()

	for task := range p.tasks {
		if task != nil {
			task()
		}
	}
}

// Submit 提交任务
func (p *Pool) Submit(action func()) {
	if !p.enqueue(action) {
		action()
	}
}

// enqueue 投递到任务通道；池已关闭或通道已满时返回 false
func (p *Pool) enqueue(action func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		zap.L().Warn("worker pool closed, executing synchronously")
		return false
	}
	select {
	case p.tasks <- action:
		return true
	default:
		zap.L().Warn("worker task channel full, executing synchronously")
		return false
	}
}

// Go 提交一个可能失败的任务，返回其独立的错误通道
// 通道只会收到一个值（成功时为 nil）随后关闭；任务 panic 时收到 *PanicError
func (p *Pool) Go(action func() error) <-chan error {
	done := make(chan error, 1)
	p.Submit(func() {
		defer close(done)
		defer func() {
			if rec := recover(); rec != nil {
				done <- &PanicError{Value: rec}
			}
		}()
		done <- action()
	})
	return done
}

// Close 停止接收新任务，已入队的任务会被执行完
// 之后提交的任务在调用方协程中同步执行；重复调用无副作用
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.tasks)
}

// PanicError 任务 panic 时通过错误通道返回
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "worker task panicked"
}
