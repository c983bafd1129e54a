package local

import (
	"errors"
	"sync"

	"mentor_sync/pkg/errorx"
)

// ErrInjectedFault FaultyStore 注入的底层错误
var ErrInjectedFault = errors.New("injected storage fault")

// FaultyStore 可按操作注入故障的 Store 包装，用于验证本地故障的传播与回滚
type FaultyStore struct {
	Store

	mu         sync.Mutex
	FailGet    bool
	FailSet    bool
	FailRemove bool
	// FailSetKeys 只对指定键的 Set 注入故障
	FailSetKeys map[string]bool
}

// SetFailure 并发安全地切换整体 Set 故障
func (f *FaultyStore) SetFailure(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailSet = fail
}

// FailSetOn 对指定键的 Set 注入故障
func (f *FaultyStore) FailSetOn(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSetKeys == nil {
		f.FailSetKeys = make(map[string]bool)
	}
	f.FailSetKeys[key] = true
}

func (f *FaultyStore) Get(key string) (string, error) {
	f.mu.Lock()
	fail := f.FailGet
	f.mu.Unlock()
	if fail {
		return "", errorx.Wrapf(ErrInjectedFault, errorx.CodeLocalStorage, "读取本地键 %s 失败", key)
	}
	return f.Store.Get(key)
}

func (f *FaultyStore) Set(key string, value string) error {
	f.mu.Lock()
	fail := f.FailSet || f.FailSetKeys[key]
	f.mu.Unlock()
	if fail {
		return errorx.Wrapf(ErrInjectedFault, errorx.CodeLocalStorage, "写入本地键 %s 失败", key)
	}
	return f.Store.Set(key, value)
}

func (f *FaultyStore) Remove(key string) error {
	f.mu.Lock()
	fail := f.FailRemove
	f.mu.Unlock()
	if fail {
		return errorx.Wrapf(ErrInjectedFault, errorx.CodeLocalStorage, "删除本地键 %s 失败", key)
	}
	return f.Store.Remove(key)
}
