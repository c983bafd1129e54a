package local

import (
	"encoding/json"

	"mentor_sync/pkg/errorx"
)

// Collection 以整体文档方式保存的逻辑集合
// 内存中是按实体标识索引的 map，写回时整体序列化为一次 Set
type Collection[T any] struct {
	store Store
	name  string
}

// NewCollection 创建集合视图，name 即存储键
func NewCollection[T any](store Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

// Name 集合名称
func (c *Collection[T]) Name() string {
	return c.name
}

// Load 读取整个集合；集合不存在时返回空 map
func (c *Collection[T]) Load() (map[string]T, error) {
	raw, err := c.store.Get(c.name)
	if err != nil {
		return nil, err
	}
	items := make(map[string]T)
	if raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeLocalStorage, "解析本地集合 %s 失败", c.name)
	}
	return items, nil
}

// Save 整体写回集合
func (c *Collection[T]) Save(items map[string]T) error {
	if items == nil {
		items = make(map[string]T)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeLocalStorage, "序列化本地集合 %s 失败", c.name)
	}
	return c.store.Set(c.name, string(data))
}

// Raw 读取集合原始载荷，用于失败时回滚
func (c *Collection[T]) Raw() (string, error) {
	return c.store.Get(c.name)
}

// Restore 用原始载荷覆盖集合；载荷为空时删除集合
func (c *Collection[T]) Restore(raw string) error {
	if raw == "" {
		return c.store.Remove(c.name)
	}
	return c.store.Set(c.name, raw)
}
