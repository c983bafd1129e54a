// Package local 是设备本地键值存储的适配层
// 同步引擎、限流器、会话时钟都只通过 Store 读写设备存储，各自占用互不重叠的键空间
package local

import (
	"gitlab.com/elixxir/ekv"

	"mentor_sync/pkg/errorx"
)

// Store 本地持久化键值存储
// 值是本层自己序列化好的字符串
type Store interface {
	// Get 获取键对应的值（键不存在返回空字符串和 nil）
	Get(key string) (string, error)
	// Set 写入键值，返回即代表已落盘
	Set(key string, value string) error
	// Remove 删除键（不存在不报错）
	Remove(key string) error
}

// EKVStore 基于 ekv 的本地存储实现
type EKVStore struct {
	kv ekv.KeyValue
}

// NewFileStore 创建加密文件存储，dir 为存储目录
func NewFileStore(dir, password string) (*EKVStore, error) {
	fs, err := ekv.NewFilestore(dir, password)
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeLocalStorage, "打开本地存储 %s 失败", dir)
	}
	return &EKVStore{kv: fs}, nil
}

// NewMemoryStore 创建内存存储（测试、离线演示）
func NewMemoryStore() *EKVStore {
	return &EKVStore{kv: ekv.MakeMemstore()}
}

// NewStore 包装任意 ekv.KeyValue
func NewStore(kv ekv.KeyValue) *EKVStore {
	return &EKVStore{kv: kv}
}

func (s *EKVStore) Get(key string) (string, error) {
	data, err := s.kv.GetBytes(key)
	if err != nil {
		if !ekv.Exists(err) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeLocalStorage, "读取本地键 %s 失败", key)
	}
	return string(data), nil
}

func (s *EKVStore) Set(key string, value string) error {
	if err := s.kv.SetBytes(key, []byte(value)); err != nil {
		return errorx.Wrapf(err, errorx.CodeLocalStorage, "写入本地键 %s 失败", key)
	}
	return nil
}

func (s *EKVStore) Remove(key string) error {
	if err := s.kv.Delete(key); err != nil && ekv.Exists(err) {
		return errorx.Wrapf(err, errorx.CodeLocalStorage, "删除本地键 %s 失败", key)
	}
	return nil
}

var _ Store = (*EKVStore)(nil)
