package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"mentor_sync/pkg/errorx"
)

// MemoryClient 进程内的远端实现
// 用于测试以及不部署镜像服务的演示环境；Fail 置位时所有调用返回远端不可用
type MemoryClient struct {
	mu    sync.Mutex
	docs  map[string]map[string]Document
	seq   int
	fail  bool
	calls int
	now   func() time.Time
}

// NewMemoryClient 创建进程内远端
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		docs: make(map[string]map[string]Document),
		now:  time.Now,
	}
}

// SetFail 切换故障注入
func (m *MemoryClient) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// Calls 已收到的调用次数（不含 Configured）
func (m *MemoryClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MemoryClient) Configured() bool { return true }

func (m *MemoryClient) enter() error {
	m.calls++
	if m.fail {
		return errorx.ErrRemoteUnavailable
	}
	return nil
}

func (m *MemoryClient) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return Document{}, err
	}
	doc, ok := m.docs[collection][id]
	if !ok {
		return Document{}, errorx.Newf(errorx.CodeNotFound, "%s/%s 不存在", collection, id)
	}
	return doc, nil
}

func (m *MemoryClient) Put(_ context.Context, collection, id string, keys []string, data json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	m.store(collection, Document{ID: id, Keys: keys, Data: data})
	return nil
}

// Create 分配 srv-<n> 形式的标识，并写回文档的 id 字段
func (m *MemoryClient) Create(_ context.Context, collection string, keys []string, data json.RawMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return "", err
	}
	m.seq++
	id := fmt.Sprintf("srv-%d", m.seq)
	data, err := InjectID(data, id)
	if err != nil {
		return "", err
	}
	m.store(collection, Document{ID: id, Keys: keys, Data: data})
	return id, nil
}

func (m *MemoryClient) Query(_ context.Context, collection, key string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	var out []Document
	for _, doc := range m.docs[collection] {
		for _, k := range doc.Keys {
			if k == key {
				out = append(out, doc)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryClient) store(collection string, doc Document) {
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]Document)
	}
	doc.UpdatedAt = m.now()
	m.docs[collection][doc.ID] = doc
}

// InjectID 把服务端分配的标识写入 JSON 文档的 id 字段
func InjectID(data json.RawMessage, id string) (json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "文档不是 JSON 对象")
		}
	}
	encoded, _ := json.Marshal(id)
	fields["id"] = encoded
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "序列化文档失败")
	}
	return out, nil
}

var _ Client = (*MemoryClient)(nil)
