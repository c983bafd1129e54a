package syncer

import (
	"context"
	"time"

	"mentor_sync/internal/dao/local"
	"mentor_sync/internal/dao/remote"
)

// Repo 某一领域实体的双写双读仓库
// 每次调用按 remote.Configured() 选择策略；不做跨调用加锁，同一集合上需要严格串行的调用方自行串行
type Repo[T any] struct {
	schema Schema[T]
	coll   *local.Collection[T]
	client remote.Client
	opts   options

	localPath  *localStrategy[T]
	remotePath *remoteStrategy[T]
}

// NewRepo 创建仓库；client 为 nil 等同于未配置远端
func NewRepo[T any](schema Schema[T], store local.Store, client remote.Client, opts ...Option) *Repo[T] {
	if client == nil {
		client = remote.Disabled{}
	}
	coll := local.NewCollection[T](store, schema.Collection)
	lp := &localStrategy[T]{schema: schema, coll: coll}
	return &Repo[T]{
		schema:     schema,
		coll:       coll,
		client:     client,
		opts:       buildOptions(opts),
		localPath:  lp,
		remotePath: &remoteStrategy[T]{local: lp, client: client},
	}
}

func (r *Repo[T]) strategy() strategy[T] {
	if r.client.Configured() {
		return r.remotePath
	}
	return r.localPath
}

// CreateOrGet 按标识获取实体，不存在则用 seed 创建
// 只要本地可写就不会失败
func (r *Repo[T]) CreateOrGet(ctx context.Context, key string, seed T) (T, error) {
	return r.strategy().createOrGet(ctx, key, seed)
}

// Write 先写本地再尽力镜像，返回调用方应使用的标识（远端分配的优先）
// 实体没有标识时生成本地标识
func (r *Repo[T]) Write(ctx context.Context, entity T) (string, error) {
	if r.schema.ID(entity) == "" {
		r.schema.SetID(&entity, r.opts.newID())
	}
	return r.strategy().write(ctx, entity)
}

// Read 返回 ReadKey 等于 key 的全部实体，已排序
func (r *Repo[T]) Read(ctx context.Context, key string) ([]T, error) {
	return r.strategy().read(ctx, key)
}

// ListFor 返回归属键包含 owner 的全部实体，已排序
func (r *Repo[T]) ListFor(ctx context.Context, owner string) ([]T, error) {
	return r.strategy().listFor(ctx, owner)
}

// Get 按标识读取
func (r *Repo[T]) Get(ctx context.Context, id string) (T, bool, error) {
	return r.strategy().get(ctx, id)
}

// LoadLocal 读取整个本地集合，供读-改-写调用方使用
func (r *Repo[T]) LoadLocal() (map[string]T, error) {
	return r.coll.Load()
}

// SaveLocal 整体写回本地集合
func (r *Repo[T]) SaveLocal(items map[string]T) error {
	return r.coll.Save(items)
}

// Mirror 把已落本地的实体尽力写到远端，返回调用方应使用的标识
// 未配置远端时直接返回本地标识
func (r *Repo[T]) Mirror(ctx context.Context, entity T) string {
	if !r.client.Configured() {
		return r.schema.ID(entity)
	}
	return r.remotePath.mirror(ctx, "mirror", entity)
}

// Collection 底层本地集合
func (r *Repo[T]) Collection() *local.Collection[T] {
	return r.coll
}

// NewID 生成本地标识
func (r *Repo[T]) NewID() string {
	return r.opts.newID()
}

// Now 当前时间（可注入）
func (r *Repo[T]) Now() time.Time {
	return r.opts.now()
}
