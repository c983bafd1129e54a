package syncer

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"mentor_sync/internal/dao/local"
	"mentor_sync/internal/dao/remote"
	"mentor_sync/pkg/errorx"
)

// strategy 读写路径：本地单路径，或远端优先、失败回退本地
type strategy[T any] interface {
	createOrGet(ctx context.Context, key string, seed T) (T, error)
	write(ctx context.Context, entity T) (string, error)
	read(ctx context.Context, key string) ([]T, error)
	listFor(ctx context.Context, owner string) ([]T, error)
	get(ctx context.Context, id string) (T, bool, error)
}

// localStrategy 只读写本地集合，所有错误都是本地存储故障
type localStrategy[T any] struct {
	schema Schema[T]
	coll   *local.Collection[T]
}

func (s *localStrategy[T]) createOrGet(_ context.Context, key string, seed T) (T, error) {
	var zero T
	items, err := s.coll.Load()
	if err != nil {
		return zero, err
	}
	if existing, ok := items[key]; ok {
		return existing, nil
	}
	s.schema.SetID(&seed, key)
	items[key] = seed
	if err := s.coll.Save(items); err != nil {
		return zero, err
	}
	return seed, nil
}

func (s *localStrategy[T]) write(_ context.Context, entity T) (string, error) {
	id := s.schema.ID(entity)
	items, err := s.coll.Load()
	if err != nil {
		return "", err
	}
	items[id] = entity
	if err := s.coll.Save(items); err != nil {
		return "", err
	}
	return id, nil
}

func (s *localStrategy[T]) read(_ context.Context, key string) ([]T, error) {
	items, err := s.coll.Load()
	if err != nil {
		return nil, err
	}
	return s.schema.collect(items, s.schema.readMatch(key)), nil
}

func (s *localStrategy[T]) listFor(_ context.Context, owner string) ([]T, error) {
	items, err := s.coll.Load()
	if err != nil {
		return nil, err
	}
	return s.schema.collect(items, s.schema.ownerMatch(owner)), nil
}

func (s *localStrategy[T]) get(_ context.Context, id string) (T, bool, error) {
	var zero T
	items, err := s.coll.Load()
	if err != nil {
		return zero, false, err
	}
	e, ok := items[id]
	return e, ok, nil
}

// replace 删除本地所有匹配项并写入远端结果，返回刷新后的匹配视图
func (s *localStrategy[T]) replace(match func(T) bool, fresh []T) ([]T, error) {
	items, err := s.coll.Load()
	if err != nil {
		return nil, err
	}
	for id, e := range items {
		if match(e) {
			delete(items, id)
		}
	}
	for _, e := range fresh {
		if match(e) {
			items[s.schema.ID(e)] = e
		}
	}
	if err := s.coll.Save(items); err != nil {
		return nil, err
	}
	return s.schema.collect(items, match), nil
}

// remoteStrategy 远端优先
// 远端的任何失败都只记 Warn 并走本地路径；远端成功后的本地写入失败照常返回
type remoteStrategy[T any] struct {
	local  *localStrategy[T]
	client remote.Client
}

func (s *remoteStrategy[T]) createOrGet(ctx context.Context, key string, seed T) (T, error) {
	doc, err := s.client.Get(ctx, s.local.schema.Collection, key)
	switch {
	case err == nil:
		entity, decErr := s.decode(doc)
		if decErr != nil {
			s.warn("createOrGet", key, decErr)
			return s.local.createOrGet(ctx, key, seed)
		}
		if _, err := s.local.write(ctx, entity); err != nil {
			var zero T
			return zero, err
		}
		return entity, nil
	case errorx.IsNotFound(err):
		// 远端没有：以本地（已有或新建）为准补写远端
		entity, err := s.local.createOrGet(ctx, key, seed)
		if err != nil {
			return entity, err
		}
		s.mirror(ctx, "createOrGet", entity)
		return entity, nil
	default:
		s.warn("createOrGet", key, err)
		return s.local.createOrGet(ctx, key, seed)
	}
}

func (s *remoteStrategy[T]) write(ctx context.Context, entity T) (string, error) {
	if _, err := s.local.write(ctx, entity); err != nil {
		return "", err
	}
	return s.mirror(ctx, "write", entity), nil
}

func (s *remoteStrategy[T]) read(ctx context.Context, key string) ([]T, error) {
	return s.query(ctx, "read", key, s.local.schema.readMatch(key), s.local.read)
}

func (s *remoteStrategy[T]) listFor(ctx context.Context, owner string) ([]T, error) {
	return s.query(ctx, "listFor", owner, s.local.schema.ownerMatch(owner), s.local.listFor)
}

func (s *remoteStrategy[T]) query(
	ctx context.Context,
	op, key string,
	match func(T) bool,
	fallback func(context.Context, string) ([]T, error),
) ([]T, error) {
	docs, err := s.client.Query(ctx, s.local.schema.Collection, key)
	if err != nil {
		s.warn(op, key, err)
		return fallback(ctx, key)
	}
	fresh := make([]T, 0, len(docs))
	for _, doc := range docs {
		entity, err := s.decode(doc)
		if err != nil {
			s.warn(op, key, err)
			return fallback(ctx, key)
		}
		fresh = append(fresh, entity)
	}
	return s.local.replace(match, fresh)
}

func (s *remoteStrategy[T]) get(ctx context.Context, id string) (T, bool, error) {
	doc, err := s.client.Get(ctx, s.local.schema.Collection, id)
	if err != nil {
		if !errorx.IsNotFound(err) {
			s.warn("get", id, err)
		}
		return s.local.get(ctx, id)
	}
	entity, err := s.decode(doc)
	if err != nil {
		s.warn("get", id, err)
		return s.local.get(ctx, id)
	}
	if _, err := s.local.write(ctx, entity); err != nil {
		var zero T
		return zero, false, err
	}
	return entity, true, nil
}

// mirror 把已落本地的实体写到远端，返回调用方应使用的标识
func (s *remoteStrategy[T]) mirror(ctx context.Context, op string, entity T) string {
	schema := s.local.schema
	id := schema.ID(entity)
	data, err := json.Marshal(entity)
	if err != nil {
		s.warn(op, id, err)
		return id
	}
	if schema.ServerAssignedID {
		serverID, err := s.client.Create(ctx, schema.Collection, schema.keys(entity), data)
		if err != nil {
			s.warn(op, id, err)
			return id
		}
		return serverID
	}
	if err := s.client.Put(ctx, schema.Collection, id, schema.keys(entity), data); err != nil {
		s.warn(op, id, err)
	}
	return id
}

func (s *remoteStrategy[T]) decode(doc remote.Document) (T, error) {
	var entity T
	if err := json.Unmarshal(doc.Data, &entity); err != nil {
		return entity, errorx.Wrapf(err, errorx.CodeRemoteUnavailable, "解析远端文档 %s 失败", doc.ID)
	}
	if s.local.schema.ID(entity) == "" {
		s.local.schema.SetID(&entity, doc.ID)
	}
	return entity, nil
}

func (s *remoteStrategy[T]) warn(op, key string, err error) {
	zap.L().Warn("remote mirror failed, using local store",
		zap.String("op", op),
		zap.String("collection", s.local.schema.Collection),
		zap.String("key", key),
		zap.Error(err),
	)
}
