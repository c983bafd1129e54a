// Package mirror 是镜像服务的文档业务层
// 客户端同步引擎通过 HTTP 访问这里，单文档读走 Redis 缓存，写入后同步失效缓存并发布变更事件
package mirror

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"mentor_sync/internal/dao/mysql"
	myredis "mentor_sync/internal/dao/redis"
	"mentor_sync/internal/dao/remote"
	"mentor_sync/internal/infrastructure/mq"
	"mentor_sync/internal/model"
	"mentor_sync/pkg/constants"
	"mentor_sync/pkg/errorx"
	"mentor_sync/pkg/util/snowflake"
)

// Store 文档持久化
// Transaction 内的读写在同一事务中完成
type Store interface {
	Document() mysql.DocumentRepository
	Transaction(fn func(tx Store) error) error
}

// repoStore 把 mysql.Repositories 适配为 Store
type repoStore struct {
	repos *mysql.Repositories
}

// NewStore 包装 Repository 聚合
func NewStore(repos *mysql.Repositories) Store {
	return repoStore{repos: repos}
}

func (s repoStore) Document() mysql.DocumentRepository {
	return s.repos.Document
}

func (s repoStore) Transaction(fn func(tx Store) error) error {
	return s.repos.Transaction(func(txRepos *mysql.Repositories) error {
		return fn(repoStore{repos: txRepos})
	})
}

const cacheTTL = time.Minute * constants.REDIS_TIMEOUT

// Service 文档服务
type Service struct {
	store     Store
	cache     myredis.AsyncCacheService
	publisher mq.ChangePublisher
	guard     *refillGuard
	newID     func() string
}

// NewService 创建文档服务
func NewService(store Store, cache myredis.AsyncCacheService, publisher mq.ChangePublisher) *Service {
	return &Service{
		store:     store,
		cache:     cache,
		publisher: publisher,
		guard:     newRefillGuard(cacheTTL),
		newID:     snowflake.GenerateIDString,
	}
}

func cacheKey(collection, id string) string {
	return "doc:" + collection + ":" + id
}

// Get 读取单个文档，先查缓存
func (s *Service) Get(ctx context.Context, collection, id string) (*remote.Document, error) {
	key := cacheKey(collection, id)

	// 1. 尝试从 Redis 缓存获取
	cached, err := s.cache.Get(ctx, key)
	if err == nil && cached != "" {
		var doc remote.Document
		if err := json.Unmarshal([]byte(cached), &doc); err == nil {
			return &doc, nil
		}
		zap.L().Error("document cache unmarshal failed", zap.String("key", key), zap.Error(err))
	} else if err != nil {
		zap.L().Warn("document cache get failed", zap.String("key", key), zap.Error(err))
	}

	// 2. 缓存未命中，查询数据库；先记下写入序号
	seen := s.guard.snapshot(key)
	row, err := s.store.Document().FindByID(collection, id)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeNotFound, "文档 %s/%s 不存在", collection, id)
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	doc := toDocument(row)

	// 3. 异步回写缓存，期间有新的写入则放弃
	s.cache.SubmitTask(func() {
		data, err := json.Marshal(doc)
		if err != nil {
			zap.L().Error("document marshal failed", zap.Error(err))
			return
		}
		filled := s.guard.refill(key, seen, func() {
			if err := s.cache.Set(context.Background(), key, string(data), cacheTTL); err != nil {
				zap.L().Error("document cache set failed", zap.String("key", key), zap.Error(err))
			}
		})
		if !filled {
			zap.L().Debug("document cache refill skipped", zap.String("key", key))
		}
	})
	return &doc, nil
}

// Put 创建或覆盖指定标识的文档
func (s *Service) Put(ctx context.Context, collection, id string, keys []string, data json.RawMessage) error {
	if err := checkKeys(keys); err != nil {
		return err
	}
	op := "put"
	err := s.store.Transaction(func(tx Store) error {
		if _, err := tx.Document().FindByID(collection, id); err != nil {
			if !errorx.IsNotFound(err) {
				return err
			}
			op = "create"
		}
		return tx.Document().Upsert(&model.Document{
			Collection: collection,
			DocID:      id,
			Keys:       model.JoinKeys(keys),
			Data:       string(data),
		})
	})
	if err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	s.afterWrite(ctx, op, collection, id, keys)
	return nil
}

// Create 创建文档，使用雪花 ID 作为服务端标识并写回 data.id
func (s *Service) Create(ctx context.Context, collection string, keys []string, data json.RawMessage) (string, error) {
	if err := checkKeys(keys); err != nil {
		return "", err
	}
	id := s.newID()
	withID, err := remote.InjectID(data, id)
	if err != nil {
		return "", err
	}
	if err := s.store.Document().Upsert(&model.Document{
		Collection: collection,
		DocID:      id,
		Keys:       model.JoinKeys(keys),
		Data:       string(withID),
	}); err != nil {
		zap.L().Error(err.Error())
		return "", errorx.ErrServerBusy
	}
	s.afterWrite(ctx, "create", collection, id, keys)
	return id, nil
}

// Query 返回查询键包含 key 的全部文档
func (s *Service) Query(_ context.Context, collection, key string) ([]remote.Document, error) {
	if !model.ValidKey(key) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "非法的查询键: %q", key)
	}
	rows, err := s.store.Document().FindByKey(collection, key)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	docs := make([]remote.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, toDocument(&rows[i]))
	}
	return docs, nil
}

// afterWrite 同步失效缓存并发布变更事件，失败只记日志
func (s *Service) afterWrite(ctx context.Context, op, collection, id string, keys []string) {
	key := cacheKey(collection, id)
	s.guard.written(key, func() {
		if err := s.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
			zap.L().Error("document cache invalidate failed", zap.String("key", key), zap.Error(err))
		}
	})
	event := mq.ChangeEvent{
		Collection: collection,
		DocID:      id,
		Keys:       keys,
		Op:         op,
		At:         time.Now(),
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		zap.L().Warn("publish change event failed",
			zap.String("collection", collection),
			zap.String("doc", id),
			zap.Error(err),
		)
	}
}

func checkKeys(keys []string) error {
	for _, k := range keys {
		if !model.ValidKey(k) {
			return errorx.Newf(errorx.CodeInvalidParam, "非法的查询键: %q", k)
		}
	}
	return nil
}

func toDocument(row *model.Document) remote.Document {
	data := json.RawMessage(row.Data)
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return remote.Document{
		ID:        row.DocID,
		Keys:      model.SplitKeys(row.Keys),
		Data:      data,
		UpdatedAt: row.UpdatedAt,
	}
}
