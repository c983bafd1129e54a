// Package mysql 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
package mysql

import (
	"mentor_sync/internal/model"
)

// DocumentRepository 镜像文档数据访问接口
type DocumentRepository interface {
	// FindByID 按集合与文档标识查找，不存在返回 CodeNotFound
	FindByID(collection, docID string) (*model.Document, error)
	// FindByKey 查找查询键包含 key 的全部文档
	FindByKey(collection, key string) ([]model.Document, error)
	// Upsert 创建或覆盖文档
	Upsert(doc *model.Document) error
}
