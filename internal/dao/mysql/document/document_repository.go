// Package document 提供镜像文档数据访问层的具体实现
package document

import (
	"mentor_sync/internal/dao/mysql/internal"
	"mentor_sync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRepository DocumentRepository 接口的实现
type documentRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewDocumentRepository 创建 DocumentRepository 实例
func NewDocumentRepository(db *gorm.DB) *documentRepository {
	return &documentRepository{db: db}
}

// FindByID 按集合与文档标识查找
func (r *documentRepository) FindByID(collection, docID string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("collection = ? AND doc_id = ?", collection, docID).First(&doc).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询文档 %s/%s", collection, docID)
	}
	return &doc, nil
}

// FindByKey 查找查询键包含 key 的文档，按文档标识排序
func (r *documentRepository) FindByKey(collection, key string) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("collection = ? AND lookup_keys LIKE ? ESCAPE '"+model.LikeEscape+"'", collection, model.KeyPattern(key)).
		Order("doc_id ASC").Find(&docs).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "按键查询文档 %s key=%s", collection, key)
	}
	return docs, nil
}

// Upsert 按 (collection, doc_id) 创建或覆盖，最后写入者胜
func (r *documentRepository) Upsert(doc *model.Document) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"lookup_keys", "data", "updated_at", "deleted_at"}),
	}).Create(doc).Error
	if err != nil {
		return internal.WrapDBErrorf(err, "写入文档 %s/%s", doc.Collection, doc.DocID)
	}
	return nil
}
