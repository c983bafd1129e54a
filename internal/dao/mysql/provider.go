// Package mysql 提供 Repository 层聚合与构造
package mysql

import (
	"gorm.io/gorm"

	"mentor_sync/internal/dao/mysql/document"
)

// Repositories 镜像服务的数据层入口
type Repositories struct {
	db       *gorm.DB           // GORM 数据库实例
	Document DocumentRepository // 镜像文档 Repository
}

// NewRepositories 基于 db（或事务句柄）构造
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:       db,
		Document: document.NewDocumentRepository(db),
	}
}

// Transaction 以同一事务构造一组 Repository 传给 fn
// fn 返回错误时整体回滚，镜像写入据此保证"查存在 + 写入"的原子性
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
