// Package mysql 提供镜像服务数据访问层的初始化
// 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"

	"mentor_sync/internal/config"
	"mentor_sync/internal/model"

	mysqldriver "gorm.io/driver/mysql" // GORM MySQL 驱动
	"gorm.io/gorm"
)

// DSN 构建 MySQL 连接字符串
// 格式：user:password@tcp(host:port)/database?params
func DSN(cfg config.MysqlConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DatabaseName,
	)
}

// Init 连接数据库、迁移 document 表并返回 Repository 集合
func Init(cfg config.MysqlConfig) (*Repositories, error) {
	db, err := gorm.Open(mysqldriver.Open(DSN(cfg)), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	// AutoMigrate 不会删除已有字段或数据
	if err := db.AutoMigrate(&model.Document{}); err != nil {
		return nil, fmt.Errorf("migrate document table: %w", err)
	}

	return NewRepositories(db), nil
}
