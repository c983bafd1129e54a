package model

import (
	"strings"

	"gorm.io/gorm"
)

// Document 镜像服务中的一份文档
// 对应数据库 document 表，(collection, doc_id) 唯一
type Document struct {
	gorm.Model

	// Collection 逻辑集合名，如 conversations / messages
	Collection string `gorm:"column:collection;uniqueIndex:idx_collection_doc;type:varchar(64);not null;comment:集合名"`

	// DocID 集合内的文档标识
	DocID string `gorm:"column:doc_id;uniqueIndex:idx_collection_doc;type:varchar(128);not null;comment:文档id"`

	// Keys 查询键，格式 |k1|k2|，用于 LIKE 匹配
	Keys string `gorm:"column:lookup_keys;type:varchar(512);index;comment:查询键"`

	// Data 客户端序列化好的 JSON 文档
	Data string `gorm:"column:data;type:MEDIUMTEXT;comment:文档内容"`
}

// TableName 指定表名
func (Document) TableName() string {
	return "document"
}

const keySep = "|"

// LikeEscape KeyPattern 使用的 LIKE 转义字符，查询时需带 ESCAPE '!'
const LikeEscape = "!"

var likeReplacer = strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")

// ValidKey 查询键非空且不含分隔符
func ValidKey(key string) bool {
	return key != "" && !strings.Contains(key, keySep)
}

// JoinKeys 将查询键编码为 |k1|k2| 形式，调用方需先用 ValidKey 校验
func JoinKeys(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keySep + strings.Join(keys, keySep) + keySep
}

// SplitKeys 解码 |k1|k2|
func SplitKeys(encoded string) []string {
	trimmed := strings.Trim(encoded, keySep)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, keySep)
}

// KeyPattern 单个查询键的 LIKE 模式，键中的 % _ ! 已按 LikeEscape 转义
func KeyPattern(key string) string {
	return "%" + keySep + likeReplacer.Replace(key) + keySep + "%"
}
