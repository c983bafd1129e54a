// Package internal 是数据访问层子包共享的辅助函数
package internal

import (
	"errors"

	"mentor_sync/pkg/errorx"

	"gorm.io/gorm"
)

// WrapDBErrorf 包装数据库错误
// 记录不存在映射为 CodeNotFound，镜像服务据此返回"文档不存在"；其余映射为 CodeDBError
func WrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	code := errorx.CodeDBError
	if errors.Is(err, gorm.ErrRecordNotFound) {
		code = errorx.CodeNotFound
	}
	return errorx.Wrapf(err, code, format, args...)
}
