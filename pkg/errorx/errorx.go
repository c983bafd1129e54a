package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息
	cause error  // 被包装的底层错误
}

// Error 实现 Go 标准 error 接口
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// Is 同码即相等，使 errors.Is(err, ErrRemoteUnavailable) 这类判断成立
func (e *CodeError) Is(target error) bool {
	var t *CodeError
	if !errors.As(target, &t) {
		return false
	}
	return t.cause == nil && t.Code == e.Code
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeLocalStorage, "写入本地集合失败")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeRemoteUnavailable, "远端读取 %s 失败", key)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy // 默认返回服务繁忙
}

// 业务状态码常量定义
const (
	CodeSuccess      = 1000 // 成功
	CodeInvalidParam = 1001 // 请求参数错误
	CodeServerBusy   = 1005 // 服务繁忙
	CodeUnauthorized = 1006 // 未授权/认证失败
	CodeNotFound     = 1008 // 资源不存在（EntityNotFound）
	CodeDBError      = 1010 // 数据库错误
	CodeCacheError   = 1011 // 缓存错误

	CodeLocalStorage      = 1020 // 本地存储故障（LocalStorageFault），唯一会抛给 UI 的错误
	CodeRemoteUnavailable = 1021 // 远端未配置/不可达/拒绝（RemoteUnavailable），只记日志
	CodeSideEffect        = 1022 // 尽力而为的副作用失败（SideEffectFault），只记日志
	CodeTooManyAttempts   = 1023 // 登录尝试过于频繁
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam      = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy        = New(CodeServerBusy, "服务繁忙")
	ErrUnauthorized      = New(CodeUnauthorized, "未授权")
	ErrNotFound          = New(CodeNotFound, "资源不存在")
	ErrRemoteUnavailable = New(CodeRemoteUnavailable, "远端镜像不可用")
)

// IsNotFound 检查错误是否为"未找到"类型
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsLocalStorageFault 检查错误是否为本地存储故障
func IsLocalStorageFault(err error) bool {
	return hasCode(err, CodeLocalStorage)
}

// IsRemoteUnavailable 检查错误是否为远端不可用
func IsRemoteUnavailable(err error) bool {
	return hasCode(err, CodeRemoteUnavailable)
}

// IsSideEffectFault 检查错误是否为副作用失败
func IsSideEffectFault(err error) bool {
	return hasCode(err, CodeSideEffect)
}

// hasCode 沿错误链查找任意一层携带指定错误码的 CodeError
func hasCode(err error, code int) bool {
	for err != nil {
		var codeErr *CodeError
		if !errors.As(err, &codeErr) {
			return false
		}
		if codeErr.Code == code {
			return true
		}
		err = codeErr.cause
	}
	return false
}
