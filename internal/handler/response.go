package handler

import (
	"errors"
	"net/http"

	"mentor_sync/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData 统一响应结构体，客户端 remote.HTTPClient 按此解析
type ResponseData struct {
	Code int `json:"code"`           // 业务响应状态码
	Msg  any `json:"msg"`            // 提示信息
	Data any `json:"data,omitempty"` // 数据
}

// internalCodes 只在服务端有意义的错误码，对外统一为服务繁忙
var internalCodes = map[int]bool{
	errorx.CodeDBError:           true,
	errorx.CodeCacheError:        true,
	errorx.CodeLocalStorage:      true,
	errorx.CodeRemoteUnavailable: true,
	errorx.CodeSideEffect:        true,
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleError 通用错误处理方法
// 业务错误原样返回错误码和消息；内部错误码与非 CodeError 记录日志后返回服务繁忙
// 业务错误也使用 HTTP 200，客户端依据 code 判断
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) && !internalCodes[codeErr.Code] {
		c.JSON(http.StatusOK, ResponseData{Code: codeErr.Code, Msg: codeErr.Msg})
		return
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("device", c.GetString("deviceId")),
		zap.Error(err),
	)
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.ErrServerBusy.Code,
		Msg:  errorx.ErrServerBusy.Msg,
	})
}

// HandleParamError 处理参数绑定错误
// validator 错误翻译后按字段返回，其他错误（如 JSON 格式错误）返回通用提示
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		c.JSON(http.StatusOK, ResponseData{
			Code: errorx.ErrInvalidParam.Code,
			Msg:  RemoveTopStruct(validationErrs.Translate(Trans)),
		})
		return
	}

	zap.L().Debug("param bind error", zap.Error(err))
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.ErrInvalidParam.Code,
		Msg:  errorx.ErrInvalidParam.Msg,
	})
}
