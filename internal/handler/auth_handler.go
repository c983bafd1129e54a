// Package handler 提供 HTTP 请求处理器
// 本文件处理设备认证相关的 API 请求
package handler

import (
	"mentor_sync/internal/dto/request"
	"mentor_sync/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证请求处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// IssueToken 设备换取令牌
// POST /api/v1/auth/token
// 请求体: request.DeviceTokenRequest
// 响应: respond.DeviceTokenRespond
//
// 同一设备重新换取后，之前签发的令牌在中间件校验时失效
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req request.DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.authSvc.IssueToken(c.Request.Context(), req.DeviceID, req.APIKey)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
