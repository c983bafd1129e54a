package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由
func (rt *Router) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		// POST /api/v1/auth/token - 设备凭 API Key 换取令牌
		authGroup.POST("/token", rt.handlers.Auth.IssueToken)
	}
}
