// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"mentor_sync/internal/handler"
	"mentor_sync/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器
type Router struct {
	handlers  *handler.Handlers
	validator middleware.TokenValidator
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers, validator middleware.TokenValidator) *Router {
	return &Router{handlers: handlers, validator: validator}
}

// RegisterRoutes 注册所有路由
// 公开路由：令牌换取；其余路由需要设备令牌
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	rt.RegisterAuthRoutes(v1)

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(rt.validator))
	rt.RegisterDocumentRoutes(authed)
}
