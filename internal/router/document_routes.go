package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterDocumentRoutes 注册文档相关路由（需要认证）
func (rt *Router) RegisterDocumentRoutes(rg *gin.RouterGroup) {
	docGroup := rg.Group("/collections/:collection/documents")
	{
		docGroup.GET("", rt.handlers.Document.Query)   // 按查询键列出
		docGroup.POST("", rt.handlers.Document.Create) // 创建并分配标识
		docGroup.GET("/:id", rt.handlers.Document.Get) // 读取单个文档
		docGroup.PUT("/:id", rt.handlers.Document.Put) // 创建或覆盖
	}
}
