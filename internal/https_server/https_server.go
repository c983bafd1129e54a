// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"mentor_sync/internal/config"                    // 配置管理
	"mentor_sync/internal/handler"                   // Handler 聚合对象
	"mentor_sync/internal/infrastructure/logger"     // 自定义日志中间件
	"mentor_sync/internal/infrastructure/middleware" // TLS 与认证中间件
	"mentor_sync/internal/router"                    // 路由注册

	"github.com/gin-contrib/cors" // CORS 跨域中间件
	"github.com/gin-gonic/gin"    // Gin Web 框架
)

// Init 创建 Gin 引擎并注册中间件与路由
// 配置顺序：
//  1. 创建 Gin 引擎（空白，不含默认中间件）
//  2. 注册日志和恢复中间件
//  3. 配置 CORS 跨域规则
//  4. 可选的 HTTPS 重定向
//  5. 注册业务路由
func Init(cfg config.MainConfig, handlers *handler.Handlers, validator middleware.TokenValidator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	// Zap 日志中间件替代 Gin 默认日志
	engine.Use(logger.GinLogger())
	// 捕获 panic 并记录堆栈
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// 前置 Nginx 处理 SSL 时保持关闭
	if cfg.ForceHTTPS {
		engine.Use(middleware.TlsHandler(cfg.Host, cfg.Port))
	}

	rt := router.NewRouter(handlers, validator)
	rt.RegisterRoutes(engine)

	return engine
}
