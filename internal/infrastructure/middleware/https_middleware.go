package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler 将 HTTP 请求重定向到 HTTPS，并附加常用安全响应头
func TlsHandler(host string, port int) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:        true,
		SSLHost:            host + ":" + strconv.Itoa(port),
		ContentTypeNosniff: true,
		FrameDeny:          true,
	})

	return func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			// 中间件里不能 Fatal，记录后终止当前请求
			zap.L().Error("TLS redirection failed", zap.Error(err))
			c.Abort()
			return
		}

		// 已重定向时响应已写出，不再进入后续 handler
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	}
}
