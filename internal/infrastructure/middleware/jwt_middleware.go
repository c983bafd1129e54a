package middleware

import (
	"context"
	"net/http"
	"strings"

	"mentor_sync/pkg/errorx"
	"mentor_sync/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextDeviceID 上下文中保存设备标识的键
const ContextDeviceID = "deviceId"

// TokenValidator 校验令牌是否为设备最新签发
type TokenValidator interface {
	ValidateTokenID(ctx context.Context, deviceID, tokenID string) (bool, error)
}

// JWTAuth 设备令牌认证中间件
// 验证设备令牌并将设备标识存入上下文
func JWTAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "缺少设备令牌")
			return
		}

		// 2. 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Token 格式错误，请使用 Bearer Token")
			return
		}

		// 3. 验证 Token
		claims, err := jwt.ParseToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "Token 已过期或无效")
			return
		}
		if claims.Subject != "device_token" {
			abortUnauthorized(c, "请使用设备令牌访问此接口")
			return
		}

		// 4. 比对 Token ID（设备重新换取令牌后旧令牌失效）
		ok, err := validator.ValidateTokenID(c.Request.Context(), claims.DeviceID, claims.TokenID)
		if err != nil {
			zap.L().Error("validate token id failed", zap.String("device", claims.DeviceID), zap.Error(err))
			abortUnauthorized(c, "令牌状态校验失败")
			return
		}
		if !ok {
			abortUnauthorized(c, "令牌已被替换，请重新换取")
			return
		}

		// 5. 将设备信息存入上下文，供后续 Handler 使用
		c.Set(ContextDeviceID, claims.DeviceID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
	})
}
