// Package auth 提供设备令牌的签发与校验
// 设备凭 API Key 换取令牌，同一设备重新换取后旧令牌失效
package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	myredis "mentor_sync/internal/dao/redis"
	"mentor_sync/internal/dto/respond"
	"mentor_sync/pkg/errorx"
	"mentor_sync/pkg/util/jwt"
)

// Service 认证服务实现
type Service struct {
	cache      myredis.CacheService // 缓存服务（依赖倒置）
	apiKeyHash string
}

// NewAuthService 创建认证服务实例
// apiKeyHash: API Key 的 bcrypt 哈希，为空时拒绝所有换取请求
func NewAuthService(cache myredis.CacheService, apiKeyHash string) *Service {
	return &Service{
		cache:      cache,
		apiKeyHash: apiKeyHash,
	}
}

func tokenKey(deviceID string) string {
	return "device_token:" + deviceID
}

// IssueToken 校验 API Key 并为设备签发令牌
func (s *Service) IssueToken(ctx context.Context, deviceID, apiKey string) (*respond.DeviceTokenRespond, error) {
	if s.apiKeyHash == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "服务端未配置 API Key")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.apiKeyHash), []byte(apiKey)); err != nil {
		return nil, errorx.New(errorx.CodeUnauthorized, "API Key 不正确")
	}

	tokenString, expiresAt, err := jwt.GenerateDeviceToken(deviceID)
	if err != nil {
		zap.L().Error("生成设备令牌失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	claims, err := jwt.ParseToken(tokenString)
	if err != nil {
		zap.L().Error("解析新签发的设备令牌失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 记录最新 Token ID，旧令牌随之失效
	if err := s.cache.Set(ctx, tokenKey(deviceID), claims.TokenID, time.Until(expiresAt)); err != nil {
		zap.L().Error("保存设备 Token ID 失败", zap.String("device", deviceID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.DeviceTokenRespond{Token: tokenString, ExpiresAt: expiresAt}, nil
}

// ValidateTokenID 验证设备的 Token ID 是否仍是最新签发的
func (s *Service) ValidateTokenID(ctx context.Context, deviceID, tokenID string) (bool, error) {
	validTokenID, err := s.cache.Get(ctx, tokenKey(deviceID))
	if err != nil {
		return false, err
	}
	if validTokenID == "" {
		return false, nil
	}
	return tokenID == validTokenID, nil
}
