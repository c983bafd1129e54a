package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret            string
	DeviceTokenExpiry time.Duration // 设备令牌有效期
}

// 全局配置，由 Init 函数初始化
var jwtConfig *JWTConfig

// Init 初始化 JWT 配置
func Init(secret string, deviceExpiryHours int) {
	jwtConfig = &JWTConfig{
		Secret:            secret,
		DeviceTokenExpiry: time.Duration(deviceExpiryHours) * time.Hour,
	}
}

// Claims 设备令牌声明
type Claims struct {
	DeviceID string `json:"device_id"`
	TokenID  string `json:"token_id"`
	jwt.RegisteredClaims
}

// ErrNotInitialized 未调用 Init
var ErrNotInitialized = errors.New("jwt not initialized")

// GenerateDeviceToken 为设备签发访问镜像服务的令牌
func GenerateDeviceToken(deviceID string) (tokenString string, expiresAt time.Time, err error) {
	if jwtConfig == nil {
		return "", time.Time{}, ErrNotInitialized
	}
	now := time.Now()
	expiresAt = now.Add(jwtConfig.DeviceTokenExpiry)
	claims := Claims{
		DeviceID: deviceID,
		TokenID:  uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "mentor_sync",
			Subject:   "device_token",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(jwtConfig.Secret))
	return
}

// ParseToken 解析并验证 Token
func ParseToken(tokenString string) (*Claims, error) {
	if jwtConfig == nil {
		return nil, ErrNotInitialized
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtConfig.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// IssuedAt 不验签读取 iat，客户端只用它作为会话起点
func IssuedAt(tokenString string) (time.Time, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	if claims.IssuedAt == nil {
		return time.Time{}, false
	}
	return claims.IssuedAt.Time, true
}
