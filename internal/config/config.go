// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName    string `toml:"appName"`    // 应用名称，用于日志标识等
	Host       string `toml:"host"`       // 镜像服务监听地址，如 "0.0.0.0"
	Port       int    `toml:"port"`       // 镜像服务监听端口，如 8000
	Mode       string `toml:"mode"`       // 运行模式：dev / release
	ForceHTTPS bool   `toml:"forceHTTPS"` // 由本服务处理 HTTPS 重定向（前置 Nginx 时关闭）
}

// MysqlConfig 镜像服务 MySQL 连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// RedisConfig 镜像服务 Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"` // 无密码留空
	Db       int    `toml:"db"`
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 文档变更事件的发布配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // "channel"（仅记日志）或 "kafka"
	HostPort    string        `toml:"hostPort"`    // 如 "localhost:9092"
	ChangeTopic string        `toml:"changeTopic"` // 文档变更主题
	Partition   int           `toml:"partition"`
	Timeout     time.Duration `toml:"timeout"` // 秒
}

// JWTConfig 设备令牌配置
type JWTConfig struct {
	Secret            string `toml:"secret"`            // 签名密钥，建议 32 字符以上
	DeviceTokenExpiry int    `toml:"deviceTokenExpiry"` // 设备令牌有效期（小时）
	APIKeyHash        string `toml:"apiKeyHash"`        // 换取令牌所需 API Key 的 bcrypt 哈希
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 范围 0-1023
}

// LocalStoreConfig 设备本地存储配置
type LocalStoreConfig struct {
	Dir      string `toml:"dir"`      // ekv 文件存储目录
	Password string `toml:"password"` // ekv 加密口令
	InMemory bool   `toml:"inMemory"` // 为 true 时使用内存存储（测试/演示）
}

// RemoteConfig 远端镜像客户端配置
// BaseURL 为空视为未配置，同步引擎只走本地
type RemoteConfig struct {
	BaseURL           string `toml:"baseURL"`
	Token             string `toml:"token"`
	TimeoutSeconds    int    `toml:"timeoutSeconds"`
	RequestsPerSecond int    `toml:"requestsPerSecond"`
}

// RateGuardConfig 登录尝试限流配置
type RateGuardConfig struct {
	MaxAttempts   int `toml:"maxAttempts"`
	WindowSeconds int `toml:"windowSeconds"`
}

// SessionConfig 会话有效期配置
type SessionConfig struct {
	TimeoutMinutes int `toml:"timeoutMinutes"`
}

// RequestConfig 导师申请相关配置
type RequestConfig struct {
	MaxNoteLength      int `toml:"maxNoteLength"`
	InvitationTTLHours int `toml:"invitationTTLHours"`
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig       `toml:"mainConfig"`
	MysqlConfig      `toml:"mysqlConfig"`
	RedisConfig      `toml:"redisConfig"`
	LogConfig        `toml:"logConfig"`
	KafkaConfig      `toml:"kafkaConfig"`
	JWTConfig        `toml:"jwtConfig"`
	SnowflakeConfig  `toml:"snowflakeConfig"`
	LocalStoreConfig `toml:"localStoreConfig"`
	RemoteConfig     `toml:"remoteConfig"`
	RateGuardConfig  `toml:"rateGuardConfig"`
	SessionConfig    `toml:"sessionConfig"`
	RequestConfig    `toml:"requestConfig"`
}

// 默认值
const (
	DefaultMaxAttempts        = 5
	DefaultWindowSeconds      = 15 * 60
	DefaultSessionMinutes     = 30
	DefaultMaxNoteLength      = 500
	DefaultInvitationTTLHours = 7 * 24
	DefaultRemoteTimeout      = 10
	DefaultRequestsPerSecond  = 20
	DefaultDeviceTokenExpiry  = 24 * 30
)

// ApplyDefaults 将未配置（零值）的字段替换为默认值
func (c *Config) ApplyDefaults() {
	if c.RateGuardConfig.MaxAttempts <= 0 {
		c.RateGuardConfig.MaxAttempts = DefaultMaxAttempts
	}
	if c.RateGuardConfig.WindowSeconds <= 0 {
		c.RateGuardConfig.WindowSeconds = DefaultWindowSeconds
	}
	if c.SessionConfig.TimeoutMinutes <= 0 {
		c.SessionConfig.TimeoutMinutes = DefaultSessionMinutes
	}
	if c.RequestConfig.MaxNoteLength <= 0 {
		c.RequestConfig.MaxNoteLength = DefaultMaxNoteLength
	}
	if c.RequestConfig.InvitationTTLHours <= 0 {
		c.RequestConfig.InvitationTTLHours = DefaultInvitationTTLHours
	}
	if c.RemoteConfig.TimeoutSeconds <= 0 {
		c.RemoteConfig.TimeoutSeconds = DefaultRemoteTimeout
	}
	if c.RemoteConfig.RequestsPerSecond <= 0 {
		c.RemoteConfig.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.JWTConfig.DeviceTokenExpiry <= 0 {
		c.JWTConfig.DeviceTokenExpiry = DefaultDeviceTokenExpiry
	}
	if c.KafkaConfig.MessageMode == "" {
		c.KafkaConfig.MessageMode = "channel"
	}
}

// Window 返回限流窗口长度
func (c RateGuardConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// Timeout 返回会话超时时长
func (c SessionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// Timeout 返回远端请求超时
func (c RemoteConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// InvitationTTL 返回邀请码有效期
func (c RequestConfig) InvitationTTL() time.Duration {
	return time.Duration(c.InvitationTTLHours) * time.Hour
}

// config 全局配置单例，延迟加载
var config *Config

// Load 从指定路径加载配置文件并补齐默认值
func Load(path string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	conf.ApplyDefaults()
	return conf, nil
}

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if conf, err := Load(path); err == nil {
			config = conf
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件，找不到文件时使用默认值
func GetConfig() *Config {
	if config == nil {
		if err := LoadConfig(); err != nil {
			config = new(Config)
			config.ApplyDefaults()
		}
	}
	return config
}
