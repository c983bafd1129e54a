// Package logger 初始化全局 zap 日志，并提供镜像服务使用的 Gin 日志/恢复中间件
package logger

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"mentor_sync/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init 按配置初始化 zap 并替换全局 Logger，之后各包直接使用 zap.L()
// mode 为 "dev" 或 gin.DebugMode 时，同时输出到控制台
func Init(cfg *config.LogConfig, mode string) error {
	if cfg == nil {
		return fmt.Errorf("logger.Init received nil config")
	}
	applyDefaults(cfg)

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	fileCore := zapcore.NewCore(getEncoder(), getLogWriter(cfg), level)

	core := fileCore
	if mode == "dev" || mode == gin.DebugMode {
		// 开发模式：文件 + 控制台
		consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zapcore.DebugLevel)
		core = zapcore.NewTee(fileCore, consoleCore)
	}

	zap.ReplaceGlobals(zap.New(core, zap.AddCaller()))
	return nil
}

func applyDefaults(cfg *config.LogConfig) {
	if cfg.FileName == "" {
		cfg.FileName = filepath.Join(cfg.LogPath, "app.log")
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 100
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 30
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
}

// getLogWriter 使用 lumberjack 做日志切割
func getLogWriter(cfg *config.LogConfig) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FileName,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	})
}

// getEncoder JSON 编码，便于日志收集系统解析
func getEncoder() zapcore.Encoder {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

// GinLogger 将镜像服务的请求日志输出到 zap
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		zap.L().Info("http request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("client_ip", c.ClientIP()),
			zap.String("device_id", c.GetString("deviceId")),
			zap.Duration("cost", time.Since(start)),
			zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
		)
	}
}

// GinRecovery 捕获 handler 中的 panic，记录现场后返回 500
// 客户端已断开（broken pipe）时只记日志，不再写响应
func GinRecovery(stack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			var brokenPipe bool
			if err, ok := rec.(error); ok {
				brokenPipe = isBrokenPipeError(err)
			}

			httpRequest, _ := httputil.DumpRequest(c.Request, false)
			fields := []zap.Field{
				zap.Any("error", rec),
				zap.String("request", string(httpRequest)),
			}

			if brokenPipe {
				zap.L().Error("broken pipe", append(fields, zap.String("path", c.Request.URL.Path))...)
				_ = c.Error(rec.(error))
				c.Abort()
				return
			}

			if stack {
				fields = append(fields, zap.String("stack", string(debug.Stack())))
			}
			zap.L().Error("[Recovery from panic]", fields...)
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}

// isBrokenPipeError 检查错误链中是否包含 broken pipe / connection reset
func isBrokenPipeError(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		var syscallErr *os.SyscallError
		if errors.As(opErr.Err, &syscallErr) {
			return containsResetMessage(syscallErr.Error())
		}
	}
	return containsResetMessage(err.Error())
}

func containsResetMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
