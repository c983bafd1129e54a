package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mentor_sync/internal/config"
	"mentor_sync/internal/dao/mysql"
	myredis "mentor_sync/internal/dao/redis"
	"mentor_sync/internal/handler"
	"mentor_sync/internal/https_server"
	"mentor_sync/internal/infrastructure/logger"
	"mentor_sync/internal/infrastructure/mq"
	"mentor_sync/internal/infrastructure/worker"
	"mentor_sync/internal/service"
	"mentor_sync/pkg/constants"
	"mentor_sync/pkg/util/jwt"
	"mentor_sync/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化雪花算法与 JWT
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.DeviceTokenExpiry)
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化参数校验翻译器失败", zap.Error(err))
	}

	// 4. 初始化数据库
	repos, err := mysql.Init(conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功")

	// 5. 初始化后台协程池与 Redis
	pool := worker.NewPool(constants.WORKER_NUM, constants.CHANNEL_SIZE)
	defer pool.Close()
	cache, err := myredis.Init(context.Background(), conf.RedisConfig, pool)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}
	zap.L().Info("Redis 初始化成功")

	// 6. 初始化变更事件发布者
	publisher := mq.New(conf.KafkaConfig)
	if kp, ok := publisher.(*mq.KafkaPublisher); ok {
		kp.CreateTopic()
	}
	defer publisher.Close()
	zap.L().Info("变更事件发布者初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 7. 依赖注入
	svc := service.NewServices(repos, cache, publisher, conf.JWTConfig.APIKeyHash)
	engine := https_server.Init(conf.MainConfig, handler.NewHandlers(svc), svc.Auth)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("镜像服务已启动", zap.String("addr", srv.Addr))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("服务器关闭异常", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
