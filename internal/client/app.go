// Package client 组装设备端的本地优先同步层
// 本文件实现客户端各组件的依赖注入和聚合，界面层只持有 App
package client

import (
	"context"

	"go.uber.org/zap"

	"mentor_sync/internal/config"
	"mentor_sync/internal/dao/local"
	"mentor_sync/internal/dao/remote"
	"mentor_sync/internal/infrastructure/worker"
	"mentor_sync/internal/service/invitation"
	"mentor_sync/internal/service/rateguard"
	"mentor_sync/internal/service/request"
	"mentor_sync/internal/service/sessionclock"
	"mentor_sync/internal/service/syncer"
	"mentor_sync/pkg/constants"
	"mentor_sync/pkg/errorx"
)

// loginScope 登录尝试的限流作用域
const loginScope = "login"

// tokenSetter 支持更换令牌的远端客户端
type tokenSetter interface {
	SetToken(token string)
}

// App 客户端聚合
type App struct {
	Store  local.Store
	Remote remote.Client

	Chat        *syncer.ChatStore
	Profiles    *syncer.ProfileStore
	Meetings    *syncer.MeetingStore
	Requests    *syncer.RequestStore
	Lifecycle   *request.Manager
	Invitations *invitation.Service
	Guard       *rateguard.Guard
	Session     *sessionclock.Clock

	pool *worker.Pool
}

// OpenStore 按配置打开本地存储
func OpenStore(cfg config.LocalStoreConfig) (local.Store, error) {
	if cfg.InMemory {
		return local.NewMemoryStore(), nil
	}
	return local.NewFileStore(cfg.Dir, cfg.Password)
}

// NewApp 按配置创建本地存储与远端客户端并组装
func NewApp(cfg *config.Config) (*App, error) {
	store, err := OpenStore(cfg.LocalStoreConfig)
	if err != nil {
		return nil, err
	}
	return Assemble(cfg, store, remote.New(cfg.RemoteConfig)), nil
}

// Assemble 用给定的本地存储和远端客户端组装各组件；client 为 nil 视为未配置远端
func Assemble(cfg *config.Config, store local.Store, client remote.Client, opts ...syncer.Option) *App {
	if client == nil {
		client = remote.Disabled{}
	}
	pool := worker.NewPool(constants.WORKER_NUM, constants.CHANNEL_SIZE)
	invitations := invitation.NewService(store, client, cfg.RequestConfig, opts...)
	requests := syncer.NewRequestStore(store, client, opts...)

	app := &App{
		Store:       store,
		Remote:      client,
		Chat:        syncer.NewChatStore(store, client, opts...),
		Profiles:    syncer.NewProfileStore(store, client, opts...),
		Meetings:    syncer.NewMeetingStore(store, client, opts...),
		Requests:    requests,
		Lifecycle:   request.NewManager(requests, invitations, pool, cfg.RequestConfig),
		Invitations: invitations,
		Guard:       rateguard.New(store, cfg.RateGuardConfig),
		Session:     sessionclock.New(store, cfg.SessionConfig),
		pool:        pool,
	}
	zap.L().Info("client assembled", zap.Bool("remote", client.Configured()))
	return app
}

// SignIn 在限流保护下执行一次登录尝试
// authenticate 由外部认证服务提供，成功时返回令牌；成功后清空限流记录、开始会话并把令牌交给远端客户端
func (a *App) SignIn(ctx context.Context, identity string, authenticate func(ctx context.Context) (string, error)) error {
	key := rateguard.IdentityKey(loginScope, identity)
	if a.Guard.IsLimited(key) {
		return errorx.Newf(errorx.CodeTooManyAttempts, "尝试次数过多，请 %d 秒后再试", int(a.Guard.TimeUntilReset(key).Seconds()))
	}

	token, err := authenticate(ctx)
	if err != nil {
		return err
	}

	a.Guard.Reset(key)
	if _, err := a.Session.Begin(token); err != nil {
		return err
	}
	if ts, ok := a.Remote.(tokenSetter); ok {
		ts.SetToken(token)
	}
	return nil
}

// SignOut 清除会话
func (a *App) SignOut() error {
	return a.Session.Clear()
}

// Close 停止后台协程池，已入队的副作用任务仍会执行
// 之后再触发的副作用在调用方协程中同步执行
func (a *App) Close() {
	a.pool.Close()
}
