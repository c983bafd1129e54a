// Package sessionclock 判断设备上的会话是否过期
// 每台设备只有一个会话；有效性只取决于 now - LastRefresh 与超时时长的比较
package sessionclock

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"mentor_sync/internal/config"
	"mentor_sync/internal/dao/local"
	"mentor_sync/pkg/constants"
	"mentor_sync/pkg/errorx"
	"mentor_sync/pkg/util/jwt"
)

// Record 会话记录
type Record struct {
	IssuedAt    time.Time `json:"issuedAt"`
	LastRefresh time.Time `json:"lastRefresh"`
}

// Expired 纯函数：距上次刷新超过 timeout 即过期（恰好等于不算过期）
func Expired(rec Record, now time.Time, timeout time.Duration) bool {
	return now.Sub(rec.LastRefresh) > timeout
}

// Clock 会话时钟
type Clock struct {
	store   local.Store
	timeout time.Duration
	now     func() time.Time
}

// New 按配置创建会话时钟
func New(store local.Store, cfg config.SessionConfig) *Clock {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultSessionMinutes) * time.Minute
	}
	return &Clock{store: store, timeout: timeout, now: time.Now}
}

// WithClock 替换时钟
func (c *Clock) WithClock(now func() time.Time) *Clock {
	c.now = now
	return c
}

// Timeout 配置的超时时长
func (c *Clock) Timeout() time.Duration {
	return c.timeout
}

// Begin 登录成功后开始新会话
// token 是 JWT 时用其 iat 作为签发时间，否则用当前时间
func (c *Clock) Begin(token string) (Record, error) {
	now := c.now()
	rec := Record{IssuedAt: now, LastRefresh: now}
	if iat, ok := jwt.IssuedAt(token); ok {
		rec.IssuedAt = iat
	}
	if err := c.save(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Refresh 用户活动时续期，记录不存在时新建
func (c *Clock) Refresh() (Record, error) {
	now := c.now()
	rec, found, err := c.Load()
	if err != nil {
		return Record{}, err
	}
	if !found {
		rec.IssuedAt = now
	}
	rec.LastRefresh = now
	if err := c.save(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// IsExpired 检查会话是否过期；首次检查时惰性建立记录
// 记录无法读取时视为过期
func (c *Clock) IsExpired() bool {
	now := c.now()
	rec, found, err := c.Load()
	if err != nil {
		zap.L().Warn("session record unreadable, treating as expired", zap.Error(err))
		return true
	}
	if !found {
		if err := c.save(Record{IssuedAt: now, LastRefresh: now}); err != nil {
			zap.L().Warn("create session record failed", zap.Error(err))
		}
		return false
	}
	return Expired(rec, now, c.timeout)
}

// Remaining 距过期的剩余时长，最小为 0
func (c *Clock) Remaining() time.Duration {
	rec, found, err := c.Load()
	if err != nil {
		return 0
	}
	if !found {
		return c.timeout
	}
	left := c.timeout - c.now().Sub(rec.LastRefresh)
	if left < 0 {
		return 0
	}
	return left
}

// Clear 登出或过期后删除会话记录
func (c *Clock) Clear() error {
	return c.store.Remove(constants.SessionKey)
}

// Load 读取会话记录
func (c *Clock) Load() (Record, bool, error) {
	var rec Record
	raw, err := c.store.Get(constants.SessionKey)
	if err != nil {
		return rec, false, err
	}
	if raw == "" {
		return rec, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return rec, false, errorx.Wrap(err, errorx.CodeLocalStorage, "解析会话记录失败")
	}
	return rec, true, nil
}

func (c *Clock) save(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeLocalStorage, "序列化会话记录失败")
	}
	return c.store.Set(constants.SessionKey, string(data))
}
