// Package rateguard 是持久化的滑动窗口尝试计数器，用于限制登录等认证尝试
// 检查即记录：每次真实尝试调用一次 IsLimited
package rateguard

import (
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"mentor_sync/internal/config"
	"mentor_sync/internal/dao/local"
	"mentor_sync/pkg/constants"
	"mentor_sync/pkg/errorx"
)

// record 持久化的限流记录
// Count 只在窗口滚动时归零，窗口内只增不减
type record struct {
	Count       int   `json:"count"`
	WindowStart int64 `json:"windowStart"` // 毫秒时间戳
}

// Guard 限流器
// 存储故障时一律放行（可用性优先于严格限流）
type Guard struct {
	store       local.Store
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// New 按配置创建限流器
func New(store local.Store, cfg config.RateGuardConfig) *Guard {
	g := &Guard{
		store:       store,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window(),
		now:         time.Now,
	}
	if g.maxAttempts <= 0 {
		g.maxAttempts = config.DefaultMaxAttempts
	}
	if g.window <= 0 {
		g.window = time.Duration(config.DefaultWindowSeconds) * time.Second
	}
	return g
}

// WithClock 替换时钟，返回自身便于链式调用
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// IdentityKey 生成规范化的限流键：去空白、转小写
func IdentityKey(scope, identity string) string {
	return scope + ":" + strings.ToLower(strings.TrimSpace(identity))
}

// IsLimited 记录一次尝试并判断是否超限（使用默认阈值与窗口）
func (g *Guard) IsLimited(key string) bool {
	return g.IsLimitedWith(key, g.maxAttempts, g.window)
}

// IsLimitedWith 记录一次尝试并判断是否超限
// 无记录或窗口已过期时重新开窗（count=1）并放行，否则计数加一并返回 count > maxAttempts
func (g *Guard) IsLimitedWith(key string, maxAttempts int, window time.Duration) bool {
	now := g.now()
	rec, found, err := g.load(key)
	if err != nil {
		g.warn("isLimited", key, err)
		return false
	}

	if !found || expired(rec, now, window) {
		rec = record{Count: 1, WindowStart: now.UnixMilli()}
		if err := g.save(key, rec); err != nil {
			g.warn("isLimited", key, err)
		}
		return false
	}

	rec.Count++
	if err := g.save(key, rec); err != nil {
		g.warn("isLimited", key, err)
		return false
	}
	return rec.Count > maxAttempts
}

// Reset 删除记录，认证成功后调用；存储错误只记日志
func (g *Guard) Reset(key string) {
	if err := g.store.Remove(storageKey(key)); err != nil {
		g.warn("reset", key, err)
	}
}

// RemainingAttempts 剩余可尝试次数，不记录尝试
func (g *Guard) RemainingAttempts(key string) int {
	return g.RemainingAttemptsWith(key, g.maxAttempts)
}

// RemainingAttemptsWith 指定阈值的剩余次数，最小为 0
func (g *Guard) RemainingAttemptsWith(key string, maxAttempts int) int {
	rec, found, err := g.load(key)
	if err != nil {
		g.warn("remainingAttempts", key, err)
		return maxAttempts
	}
	if !found || expired(rec, g.now(), g.window) {
		return maxAttempts
	}
	if remaining := maxAttempts - rec.Count; remaining > 0 {
		return remaining
	}
	return 0
}

// TimeUntilReset 距窗口重置的剩余时长，不记录尝试
func (g *Guard) TimeUntilReset(key string) time.Duration {
	return g.TimeUntilResetWith(key, g.window)
}

// TimeUntilResetWith 指定窗口长度的剩余时长，最小为 0
func (g *Guard) TimeUntilResetWith(key string, window time.Duration) time.Duration {
	rec, found, err := g.load(key)
	if err != nil {
		g.warn("timeUntilReset", key, err)
		return 0
	}
	now := g.now()
	if !found || expired(rec, now, window) {
		return 0
	}
	left := time.UnixMilli(rec.WindowStart).Add(window).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func expired(rec record, now time.Time, window time.Duration) bool {
	return now.UnixMilli()-rec.WindowStart > window.Milliseconds()
}

func storageKey(key string) string {
	return constants.RateGuardKeyPrefix + key
}

func (g *Guard) load(key string) (record, bool, error) {
	var rec record
	raw, err := g.store.Get(storageKey(key))
	if err != nil {
		return rec, false, err
	}
	if raw == "" {
		return rec, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return rec, false, errorx.Wrapf(err, errorx.CodeLocalStorage, "解析限流记录 %s 失败", key)
	}
	return rec, true, nil
}

func (g *Guard) save(key string, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeLocalStorage, "序列化限流记录失败")
	}
	return g.store.Set(storageKey(key), string(data))
}

func (g *Guard) warn(op, key string, err error) {
	zap.L().Warn("rate guard storage fault, failing open",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
