package mirror

import (
	"sync"
	"time"
)

// pruneThreshold 记录数超过该值时清理过期记录
const pruneThreshold = 1024

// refillGuard 按缓存键记录最近一次写入的序号
// 读穿回填前先取序号，写入落库后递增；回填时序号已变，读到的可能是旧文档，放弃回填
type refillGuard struct {
	mu   sync.Mutex
	seq  uint64
	gens map[string]generation
	ttl  time.Duration
}

type generation struct {
	seq uint64
	at  time.Time
}

func newRefillGuard(ttl time.Duration) *refillGuard {
	return &refillGuard{gens: make(map[string]generation), ttl: ttl}
}

// snapshot 当前序号，未写入过的键为 0
func (g *refillGuard) snapshot(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[key].seq
}

// written 写入落库后调用，invalidate 在锁内同步执行
func (g *refillGuard) written(key string, invalidate func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	g.seq++
	g.gens[key] = generation{seq: g.seq, at: now}
	g.prune(now)
	invalidate()
}

// refill 序号未变时才执行 set，返回是否执行
func (g *refillGuard) refill(key string, seen uint64, set func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gens[key].seq != seen {
		return false
	}
	set()
	return true
}

// prune 只清理超过缓存有效期的记录，更早开始的回填即使写入旧值也会随缓存过期
func (g *refillGuard) prune(now time.Time) {
	if len(g.gens) < pruneThreshold {
		return
	}
	for key, gen := range g.gens {
		if now.Sub(gen.at) > g.ttl {
			delete(g.gens, key)
		}
	}
}
