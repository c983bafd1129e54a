// Package syncer 是本地优先的同步引擎
// 写：先落本地（调用方可依赖的持久化边界），再尽力镜像到远端
// 读：远端可用时以远端为准并刷新本地缓存，否则回退到本地集合
package syncer

import "sort"

// Schema 描述一个领域实体如何映射到本地集合与远端文档
type Schema[T any] struct {
	// Collection 本地集合名，同时也是远端集合名
	Collection string
	// ID 实体标识
	ID func(T) string
	// SetID 写入标识（本地生成或远端分配）
	SetID func(*T, string)
	// ReadKey read(key) 按该键过滤
	ReadKey func(T) string
	// Owners listFor(owner) 按该键集合过滤
	Owners func(T) []string
	// Less 列表排序，必须包含标识作为最终的平局裁决
	Less func(a, b T) bool
	// ServerAssignedID 为 true 时远端写入走 Create，由服务端分配标识
	ServerAssignedID bool
}

// keys 远端文档的查询键：ReadKey 与 Owners 去重合并
func (s Schema[T]) keys(entity T) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(k string) {
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	if s.ReadKey != nil {
		add(s.ReadKey(entity))
	}
	if s.Owners != nil {
		for _, k := range s.Owners(entity) {
			add(k)
		}
	}
	return out
}

func (s Schema[T]) readMatch(key string) func(T) bool {
	return func(e T) bool {
		return s.ReadKey != nil && s.ReadKey(e) == key
	}
}

func (s Schema[T]) ownerMatch(owner string) func(T) bool {
	return func(e T) bool {
		if s.Owners == nil {
			return false
		}
		for _, k := range s.Owners(e) {
			if k == owner {
				return true
			}
		}
		return false
	}
}

// collect 过滤并排序
func (s Schema[T]) collect(items map[string]T, match func(T) bool) []T {
	out := make([]T, 0)
	for _, e := range items {
		if match(e) {
			out = append(out, e)
		}
	}
	s.sort(out)
	return out
}

func (s Schema[T]) sort(items []T) {
	if s.Less != nil {
		sort.SliceStable(items, func(i, j int) bool { return s.Less(items[i], items[j]) })
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return s.ID(items[i]) < s.ID(items[j]) })
}
