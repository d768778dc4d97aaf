package keylock

import "sync"

// Registry 提供按键分配的互斥锁，用于把写-写冲突限制在单个实体上：
// 同一笔记的评分聚合、同一收藏集的成员变更、同一用户的收藏夹变更
// 各自串行，不相关的实体之间完全并行。
//
// 锁在首次使用时惰性创建，之后常驻。实体键的数量与活跃实体数同阶，
// 对本服务的规模而言无需回收。
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRegistry 创建一个空的锁注册表。
func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*sync.Mutex)}
}

// Lock 锁定指定键对应的互斥锁，必要时先创建它。
func (r *Registry) Lock(key string) {
	r.get(key).Lock()
}

// Unlock 释放指定键对应的互斥锁。
// 对从未Lock过的键调用Unlock会panic，与sync.Mutex的行为一致。
func (r *Registry) Unlock(key string) {
	r.get(key).Unlock()
}

func (r *Registry) get(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.locks[key]
	if !ok {
		m = &sync.Mutex{}
		r.locks[key] = m
	}
	return m
}
