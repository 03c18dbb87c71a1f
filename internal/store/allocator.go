package store

import (
	"fmt"
	"sync"
)

// ID 前缀
const (
	PrefixTenant       = "tenant"
	PrefixPrompt       = "prompt"
	PrefixComment      = "comment"
	PrefixShare        = "share"
	PrefixApproval     = "approval"
	PrefixActivity     = "activity"
	PrefixNotification = "notification"
)

// Allocator 按前缀分配 ID，同一前缀下序号单调递增。
// 通过 Reserve 登记的 ID（例如种子数据）不会被再次分配。
type Allocator struct {
	mu       sync.Mutex
	counters map[string]int
	reserved map[string]struct{}
}

// NewAllocator 创建分配器
func NewAllocator() *Allocator {
	return &Allocator{
		counters: make(map[string]int),
		reserved: make(map[string]struct{}),
	}
}

// Next 分配下一个 ID，格式为 <prefix>_<n>
func (a *Allocator) Next(prefix string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	for {
		a.counters[prefix]++
		id := fmt.Sprintf("%s_%d", prefix, a.counters[prefix])
		if _, taken := a.reserved[id]; taken {
			continue
		}
		a.reserved[id] = struct{}{}
		return id
	}
}

// Reserve 登记外部指定的 ID，返回 false 表示已被占用
func (a *Allocator) Reserve(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, taken := a.reserved[id]; taken {
		return false
	}
	a.reserved[id] = struct{}{}
	return true
}

// Reset 清空计数和登记
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.counters = make(map[string]int)
	a.reserved = make(map[string]struct{})
}
