// Package fault 按次数预算强制接口返回失败，用于验证调用方的重试与错误恢复逻辑。
//
// 预算按 capability -> tenantId -> key 三级保存，tenantId 与 key 为空表示通配。
// 检查与扣减在同一把锁内完成，并发调用不会重复消费同一份预算。
package fault

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Capability 名称，每个可注入故障的接口对应一个
const (
	ListTenants   = "listTenants"
	CreateTenant  = "createTenant"
	ListPrompts   = "listPrompts"
	CreatePrompt  = "createPrompt"
	UpdatePrompt  = "updatePrompt"
	DeletePrompt  = "deletePrompt"
	Versions      = "promptVersions"
	VersionDiff   = "versionDiff"
	Restore       = "restoreVersion"
	RecordUsage   = "recordUsage"
	ListComments  = "listComments"
	CreateComment = "createComment"
	UpdateComment = "updateComment"
	DeleteComment = "deleteComment"
	ListShares    = "listShares"
	CreateShare   = "createShare"
	RemoveShare   = "removeShare"
	ListApprovals = "listApprovals"
	CreateApprove = "createApproval"
	UpdateApprove = "updateApproval"
	Activity      = "promptActivity"
	Dashboard     = "dashboard"
	Analytics     = "promptAnalytics"
	Notifications = "listNotifications"
	MarkRead      = "markNotifications"
)

// Rule 一条故障预算
type Rule struct {
	Capability string `json:"capability" mapstructure:"capability"`
	TenantID   string `json:"tenantId,omitempty" mapstructure:"tenant_id"`
	Key        string `json:"key,omitempty" mapstructure:"key"`
	Count      int    `json:"count" mapstructure:"count"`
}

// Injector 故障注入器
type Injector struct {
	mu      sync.Mutex
	budgets map[string]map[string]map[string]int // capability -> tenant -> key -> remaining
	log     *zap.Logger
}

// New 创建注入器，log 为空时不输出日志
func New(log *zap.Logger) *Injector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Injector{
		budgets: make(map[string]map[string]map[string]int),
		log:     log,
	}
}

// Configure 设置预算，count 为 0 表示清除该条
func (i *Injector) Configure(r Rule) error {
	r.Capability = strings.TrimSpace(r.Capability)
	if r.Capability == "" {
		return fmt.Errorf("fault capability is required")
	}
	if r.Count < 0 {
		return fmt.Errorf("fault count must be >= 0, got %d", r.Count)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if r.Count == 0 {
		i.clearLocked(r.Capability, r.TenantID, r.Key)
		return nil
	}

	tenants, ok := i.budgets[r.Capability]
	if !ok {
		tenants = make(map[string]map[string]int)
		i.budgets[r.Capability] = tenants
	}
	keys, ok := tenants[r.TenantID]
	if !ok {
		keys = make(map[string]int)
		tenants[r.TenantID] = keys
	}
	keys[r.Key] = r.Count

	i.log.Info("fault configured",
		zap.String("capability", r.Capability),
		zap.String("tenant_id", r.TenantID),
		zap.String("key", r.Key),
		zap.Int("count", r.Count))
	return nil
}

// Consume 命中预算时扣减一次并返回 true。
// 匹配顺序：(tenant, key) -> (tenant, "") -> ("", key) -> ("", "")。
func (i *Injector) Consume(capability, tenantID, key string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	tenants, ok := i.budgets[capability]
	if !ok {
		return false
	}
	for _, c := range candidates(tenantID, key) {
		n := tenants[c[0]][c[1]]
		if n <= 0 {
			continue
		}
		if n == 1 {
			i.clearLocked(capability, c[0], c[1])
		} else {
			tenants[c[0]][c[1]] = n - 1
		}
		i.log.Warn("fault injected",
			zap.String("capability", capability),
			zap.String("tenant_id", tenantID),
			zap.String("key", key),
			zap.Int("remaining", n-1))
		return true
	}
	return false
}

func candidates(tenantID, key string) [][2]string {
	out := make([][2]string, 0, 4)
	if tenantID != "" {
		if key != "" {
			out = append(out, [2]string{tenantID, key})
		}
		out = append(out, [2]string{tenantID, ""})
	}
	if key != "" {
		out = append(out, [2]string{"", key})
	}
	return append(out, [2]string{"", ""})
}

// Remaining 某条预算的剩余次数，精确匹配
func (i *Injector) Remaining(capability, tenantID, key string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.budgets[capability][tenantID][key]
}

// Rules 当前所有预算，按 capability、tenant、key 排序
func (i *Injector) Rules() []Rule {
	i.mu.Lock()
	defer i.mu.Unlock()

	rules := []Rule{}
	for capability, tenants := range i.budgets {
		for tenantID, keys := range tenants {
			for key, n := range keys {
				rules = append(rules, Rule{Capability: capability, TenantID: tenantID, Key: key, Count: n})
			}
		}
	}
	sort.Slice(rules, func(a, b int) bool {
		ra, rb := rules[a], rules[b]
		if ra.Capability != rb.Capability {
			return ra.Capability < rb.Capability
		}
		if ra.TenantID != rb.TenantID {
			return ra.TenantID < rb.TenantID
		}
		return ra.Key < rb.Key
	})
	return rules
}

// Reset 清空所有预算
func (i *Injector) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.budgets = make(map[string]map[string]map[string]int)
}

func (i *Injector) clearLocked(capability, tenantID, key string) {
	tenants, ok := i.budgets[capability]
	if !ok {
		return
	}
	delete(tenants[tenantID], key)
	if len(tenants[tenantID]) == 0 {
		delete(tenants, tenantID)
	}
	if len(tenants) == 0 {
		delete(i.budgets, capability)
	}
}
