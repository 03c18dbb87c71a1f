// Package store 提供多租户 Prompt 数据的内存模型。
//
// Store 持有租户、Prompt 及其版本、评论、分享、审批、活动日志和通知，
// 所有读写都在同一把读写锁内完成，保证版本号严格递增、级联删除不留残余。
// 对外返回的记录都是副本，调用方修改不会影响内部状态。
package store

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"

	"go.uber.org/zap"
)

// Store 内存实体存储
type Store struct {
	mu  sync.RWMutex
	ids *Allocator
	now func() time.Time
	log *zap.Logger

	strictApprovals bool
	maxPageSize     int

	tenants       map[string]*Tenant
	tenantOrder   []string
	prompts       map[string]*promptRecord
	tenantPrompts map[string][]string // tenantID -> promptID，按插入顺序
	notifications []*NotificationItem // 按时间倒序

	// 二级索引：评论/审批 ID -> 所属 Prompt ID
	commentIndex  map[string]string
	approvalIndex map[string]string
}

// promptRecord 一个 Prompt 及其拥有的全部子资源，删除时整体移除
type promptRecord struct {
	prompt    Prompt
	versions  []PromptVersion // 最新在前
	comments  []*PromptComment
	shares    []*PromptShare
	approvals []*PromptApproval
	activity  []*PromptActivityEntry // 最新在前
}

// Option 配置 Store
type Option func(*Store)

// WithClock 替换时间源，测试中用于固定时间
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger 设置日志
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAllocator 替换 ID 分配器
func WithAllocator(a *Allocator) Option {
	return func(s *Store) {
		if a != nil {
			s.ids = a
		}
	}
}

// WithStrictApprovals 启用审批状态流转校验
func WithStrictApprovals(strict bool) Option {
	return func(s *Store) {
		s.strictApprovals = strict
	}
}

// WithMaxPageSize 设置分页上限
func WithMaxPageSize(n int) Option {
	return func(s *Store) {
		s.maxPageSize = n
	}
}

// New 创建空 Store
func New(opts ...Option) *Store {
	s := &Store{
		ids:         NewAllocator(),
		now:         func() time.Time { return time.Now().UTC() },
		log:         zap.NewNop(),
		maxPageSize: common.MaxPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s
}

func (s *Store) resetLocked() {
	s.tenants = make(map[string]*Tenant)
	s.tenantOrder = nil
	s.prompts = make(map[string]*promptRecord)
	s.tenantPrompts = make(map[string][]string)
	s.notifications = nil
	s.commentIndex = make(map[string]string)
	s.approvalIndex = make(map[string]string)
	s.ids.Reset()
}

// Reset 清空所有数据
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// ============================================================================
// 租户
// ============================================================================

// CreateTenantInput 创建租户参数
type CreateTenantInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 由名称生成 slug
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}

// ListTenants 按 createdAt、id 排序列出租户
func (s *Store) ListTenants() []Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tenant, 0, len(s.tenantOrder))
	for _, id := range s.tenantOrder {
		out = append(out, *s.tenants[id])
	}
	slices.SortStableFunc(out, func(a, b Tenant) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// GetTenant 查询租户
func (s *Store) GetTenant(id string) (Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.tenantLocked(id, false)
	if err != nil {
		return Tenant{}, err
	}
	return *t, nil
}

// CreateTenant 创建租户，slug 为空时由名称生成
func (s *Store) CreateTenant(in CreateTenantInput) (Tenant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Tenant{}, common.NewValidationError("name is required")
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return Tenant{}, common.NewValidationError("slug is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tenants {
		if t.Slug == slug {
			return Tenant{}, common.NewValidationError(fmt.Sprintf("slug %q already exists", slug))
		}
	}

	t := &Tenant{
		ID:        s.ids.Next(PrefixTenant),
		Name:      name,
		Slug:      slug,
		CreatedAt: s.now(),
	}
	s.insertTenantLocked(t)
	s.log.Debug("tenant created", zap.String("tenant_id", t.ID), zap.String("slug", t.Slug))
	return *t, nil
}

func (s *Store) insertTenantLocked(t *Tenant) {
	s.tenants[t.ID] = t
	s.tenantOrder = append(s.tenantOrder, t.ID)
	if _, ok := s.tenantPrompts[t.ID]; !ok {
		s.tenantPrompts[t.ID] = nil
	}
}

// tenantLocked 解析租户。空 ID 总是校验错误；
// 未知 ID 在 unknownAsValidation 为 true 时返回校验错误（创建类接口），否则返回 NotFound。
func (s *Store) tenantLocked(id string, unknownAsValidation bool) (*Tenant, error) {
	if strings.TrimSpace(id) == "" {
		return nil, common.NewBusinessError(common.CodeTenantRequired, "")
	}
	t, ok := s.tenants[id]
	if !ok {
		msg := fmt.Sprintf("tenant %s not found", id)
		if unknownAsValidation {
			return nil, common.NewValidationError(msg)
		}
		return nil, common.NewNotFoundError(common.CodeTenantNotFound, msg)
	}
	return t, nil
}

// promptLocked 在租户内定位 Prompt
func (s *Store) promptLocked(tenantID, promptID string) (*promptRecord, error) {
	if _, err := s.tenantLocked(tenantID, false); err != nil {
		return nil, err
	}
	rec, ok := s.prompts[promptID]
	if !ok || rec.prompt.TenantID != tenantID {
		return nil, common.NewNotFoundError(common.CodePromptNotFound, fmt.Sprintf("prompt %s not found", promptID))
	}
	return rec, nil
}

// insertPromptLocked 写入 Prompt 并登记到租户列表
func (s *Store) insertPromptLocked(rec *promptRecord) {
	s.prompts[rec.prompt.ID] = rec
	s.tenantPrompts[rec.prompt.TenantID] = append(s.tenantPrompts[rec.prompt.TenantID], rec.prompt.ID)
}

// removePromptLocked 删除 Prompt 并级联清理所有子资源及索引
func (s *Store) removePromptLocked(rec *promptRecord) {
	for _, c := range rec.comments {
		delete(s.commentIndex, c.ID)
	}
	for _, a := range rec.approvals {
		delete(s.approvalIndex, a.ID)
	}
	delete(s.prompts, rec.prompt.ID)

	ids := s.tenantPrompts[rec.prompt.TenantID]
	s.tenantPrompts[rec.prompt.TenantID] = slices.DeleteFunc(ids, func(id string) bool {
		return id == rec.prompt.ID
	})
}

// tenantPromptsLocked 返回租户 Prompt 的副本，按插入顺序
func (s *Store) tenantPromptsLocked(tenantID string) []Prompt {
	ids := s.tenantPrompts[tenantID]
	out := make([]Prompt, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.prompts[id].prompt.clone())
	}
	return out
}

// ============================================================================
// 统计
// ============================================================================

// Counts 各类记录数量，供指标和快照使用
type Counts struct {
	Tenants       int `json:"tenants" toml:"tenants"`
	Prompts       int `json:"prompts" toml:"prompts"`
	Versions      int `json:"versions" toml:"versions"`
	Comments      int `json:"comments" toml:"comments"`
	Shares        int `json:"shares" toml:"shares"`
	Approvals     int `json:"approvals" toml:"approvals"`
	Activity      int `json:"activity" toml:"activity"`
	Notifications int `json:"notifications" toml:"notifications"`
}

// Counts 返回当前记录数量
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countsLocked()
}

func (s *Store) countsLocked() Counts {
	c := Counts{
		Tenants:       len(s.tenants),
		Prompts:       len(s.prompts),
		Notifications: len(s.notifications),
	}
	for _, rec := range s.prompts {
		c.Versions += len(rec.versions)
		c.Comments += len(rec.comments)
		c.Shares += len(rec.shares)
		c.Approvals += len(rec.approvals)
		c.Activity += len(rec.activity)
	}
	return c
}
